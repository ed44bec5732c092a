package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/tablemind/internal/services/narrative/domain/emergence"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/storage"
)

const notificationColumns = "id, game_id, emergence_type, entity_type, entity_id, confidence, reason, triggering_event_id, factors_json, status, dm_notes, created_at, resolved_at"

// InsertNotification persists one new notification. A partial unique index
// limits each (game, entity, type) tuple to a single pending row, so a
// concurrent duplicate insert surfaces as storage.ErrConflict.
func (s *Store) InsertNotification(ctx context.Context, n emergence.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	factorsJSON, err := json.Marshal(n.Opportunity.ContributingFactors)
	if err != nil {
		return fmt.Errorf("marshal contributing factors: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO emergence_notifications (id, game_id, emergence_type, entity_type, entity_id, confidence, reason, triggering_event_id, factors_json, status, dm_notes, created_at, resolved_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		n.ID, n.GameID, string(n.Opportunity.Type),
		string(n.Opportunity.Entity.Type), n.Opportunity.Entity.ID,
		n.Opportunity.Confidence, n.Opportunity.Reason, n.Opportunity.TriggeringEventID,
		string(factorsJSON), string(n.Status), n.DMNotes,
		toMillis(n.CreatedAt), toNullMillis(n.ResolvedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// GetNotification returns one notification scoped by game.
func (s *Store) GetNotification(ctx context.Context, gameID, notificationID string) (emergence.Notification, error) {
	if err := ctx.Err(); err != nil {
		return emergence.Notification{}, err
	}
	if err := s.ready(); err != nil {
		return emergence.Notification{}, err
	}

	row := s.sqlDB.QueryRowContext(ctx, fmt.Sprintf(`
SELECT %s FROM emergence_notifications WHERE game_id = ? AND id = ?
`, notificationColumns), gameID, notificationID)

	n, err := scanNotification(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return emergence.Notification{}, storage.ErrNotFound
		}
		return emergence.Notification{}, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

// ExistsSimilarNotification reports whether a pending notification already
// covers the same entity and emergence type.
func (s *Store) ExistsSimilarNotification(ctx context.Context, gameID string, entity event.Ref, emergenceType emergence.Type) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := s.ready(); err != nil {
		return false, err
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT EXISTS (
    SELECT 1 FROM emergence_notifications
    WHERE game_id = ? AND entity_type = ? AND entity_id = ? AND emergence_type = ? AND status = ?
)
`, gameID, string(entity.Type), entity.ID, string(emergenceType), string(emergence.NotificationPending))

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("check similar notification: %w", err)
	}
	return exists, nil
}

// MarkNotificationResolved atomically transitions a pending notification to
// the given terminal status, returning storage.ErrNotFound when the row is
// missing or already resolved.
func (s *Store) MarkNotificationResolved(ctx context.Context, gameID, notificationID string, status emergence.NotificationStatus, dmNotes string, resolvedAt time.Time) (emergence.Notification, error) {
	if err := ctx.Err(); err != nil {
		return emergence.Notification{}, err
	}
	if err := s.ready(); err != nil {
		return emergence.Notification{}, err
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE emergence_notifications
SET status = ?, dm_notes = ?, resolved_at = ?
WHERE game_id = ? AND id = ? AND status = ?
`, string(status), dmNotes, toMillis(resolvedAt), gameID, notificationID, string(emergence.NotificationPending))
	if err != nil {
		return emergence.Notification{}, fmt.Errorf("mark notification resolved: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return emergence.Notification{}, fmt.Errorf("mark notification resolved rows affected: %w", err)
	}
	if affected == 0 {
		return emergence.Notification{}, storage.ErrNotFound
	}
	return s.GetNotification(ctx, gameID, notificationID)
}

// ListPendingNotifications lists a game's pending notifications newest-first
// with cursor pagination.
func (s *Store) ListPendingNotifications(ctx context.Context, gameID string, pageSize int, pageToken string) (emergence.NotificationPage, error) {
	if err := ctx.Err(); err != nil {
		return emergence.NotificationPage{}, err
	}
	if err := s.ready(); err != nil {
		return emergence.NotificationPage{}, err
	}
	if pageSize <= 0 {
		return emergence.NotificationPage{}, fmt.Errorf("page size must be greater than zero")
	}

	query := fmt.Sprintf("SELECT %s FROM emergence_notifications WHERE game_id = ? AND status = ?", notificationColumns)
	args := []any{gameID, string(emergence.NotificationPending)}

	pageToken = strings.TrimSpace(pageToken)
	if pageToken != "" {
		var tokenCreatedAt int64
		row := s.sqlDB.QueryRowContext(ctx, "SELECT created_at FROM emergence_notifications WHERE game_id = ? AND id = ?", gameID, pageToken)
		if err := row.Scan(&tokenCreatedAt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return emergence.NotificationPage{}, nil
			}
			return emergence.NotificationPage{}, fmt.Errorf("resolve notification page token: %w", err)
		}
		query += " AND (created_at < ? OR (created_at = ? AND id < ?))"
		args = append(args, tokenCreatedAt, tokenCreatedAt, pageToken)
	}

	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return emergence.NotificationPage{}, fmt.Errorf("list pending notifications: %w", err)
	}
	defer rows.Close()

	var notifications []emergence.Notification
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return emergence.NotificationPage{}, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return emergence.NotificationPage{}, fmt.Errorf("iterate notifications: %w", err)
	}

	page := emergence.NotificationPage{Notifications: notifications}
	if len(notifications) > pageSize {
		page.Notifications = notifications[:pageSize]
		page.NextPageToken = page.Notifications[pageSize-1].ID
	}
	return page, nil
}

func scanNotification(scan func(...any) error) (emergence.Notification, error) {
	var (
		n             emergence.Notification
		emergenceType string
		entityType    string
		factorsJSON   string
		status        string
		createdAt     int64
		resolvedAt    sql.NullInt64
	)
	if err := scan(
		&n.ID, &n.GameID, &emergenceType, &entityType, &n.Opportunity.Entity.ID,
		&n.Opportunity.Confidence, &n.Opportunity.Reason, &n.Opportunity.TriggeringEventID,
		&factorsJSON, &status, &n.DMNotes, &createdAt, &resolvedAt,
	); err != nil {
		return emergence.Notification{}, err
	}
	n.Opportunity.Type = emergence.Type(emergenceType)
	n.Opportunity.GameID = n.GameID
	n.Opportunity.Entity.Type = event.EntityType(entityType)
	if err := json.Unmarshal([]byte(factorsJSON), &n.Opportunity.ContributingFactors); err != nil {
		return emergence.Notification{}, fmt.Errorf("unmarshal contributing factors: %w", err)
	}
	n.Status = emergence.NotificationStatus(status)
	n.CreatedAt = fromMillis(createdAt)
	n.ResolvedAt = fromNullMillis(resolvedAt)
	return n, nil
}
