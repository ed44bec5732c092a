package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/louisbranch/tablemind/internal/platform/errors"
	"github.com/louisbranch/tablemind/internal/platform/id"
	"github.com/louisbranch/tablemind/internal/services/narrative/core/filter"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/scene"
	"github.com/louisbranch/tablemind/internal/services/narrative/storage"
)

const eventColumns = "id, game_id, turn, timestamp, event_type, action, actor_type, actor_id, target_type, target_id, location_id, tags_json, content"

// AppendEvent persists one event to the append-only log.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if err := s.ready(); err != nil {
		return event.Event{}, err
	}

	evt.GameID = strings.TrimSpace(evt.GameID)
	if evt.GameID == "" {
		return event.Event{}, apperrors.New(apperrors.CodeEventGameIDEmpty, "event game id is required")
	}
	if evt.Actor.IsZero() {
		return event.Event{}, apperrors.New(apperrors.CodeEventActorEmpty, "event actor is required")
	}
	if evt.Turn < 1 {
		return event.Event{}, apperrors.New(apperrors.CodeEventTurnInvalid, "event turn must be at least 1")
	}
	if evt.ID == "" {
		eventID, err := id.NewID()
		if err != nil {
			return event.Event{}, err
		}
		evt.ID = eventID
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	tagsJSON, err := json.Marshal(evt.Tags)
	if err != nil {
		return event.Event{}, fmt.Errorf("marshal event tags: %w", err)
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO events (id, game_id, turn, timestamp, event_type, action, actor_type, actor_id, target_type, target_id, location_id, tags_json, content)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		evt.ID, evt.GameID, evt.Turn, toMillis(evt.Timestamp), string(evt.Type), string(evt.Action),
		string(evt.Actor.Type), evt.Actor.ID, string(evt.Target.Type), evt.Target.ID,
		evt.LocationID, string(tagsJSON), evt.Content,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return event.Event{}, storage.ErrConflict
		}
		return event.Event{}, fmt.Errorf("append event: %w", err)
	}
	return evt, nil
}

// ListEventsByActor returns an actor's events ordered by turn, then insertion.
func (s *Store) ListEventsByActor(ctx context.Context, gameID string, actor event.Ref, q storage.EventQuery) ([]event.Event, error) {
	return s.listEventsWhere(ctx, gameID, "actor_type = ? AND actor_id = ?", []any{string(actor.Type), actor.ID}, q)
}

// ListEventsByTarget returns events targeting an entity ordered by turn, then insertion.
func (s *Store) ListEventsByTarget(ctx context.Context, gameID string, target event.Ref, q storage.EventQuery) ([]event.Event, error) {
	return s.listEventsWhere(ctx, gameID, "target_type = ? AND target_id = ?", []any{string(target.Type), target.ID}, q)
}

// ListEventsByActions returns events whose action is in the given set.
func (s *Store) ListEventsByActions(ctx context.Context, gameID string, actions []event.Action, q storage.EventQuery) ([]event.Event, error) {
	if len(actions) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(actions))
	params := make([]any, len(actions))
	for i, action := range actions {
		placeholders[i] = "?"
		params[i] = string(action)
	}
	clause := fmt.Sprintf("action IN (%s)", strings.Join(placeholders, ", "))
	return s.listEventsWhere(ctx, gameID, clause, params, q)
}

// ListEventsByCategory returns events whose action belongs to the category.
func (s *Store) ListEventsByCategory(ctx context.Context, gameID string, category event.Category, q storage.EventQuery) ([]event.Event, error) {
	return s.ListEventsByActions(ctx, gameID, event.ActionsInCategory(category), q)
}

func (s *Store) listEventsWhere(ctx context.Context, gameID, clause string, params []any, q storage.EventQuery) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM events WHERE game_id = ? AND %s", eventColumns, clause)
	args := append([]any{gameID}, params...)
	if q.MinTurn != nil {
		query += " AND turn >= ?"
		args = append(args, *q.MinTurn)
	}
	if q.MaxTurn != nil {
		query += " AND turn <= ?"
		args = append(args, *q.MaxTurn)
	}
	query += " ORDER BY turn ASC, rowid ASC LIMIT ? OFFSET ?"
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, q.Offset)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	return collectEvents(rows)
}

// ListRecentEvents returns the last n events for a game in ascending turn order.
func (s *Store) ListRecentEvents(ctx context.Context, gameID string, n int) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.sqlDB.QueryContext(ctx, fmt.Sprintf(`
SELECT %s FROM events
WHERE game_id = ?
ORDER BY turn DESC, rowid DESC
LIMIT ?
`, eventColumns), gameID, n)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

// ListEvents returns events matching an AIP-160 filter expression with
// cursor pagination, ascending by turn then insertion.
func (s *Store) ListEvents(ctx context.Context, gameID string, filterStr string, pageSize int, pageToken string) (storage.EventPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.EventPage{}, err
	}
	if err := s.ready(); err != nil {
		return storage.EventPage{}, err
	}
	if pageSize <= 0 {
		return storage.EventPage{}, fmt.Errorf("page size must be greater than zero")
	}

	condition, err := filter.ParseEventFilter(filterStr)
	if err != nil {
		return storage.EventPage{}, apperrors.Wrap(apperrors.CodeEventFilterInvalid, "invalid event filter", err)
	}

	query := fmt.Sprintf("SELECT %s FROM events WHERE game_id = ?", eventColumns)
	args := []any{gameID}
	if condition.Clause != "" {
		query += " AND " + condition.Clause
		args = append(args, condition.Params...)
	}

	pageToken = strings.TrimSpace(pageToken)
	if pageToken != "" {
		var turn, rowID int64
		row := s.sqlDB.QueryRowContext(ctx, "SELECT turn, rowid FROM events WHERE game_id = ? AND id = ?", gameID, pageToken)
		if err := row.Scan(&turn, &rowID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.EventPage{}, nil
			}
			return storage.EventPage{}, fmt.Errorf("resolve page token: %w", err)
		}
		query += " AND (turn > ? OR (turn = ? AND rowid > ?))"
		args = append(args, turn, turn, rowID)
	}

	query += " ORDER BY turn ASC, rowid ASC LIMIT ?"
	args = append(args, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return storage.EventPage{}, fmt.Errorf("list filtered events: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return storage.EventPage{}, err
	}

	page := storage.EventPage{Events: events}
	if len(events) > pageSize {
		page.Events = events[:pageSize]
		page.NextPageToken = page.Events[pageSize-1].ID
	}
	return page, nil
}

func collectEvents(rows *sql.Rows) ([]event.Event, error) {
	var events []event.Event
	for rows.Next() {
		evt, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func scanEvent(scan func(...any) error) (event.Event, error) {
	var (
		evt        event.Event
		timestamp  int64
		eventType  string
		action     string
		actorType  string
		targetType string
		tagsJSON   string
	)
	if err := scan(
		&evt.ID, &evt.GameID, &evt.Turn, &timestamp, &eventType, &action,
		&actorType, &evt.Actor.ID, &targetType, &evt.Target.ID,
		&evt.LocationID, &tagsJSON, &evt.Content,
	); err != nil {
		return event.Event{}, err
	}
	evt.Timestamp = fromMillis(timestamp)
	evt.Type = event.Type(eventType)
	evt.Action = event.Action(action)
	evt.Actor.Type = event.EntityType(actorType)
	evt.Target.Type = event.EntityType(targetType)
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &evt.Tags); err != nil {
			return event.Event{}, fmt.Errorf("unmarshal event tags: %w", err)
		}
	}
	return evt, nil
}

// PutScene upserts one scene row.
func (s *Store) PutScene(ctx context.Context, sc scene.Scene) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(sc.ID) == "" || strings.TrimSpace(sc.GameID) == "" {
		return fmt.Errorf("scene id and game id are required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO scenes (id, game_id, location_id, mood, status, started_turn, started_at, ended_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    location_id = excluded.location_id,
    mood = excluded.mood,
    status = excluded.status,
    started_turn = excluded.started_turn,
    started_at = excluded.started_at,
    ended_at = excluded.ended_at
`, sc.ID, sc.GameID, sc.LocationID, string(sc.Mood), string(sc.Status), sc.StartedTurn, toMillis(sc.StartedAt), toNullMillis(sc.EndedAt))
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("put scene: %w", err)
	}
	return nil
}

// EndScene closes an active scene at the given time. It returns
// storage.ErrNotFound when the scene is missing or already ended.
func (s *Store) EndScene(ctx context.Context, sceneID string, endedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE scenes SET status = ?, ended_at = ? WHERE id = ? AND status = ?
`, string(scene.StatusEnded), toMillis(endedAt), sceneID, string(scene.StatusActive))
	if err != nil {
		return fmt.Errorf("end scene: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("end scene rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetActiveScene returns the game's active scene, or storage.ErrNotFound
// when no scene is active.
func (s *Store) GetActiveScene(ctx context.Context, gameID string) (scene.Scene, error) {
	if err := ctx.Err(); err != nil {
		return scene.Scene{}, err
	}
	if err := s.ready(); err != nil {
		return scene.Scene{}, err
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, game_id, location_id, mood, status, started_turn, started_at, ended_at
FROM scenes
WHERE game_id = ? AND status = ?
`, gameID, string(scene.StatusActive))

	var (
		sc        scene.Scene
		mood      string
		status    string
		startedAt int64
		endedAt   sql.NullInt64
	)
	if err := row.Scan(&sc.ID, &sc.GameID, &sc.LocationID, &mood, &status, &sc.StartedTurn, &startedAt, &endedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scene.Scene{}, storage.ErrNotFound
		}
		return scene.Scene{}, fmt.Errorf("get active scene: %w", err)
	}
	sc.Mood = scene.Mood(mood)
	sc.Status = scene.Status(status)
	sc.StartedAt = fromMillis(startedAt)
	sc.EndedAt = fromNullMillis(endedAt)
	return sc, nil
}

// CountEventsInScene counts the game's events recorded inside the scene's
// time window.
func (s *Store) CountEventsInScene(ctx context.Context, sceneID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := s.ready(); err != nil {
		return 0, err
	}

	var count int
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT COUNT(1)
FROM events e
JOIN scenes sc ON sc.id = ?
WHERE e.game_id = sc.game_id
  AND e.timestamp >= sc.started_at
  AND (sc.ended_at IS NULL OR e.timestamp <= sc.ended_at)
`, sceneID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events in scene: %w", err)
	}
	return count, nil
}
