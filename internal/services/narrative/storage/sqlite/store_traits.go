package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/trait"
	"github.com/louisbranch/tablemind/internal/services/narrative/storage"
)

const traitColumns = "id, game_id, entity_type, entity_id, trait, acquired_turn, source_event_id, status, created_at, updated_at"

// InsertTrait appends a new trait row. A second active row for the same
// (game, entity, trait) violates the partial unique index and reads as
// storage.ErrConflict.
func (s *Store) InsertTrait(ctx context.Context, row trait.EntityTrait) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO entity_traits (id, game_id, entity_type, entity_id, trait, acquired_turn, source_event_id, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		row.ID, row.GameID, string(row.Entity.Type), row.Entity.ID, string(row.Trait),
		row.AcquiredTurn, row.SourceEventID, string(row.Status),
		toMillis(row.CreatedAt), toMillis(row.UpdatedAt),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert trait: %w", err)
	}
	return nil
}

// MarkTraitStatus transitions the active row for (game, entity, trait) to
// the given status. With no active row it returns storage.ErrNotFound.
func (s *Store) MarkTraitStatus(ctx context.Context, gameID string, entity event.Ref, name trait.Name, status trait.Status, updatedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ready(); err != nil {
		return err
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE entity_traits SET status = ?, updated_at = ?
WHERE game_id = ? AND entity_type = ? AND entity_id = ? AND trait = ? AND status = ?
`, string(status), toMillis(updatedAt), gameID, string(entity.Type), entity.ID, string(name), string(trait.StatusActive))
	if err != nil {
		return fmt.Errorf("mark trait status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark trait status rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetActiveTrait returns the active row for (game, entity, trait), or
// storage.ErrNotFound.
func (s *Store) GetActiveTrait(ctx context.Context, gameID string, entity event.Ref, name trait.Name) (trait.EntityTrait, error) {
	if err := ctx.Err(); err != nil {
		return trait.EntityTrait{}, err
	}
	if err := s.ready(); err != nil {
		return trait.EntityTrait{}, err
	}

	row := s.sqlDB.QueryRowContext(ctx, fmt.Sprintf(`
SELECT %s FROM entity_traits
WHERE game_id = ? AND entity_type = ? AND entity_id = ? AND trait = ? AND status = ?
`, traitColumns), gameID, string(entity.Type), entity.ID, string(name), string(trait.StatusActive))

	record, err := scanTrait(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return trait.EntityTrait{}, storage.ErrNotFound
		}
		return trait.EntityTrait{}, fmt.Errorf("get active trait: %w", err)
	}
	return record, nil
}

// ListTraitsByEntity returns trait rows for an entity ordered by acquisition,
// active ones only unless includeHistory is set.
func (s *Store) ListTraitsByEntity(ctx context.Context, gameID string, entity event.Ref, includeHistory bool) ([]trait.EntityTrait, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM entity_traits WHERE game_id = ? AND entity_type = ? AND entity_id = ?", traitColumns)
	args := []any{gameID, string(entity.Type), entity.ID}
	if !includeHistory {
		query += " AND status = ?"
		args = append(args, string(trait.StatusActive))
	}
	query += " ORDER BY acquired_turn ASC, created_at ASC, id ASC"

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list traits: %w", err)
	}
	defer rows.Close()

	var records []trait.EntityTrait
	for rows.Next() {
		record, err := scanTrait(rows.Scan)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate traits: %w", err)
	}
	return records, nil
}

func scanTrait(scan func(...any) error) (trait.EntityTrait, error) {
	var (
		record     trait.EntityTrait
		entityType string
		name       string
		status     string
		createdAt  int64
		updatedAt  int64
	)
	if err := scan(
		&record.ID, &record.GameID, &entityType, &record.Entity.ID, &name,
		&record.AcquiredTurn, &record.SourceEventID, &status, &createdAt, &updatedAt,
	); err != nil {
		return trait.EntityTrait{}, err
	}
	record.Entity.Type = event.EntityType(entityType)
	record.Trait = trait.Name(name)
	record.Status = trait.Status(status)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}
