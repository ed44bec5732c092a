package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/louisbranch/tablemind/internal/platform/errors"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/relationship"
	"github.com/louisbranch/tablemind/internal/services/narrative/storage"
)

const relationshipColumns = "game_id, from_type, from_id, to_type, to_id, trust, respect, affection, fear, resentment, debt, updated_at"

// dimensionColumns whitelists the mutable dimension columns. Column names
// are never interpolated from caller input directly.
var dimensionColumns = map[relationship.Dimension]string{
	relationship.DimensionTrust:      "trust",
	relationship.DimensionRespect:    "respect",
	relationship.DimensionAffection:  "affection",
	relationship.DimensionFear:       "fear",
	relationship.DimensionResentment: "resentment",
	relationship.DimensionDebt:       "debt",
}

// GetRelationship returns one directed relationship row, or
// storage.ErrNotFound when the pair has no recorded state.
func (s *Store) GetRelationship(ctx context.Context, key relationship.Key) (relationship.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return relationship.Relationship{}, err
	}
	if err := s.ready(); err != nil {
		return relationship.Relationship{}, err
	}

	row := s.sqlDB.QueryRowContext(ctx, fmt.Sprintf(`
SELECT %s FROM relationships
WHERE game_id = ? AND from_type = ? AND from_id = ? AND to_type = ? AND to_id = ?
`, relationshipColumns),
		key.GameID, string(key.From.Type), key.From.ID, string(key.To.Type), key.To.ID)

	rel, err := scanRelationship(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return relationship.Relationship{}, storage.ErrNotFound
		}
		return relationship.Relationship{}, fmt.Errorf("get relationship: %w", err)
	}
	return rel, nil
}

// SetRelationshipDimension upserts the row and sets one dimension to an
// absolute value, returning the updated row.
func (s *Store) SetRelationshipDimension(ctx context.Context, key relationship.Key, dimension relationship.Dimension, value float64, updatedAt time.Time) (relationship.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return relationship.Relationship{}, err
	}
	if err := s.ready(); err != nil {
		return relationship.Relationship{}, err
	}

	column, ok := dimensionColumns[dimension]
	if !ok {
		return relationship.Relationship{}, apperrors.WithMetadata(
			apperrors.CodeRelationshipDimensionUnknown,
			"unknown relationship dimension",
			map[string]string{"dimension": string(dimension)},
		)
	}

	query := fmt.Sprintf(`
INSERT INTO relationships (game_id, from_type, from_id, to_type, to_id, %s, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (game_id, from_type, from_id, to_type, to_id) DO UPDATE SET
    %s = excluded.%s,
    updated_at = excluded.updated_at
`, column, column, column)

	_, err := s.sqlDB.ExecContext(ctx, query,
		key.GameID, string(key.From.Type), key.From.ID, string(key.To.Type), key.To.ID,
		value, toMillis(updatedAt))
	if err != nil {
		return relationship.Relationship{}, fmt.Errorf("set relationship dimension: %w", err)
	}
	return s.GetRelationship(ctx, key)
}

// ListRelationshipsForEntity returns every row where the entity appears as
// either endpoint.
func (s *Store) ListRelationshipsForEntity(ctx context.Context, gameID string, entity event.Ref) ([]relationship.Relationship, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, fmt.Sprintf(`
SELECT %s FROM relationships
WHERE game_id = ?
  AND ((from_type = ? AND from_id = ?) OR (to_type = ? AND to_id = ?))
ORDER BY from_type, from_id, to_type, to_id
`, relationshipColumns),
		gameID, string(entity.Type), entity.ID, string(entity.Type), entity.ID)
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}
	defer rows.Close()

	var relationships []relationship.Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows.Scan)
		if err != nil {
			return nil, err
		}
		relationships = append(relationships, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relationships: %w", err)
	}
	return relationships, nil
}

func scanRelationship(scan func(...any) error) (relationship.Relationship, error) {
	var (
		rel       relationship.Relationship
		fromType  string
		toType    string
		updatedAt int64
	)
	if err := scan(
		&rel.Key.GameID, &fromType, &rel.Key.From.ID, &toType, &rel.Key.To.ID,
		&rel.Vector.Trust, &rel.Vector.Respect, &rel.Vector.Affection,
		&rel.Vector.Fear, &rel.Vector.Resentment, &rel.Vector.Debt,
		&updatedAt,
	); err != nil {
		return relationship.Relationship{}, err
	}
	rel.Key.From.Type = event.EntityType(fromType)
	rel.Key.To.Type = event.EntityType(toType)
	rel.UpdatedAt = fromMillis(updatedAt)
	return rel, nil
}
