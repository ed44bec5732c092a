package relationship

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/tablemind/internal/platform/errors"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
)

// Store is the persistence boundary for relationship rows.
type Store interface {
	GetRelationship(ctx context.Context, key Key) (Relationship, error)
	// SetRelationshipDimension upserts the row and sets one dimension to an
	// absolute value, returning the updated row.
	SetRelationshipDimension(ctx context.Context, key Key, dimension Dimension, value float64, updatedAt time.Time) (Relationship, error)
	// ListRelationshipsForEntity returns every row where the entity appears
	// as either endpoint.
	ListRelationshipsForEntity(ctx context.Context, gameID string, entity event.Ref) ([]Relationship, error)
}

// Ledger applies approved relationship mutations and derives labels on read.
type Ledger struct {
	store Store
	clock func() time.Time
}

// NewLedger constructs a relationship ledger over an injected store.
func NewLedger(store Store, clock func() time.Time) *Ledger {
	if clock == nil {
		clock = time.Now
	}
	return &Ledger{store: store, clock: clock}
}

// SetDimension sets one dimension to an absolute value, clamped to [0,1].
// Values are set, not deltas: approving the same proposal value twice leaves
// the row unchanged.
func (l *Ledger) SetDimension(ctx context.Context, key Key, dimension Dimension, value float64) (Relationship, error) {
	if err := key.Validate(); err != nil {
		return Relationship{}, err
	}
	if !dimension.IsValid() {
		return Relationship{}, apperrors.WithMetadata(
			apperrors.CodeRelationshipDimensionUnknown,
			"unknown relationship dimension",
			map[string]string{"dimension": string(dimension)},
		)
	}
	return l.store.SetRelationshipDimension(ctx, key, dimension, Clamp(value), l.clock().UTC())
}

// Get returns one directed relationship row.
func (l *Ledger) Get(ctx context.Context, key Key) (Relationship, error) {
	if err := key.Validate(); err != nil {
		return Relationship{}, err
	}
	return l.store.GetRelationship(ctx, key)
}

// ListForEntity returns every relationship touching an entity, both directions.
func (l *Ledger) ListForEntity(ctx context.Context, gameID string, entity event.Ref) ([]Relationship, error) {
	return l.store.ListRelationshipsForEntity(ctx, gameID, entity)
}
