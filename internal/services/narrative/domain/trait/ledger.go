package trait

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "github.com/louisbranch/tablemind/internal/platform/errors"
	"github.com/louisbranch/tablemind/internal/platform/id"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/storage"
)

// Store is the persistence boundary for trait rows.
type Store interface {
	// InsertTrait appends a new row. Implementations return
	// storage.ErrConflict when an active row already exists for the same
	// (game, entity, trait).
	InsertTrait(ctx context.Context, row EntityTrait) error
	// MarkTraitStatus transitions the active row for (game, entity, trait)
	// to the given status. Implementations return storage.ErrNotFound when
	// no active row exists.
	MarkTraitStatus(ctx context.Context, gameID string, entity event.Ref, trait Name, status Status, updatedAt time.Time) error
	GetActiveTrait(ctx context.Context, gameID string, entity event.Ref, trait Name) (EntityTrait, error)
	// ListTraitsByEntity returns rows for an entity, active ones only unless
	// includeHistory is set.
	ListTraitsByEntity(ctx context.Context, gameID string, entity event.Ref, includeHistory bool) ([]EntityTrait, error)
}

// AddInput describes one trait acquisition.
type AddInput struct {
	GameID        string
	Entity        event.Ref
	Trait         Name
	AcquiredTurn  int
	SourceEventID string
}

// Ledger owns trait lifecycle rules over an injected store.
type Ledger struct {
	store Store
	clock func() time.Time
	newID func() (string, error)
}

// NewLedger constructs a trait ledger.
func NewLedger(store Store, clock func() time.Time, newID func() (string, error)) *Ledger {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Ledger{store: store, clock: clock, newID: newID}
}

// AddTrait inserts a new active trait row. Adding a trait that is already
// active raises a conflict; adding after removal creates a fresh active row
// with the later acquired turn.
func (l *Ledger) AddTrait(ctx context.Context, input AddInput) (EntityTrait, error) {
	if strings.TrimSpace(input.GameID) == "" || input.Entity.IsZero() {
		return EntityTrait{}, apperrors.New(apperrors.CodeTraitEntityEmpty, "trait entity requires game id and entity ref")
	}
	if strings.TrimSpace(string(input.Trait)) == "" {
		return EntityTrait{}, apperrors.New(apperrors.CodeTraitNameEmpty, "trait name is required")
	}

	rowID, err := l.newID()
	if err != nil {
		return EntityTrait{}, err
	}
	now := l.clock().UTC()
	row := EntityTrait{
		ID:            rowID,
		GameID:        input.GameID,
		Entity:        input.Entity,
		Trait:         input.Trait,
		AcquiredTurn:  input.AcquiredTurn,
		SourceEventID: strings.TrimSpace(input.SourceEventID),
		Status:        StatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := l.store.InsertTrait(ctx, row); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return EntityTrait{}, apperrors.WithMetadata(
				apperrors.CodeTraitAlreadyActive,
				"trait is already active for entity",
				map[string]string{"trait": string(input.Trait), "entity_id": input.Entity.ID},
			)
		}
		return EntityTrait{}, err
	}
	return row, nil
}

// RemoveTrait soft-deletes the active row for (entity, trait). The row stays
// queryable as history; a later AddTrait creates a fresh active row.
func (l *Ledger) RemoveTrait(ctx context.Context, gameID string, entity event.Ref, trait Name) error {
	return l.store.MarkTraitStatus(ctx, gameID, entity, trait, StatusRemoved, l.clock().UTC())
}

// FadeTrait marks the active row as faded without revoking it.
func (l *Ledger) FadeTrait(ctx context.Context, gameID string, entity event.Ref, trait Name) error {
	return l.store.MarkTraitStatus(ctx, gameID, entity, trait, StatusFaded, l.clock().UTC())
}

// HasTrait reports whether the entity currently has an active row for the trait.
func (l *Ledger) HasTrait(ctx context.Context, gameID string, entity event.Ref, trait Name) (bool, error) {
	_, err := l.store.GetActiveTrait(ctx, gameID, entity, trait)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// FindByEntity returns the entity's active trait rows.
func (l *Ledger) FindByEntity(ctx context.Context, gameID string, entity event.Ref) ([]EntityTrait, error) {
	return l.store.ListTraitsByEntity(ctx, gameID, entity, false)
}

// History returns every trait row for the entity, including faded and
// removed ones.
func (l *Ledger) History(ctx context.Context, gameID string, entity event.Ref) ([]EntityTrait, error) {
	return l.store.ListTraitsByEntity(ctx, gameID, entity, true)
}

// ActiveOpposites returns the entity's active traits that the catalog marks
// as contradicting the given trait. The DM sees these as proposal context.
func (l *Ledger) ActiveOpposites(ctx context.Context, gameID string, entity event.Ref, trait Name) ([]Name, error) {
	opposites := Opposites(trait)
	if len(opposites) == 0 {
		return nil, nil
	}
	var found []Name
	for _, opposite := range opposites {
		has, err := l.HasTrait(ctx, gameID, entity, opposite)
		if err != nil {
			return nil, err
		}
		if has {
			found = append(found, opposite)
		}
	}
	return found, nil
}
