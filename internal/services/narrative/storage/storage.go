// Package storage defines the persistence boundary consumed by the
// narrative engine. Implementations are injected; the engine never owns
// schema or wire mechanics.
package storage

import (
	"context"

	apperrors "github.com/louisbranch/tablemind/internal/platform/errors"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/scene"
)

// ErrNotFound indicates a requested persistence record is missing, or a
// conditional state transition found no row still in its expected state.
// Callers in concurrent resolution workflows treat this as an expected
// outcome, not a failure.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// ErrConflict indicates a write violated a uniqueness constraint, such as a
// second active trait row or a second pending emergence notification for the
// same entity and type.
var ErrConflict = apperrors.New(apperrors.CodeConflict, "record conflict")

// EventQuery bounds an event log read.
type EventQuery struct {
	// Limit caps the number of returned events. Zero means the store default.
	Limit int
	// Offset skips rows for paged reads.
	Offset int
	// MinTurn and MaxTurn bound the turn range inclusively when non-nil.
	MinTurn *int
	MaxTurn *int
}

// EventStore is the append-only, turn-ordered canonical event log.
// Results are always ordered by turn, then insertion.
type EventStore interface {
	AppendEvent(ctx context.Context, evt event.Event) (event.Event, error)
	ListEventsByActor(ctx context.Context, gameID string, actor event.Ref, q EventQuery) ([]event.Event, error)
	ListEventsByTarget(ctx context.Context, gameID string, target event.Ref, q EventQuery) ([]event.Event, error)
	ListEventsByActions(ctx context.Context, gameID string, actions []event.Action, q EventQuery) ([]event.Event, error)
	ListEventsByCategory(ctx context.Context, gameID string, category event.Category, q EventQuery) ([]event.Event, error)
	// ListRecentEvents returns the last n events for a game in ascending
	// turn order.
	ListRecentEvents(ctx context.Context, gameID string, n int) ([]event.Event, error)
	// ListEvents returns events matching an AIP-160 filter expression,
	// ascending by turn, with cursor pagination.
	ListEvents(ctx context.Context, gameID string, filter string, pageSize int, pageToken string) (EventPage, error)
}

// EventPage is one page of a filtered event listing.
type EventPage struct {
	Events        []event.Event
	NextPageToken string
}

// SceneStore exposes active-scene state for boundary detection.
type SceneStore interface {
	// GetActiveScene returns the game's active scene, or ErrNotFound when
	// no scene is active.
	GetActiveScene(ctx context.Context, gameID string) (scene.Scene, error)
	// CountEventsInScene returns how many events were recorded during a scene.
	CountEventsInScene(ctx context.Context, sceneID string) (int, error)
}
