// Package narrativefakes provides lightweight in-memory store fakes for
// narrative engine tests.
package narrativefakes

import (
	"context"
	"sort"
	"strconv"

	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/scene"
	"github.com/louisbranch/tablemind/internal/services/narrative/storage"
)

// EventStore is an in-memory EventStore fake for tests. Events are kept in
// append order and sorted by turn, then insertion, on reads.
type EventStore struct {
	Events []event.Event
}

// NewEventStore constructs an empty EventStore fake.
func NewEventStore() *EventStore {
	return &EventStore{}
}

// AppendEvent stores the event, assigning its insertion order as identity
// when no id was set.
func (s *EventStore) AppendEvent(_ context.Context, evt event.Event) (event.Event, error) {
	if evt.ID == "" {
		evt.ID = "evt-" + strconv.Itoa(len(s.Events)+1)
	}
	s.Events = append(s.Events, evt)
	return evt, nil
}

func (s *EventStore) ListEventsByActor(_ context.Context, gameID string, actor event.Ref, q storage.EventQuery) ([]event.Event, error) {
	return s.filter(gameID, q, func(evt event.Event) bool {
		return evt.Actor == actor
	}), nil
}

func (s *EventStore) ListEventsByTarget(_ context.Context, gameID string, target event.Ref, q storage.EventQuery) ([]event.Event, error) {
	return s.filter(gameID, q, func(evt event.Event) bool {
		return evt.Target == target
	}), nil
}

func (s *EventStore) ListEventsByActions(_ context.Context, gameID string, actions []event.Action, q storage.EventQuery) ([]event.Event, error) {
	wanted := make(map[event.Action]bool, len(actions))
	for _, action := range actions {
		wanted[action] = true
	}
	return s.filter(gameID, q, func(evt event.Event) bool {
		return wanted[evt.Action]
	}), nil
}

func (s *EventStore) ListEventsByCategory(_ context.Context, gameID string, category event.Category, q storage.EventQuery) ([]event.Event, error) {
	return s.filter(gameID, q, func(evt event.Event) bool {
		c, ok := event.CategoryOf(evt.Action)
		return ok && c == category
	}), nil
}

func (s *EventStore) ListRecentEvents(_ context.Context, gameID string, n int) ([]event.Event, error) {
	all := s.filter(gameID, storage.EventQuery{}, func(event.Event) bool { return true })
	if n > 0 && len(all) > n {
		all = all[len(all)-n:]
	}
	return all, nil
}

// ListEvents ignores filter expressions; fake callers use empty filters.
func (s *EventStore) ListEvents(_ context.Context, gameID string, _ string, pageSize int, _ string) (storage.EventPage, error) {
	all := s.filter(gameID, storage.EventQuery{}, func(event.Event) bool { return true })
	if pageSize > 0 && len(all) > pageSize {
		all = all[:pageSize]
	}
	return storage.EventPage{Events: all}, nil
}

func (s *EventStore) filter(gameID string, q storage.EventQuery, match func(event.Event) bool) []event.Event {
	var results []event.Event
	for _, evt := range s.Events {
		if evt.GameID != gameID || !match(evt) {
			continue
		}
		if q.MinTurn != nil && evt.Turn < *q.MinTurn {
			continue
		}
		if q.MaxTurn != nil && evt.Turn > *q.MaxTurn {
			continue
		}
		results = append(results, evt)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Turn < results[j].Turn
	})
	if q.Offset > 0 {
		if q.Offset >= len(results) {
			return nil
		}
		results = results[q.Offset:]
	}
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results
}

// SceneStore is an in-memory SceneStore fake for tests.
type SceneStore struct {
	Scenes      map[string]scene.Scene
	EventCounts map[string]int
}

// NewSceneStore constructs a SceneStore fake with initialized state maps.
func NewSceneStore() *SceneStore {
	return &SceneStore{
		Scenes:      make(map[string]scene.Scene),
		EventCounts: make(map[string]int),
	}
}

func (s *SceneStore) GetActiveScene(_ context.Context, gameID string) (scene.Scene, error) {
	for _, sc := range s.Scenes {
		if sc.GameID == gameID && sc.Status == scene.StatusActive {
			return sc, nil
		}
	}
	return scene.Scene{}, storage.ErrNotFound
}

func (s *SceneStore) CountEventsInScene(_ context.Context, sceneID string) (int, error) {
	return s.EventCounts[sceneID], nil
}
