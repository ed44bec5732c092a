// Package boundary scores whether the active scene has reached a natural
// ending point.
//
// Detection is advisory: it reads the recent event window and active scene
// state, evaluates independent signals, and aggregates them into a single
// confidence. Nothing is mutated; the DM decides whether to act on a
// suggestion.
package boundary

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/scene"
	"github.com/louisbranch/tablemind/internal/services/narrative/storage"
)

// rankDecay is the multiplier each successive fired signal contributes
// relative to the previous one when aggregating confidence.
const rankDecay = 0.3

// SignalType identifies one boundary signal.
type SignalType string

const (
	SignalLocationChange        SignalType = "location_change"
	SignalConfrontationResolved SignalType = "confrontation_resolved"
	SignalMoodShift             SignalType = "mood_shift"
	SignalLongDuration          SignalType = "long_duration"
)

// Signal is one fired boundary indicator.
type Signal struct {
	Type     SignalType
	Strength float64
	Reason   string
	// TriggerEventID names the event that fired the signal, when one did.
	TriggerEventID string
}

// SceneContext snapshots the scene state a suggestion was computed against.
type SceneContext struct {
	SceneID       string
	LocationID    string
	Mood          scene.Mood
	StartedTurn   int
	CurrentTurn   int
	EventsInScene int
}

// Suggestion is the outcome of one boundary analysis. The zero value is the
// no-active-scene sentinel.
type Suggestion struct {
	ShouldEndScene bool
	Confidence     float64
	Signals        []Signal
	Scene          SceneContext
}

// Detector evaluates scene boundary signals over the recent event window.
type Detector struct {
	events storage.EventStore
	scenes storage.SceneStore
	tracer trace.Tracer

	mu  sync.RWMutex
	cfg Config
}

// NewDetector constructs a boundary detector over injected stores.
func NewDetector(events storage.EventStore, scenes storage.SceneStore, cfg Config) *Detector {
	return &Detector{
		events: events,
		scenes: scenes,
		cfg:    cfg,
		tracer: otel.Tracer("tablemind/narrative/boundary"),
	}
}

// Config returns the detector's current configuration.
func (d *Detector) Config() Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// UpdateConfig replaces the detector's configuration after validating it.
func (d *Detector) UpdateConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg = cfg
	return nil
}

// Analyze scores the active scene's boundary signals at the given turn.
// With no active scene it returns the zero suggestion, not an error.
func (d *Detector) Analyze(ctx context.Context, gameID string, currentTurn int) (Suggestion, error) {
	ctx, span := d.tracer.Start(ctx, "boundary.Analyze", trace.WithAttributes(
		attribute.String("game.id", gameID),
		attribute.Int("turn", currentTurn),
	))
	defer span.End()

	cfg := d.Config()

	active, err := d.scenes.GetActiveScene(ctx, gameID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Suggestion{}, nil
		}
		return Suggestion{}, err
	}

	recent, err := d.events.ListRecentEvents(ctx, gameID, cfg.RecentEventWindow)
	if err != nil {
		return Suggestion{}, err
	}
	eventsInScene, err := d.scenes.CountEventsInScene(ctx, active.ID)
	if err != nil {
		return Suggestion{}, err
	}

	var signals []Signal
	if s, ok := locationChangeSignal(cfg, active, recent); ok {
		signals = append(signals, s)
	}
	if s, ok := confrontationResolvedSignal(cfg, recent); ok {
		signals = append(signals, s)
	}
	if s, ok := moodShiftSignal(cfg, active, recent); ok {
		signals = append(signals, s)
	}
	if s, ok := longDurationSignal(cfg, active, currentTurn, eventsInScene); ok {
		signals = append(signals, s)
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Strength > signals[j].Strength
	})

	confidence := 0.0
	rankWeight := 1.0
	for _, s := range signals {
		confidence += s.Strength * rankWeight
		rankWeight *= rankDecay
	}
	if confidence > 1 {
		confidence = 1
	}
	span.SetAttributes(
		attribute.Int("signals.count", len(signals)),
		attribute.Float64("confidence", confidence),
	)

	return Suggestion{
		ShouldEndScene: confidence >= cfg.ConfidenceThreshold,
		Confidence:     confidence,
		Signals:        signals,
		Scene: SceneContext{
			SceneID:       active.ID,
			LocationID:    active.LocationID,
			Mood:          active.Mood,
			StartedTurn:   active.StartedTurn,
			CurrentTurn:   currentTurn,
			EventsInScene: eventsInScene,
		},
	}, nil
}

// locationChangeSignal fires at full weight on an explicit location entry,
// or at reduced weight when the latest event has drifted away from the
// scene's location through an in-window transition point.
func locationChangeSignal(cfg Config, active scene.Scene, recent []event.Event) (Signal, bool) {
	for _, evt := range recent {
		if evt.Action == event.ActionEnterLocation {
			return Signal{
				Type:           SignalLocationChange,
				Strength:       cfg.LocationChangeWeight,
				Reason:         "party explicitly entered a new location",
				TriggerEventID: evt.ID,
			}, true
		}
	}
	if len(recent) == 0 {
		return Signal{}, false
	}
	latest := recent[len(recent)-1]
	if latest.LocationID == "" || latest.LocationID == active.LocationID {
		return Signal{}, false
	}
	for i := 1; i < len(recent); i++ {
		prev, curr := recent[i-1], recent[i]
		if prev.LocationID == "" || curr.LocationID == "" {
			continue
		}
		if prev.LocationID != curr.LocationID {
			return Signal{
				Type:           SignalLocationChange,
				Strength:       cfg.LocationChangeWeight * 0.8,
				Reason:         "recent events moved away from the scene location",
				TriggerEventID: curr.ID,
			}, true
		}
	}
	return Signal{}, false
}

// confrontationResolvedSignal fires at full weight on an explicit
// resolution tag, at reduced weight when violence gives way to a later
// mercy action, and at half weight when violence simply subsides.
func confrontationResolvedSignal(cfg Config, recent []event.Event) (Signal, bool) {
	for _, evt := range recent {
		if evt.HasTag(event.TagConfrontationResolved) {
			return Signal{
				Type:           SignalConfrontationResolved,
				Strength:       cfg.ConfrontationResolvedWeight,
				Reason:         "confrontation explicitly marked resolved",
				TriggerEventID: evt.ID,
			}, true
		}
	}

	firstViolence := -1
	for i, evt := range recent {
		if category, ok := event.CategoryOf(evt.Action); ok && category == event.CategoryViolence {
			firstViolence = i
			break
		}
	}
	if firstViolence < 0 {
		return Signal{}, false
	}

	for i := firstViolence + 1; i < len(recent); i++ {
		if category, ok := event.CategoryOf(recent[i].Action); ok && category == event.CategoryMercy {
			return Signal{
				Type:           SignalConfrontationResolved,
				Strength:       cfg.ConfrontationResolvedWeight * 0.7,
				Reason:         "violence was followed by a mercy action",
				TriggerEventID: recent[i].ID,
			}, true
		}
	}

	for _, evt := range recent {
		if evt.HasTag(event.TagOngoingConfrontation) {
			return Signal{}, false
		}
	}
	final := recent[len(recent)-1]
	if category, ok := event.CategoryOf(final.Action); ok && category == event.CategoryViolence {
		return Signal{}, false
	}
	return Signal{
		Type:     SignalConfrontationResolved,
		Strength: cfg.ConfrontationResolvedWeight * 0.5,
		Reason:   "violence subsided without an ongoing confrontation",
	}, true
}

// moodContrasts holds the unordered mood pairs considered contrasting.
var moodContrasts = []struct{ a, b scene.Mood }{
	{scene.MoodAction, scene.MoodPeaceful},
	{scene.MoodTense, scene.MoodPeaceful},
	{scene.MoodTense, scene.MoodComedic},
	{scene.MoodAction, scene.MoodEmotional},
	{scene.MoodOminous, scene.MoodComedic},
}

func moodsContrast(a, b scene.Mood) bool {
	for _, pair := range moodContrasts {
		if (pair.a == a && pair.b == b) || (pair.a == b && pair.b == a) {
			return true
		}
	}
	return false
}

// moodShiftSignal compares the mood inferred from recent events against the
// scene's declared mood.
func moodShiftSignal(cfg Config, active scene.Scene, recent []event.Event) (Signal, bool) {
	if active.Mood == "" || len(recent) < 3 {
		return Signal{}, false
	}

	var violence, mercy, social, exploration int
	for _, evt := range recent {
		if evt.Type == event.TypeDialogue {
			social++
			continue
		}
		category, ok := event.CategoryOf(evt.Action)
		if !ok {
			continue
		}
		switch category {
		case event.CategoryViolence:
			violence++
		case event.CategoryMercy:
			mercy++
		case event.CategorySocial:
			social++
		case event.CategoryExploration:
			exploration++
		}
	}

	total := float64(len(recent))
	var inferred scene.Mood
	switch {
	case float64(violence)/total > 0.4:
		inferred = scene.MoodAction
	case float64(mercy)/total > 0.3:
		inferred = scene.MoodPeaceful
	case float64(social)/total > 0.4:
		inferred = scene.MoodEmotional
	case float64(exploration)/total > 0.4:
		inferred = scene.MoodMysterious
	default:
		return Signal{}, false
	}

	if !moodsContrast(inferred, active.Mood) {
		return Signal{}, false
	}
	return Signal{
		Type:     SignalMoodShift,
		Strength: cfg.MoodShiftWeight,
		Reason:   fmt.Sprintf("recent events read as %s against a %s scene", inferred, active.Mood),
	}, true
}

// longDurationSignal fires when the scene has outlived its turn budget, or,
// only when the turn check did not fire, its event budget. Strength scales
// with the overrun and is capped at 1.
func longDurationSignal(cfg Config, active scene.Scene, currentTurn, eventsInScene int) (Signal, bool) {
	turnsSinceStart := currentTurn - active.StartedTurn
	if turnsSinceStart >= cfg.SceneTurnLimit {
		turnsOver := turnsSinceStart - cfg.SceneTurnLimit
		strength := cfg.LongDurationWeight * (1 + 0.1*float64(turnsOver))
		if strength > 1 {
			strength = 1
		}
		return Signal{
			Type:     SignalLongDuration,
			Strength: strength,
			Reason:   fmt.Sprintf("scene has run for %d turns", turnsSinceStart),
		}, true
	}
	if eventsInScene >= cfg.SceneEventLimit {
		eventsOver := eventsInScene - cfg.SceneEventLimit
		strength := cfg.LongDurationWeight * (1 + 0.05*float64(eventsOver))
		if strength > 1 {
			strength = 1
		}
		return Signal{
			Type:     SignalLongDuration,
			Strength: strength,
			Reason:   fmt.Sprintf("scene has accumulated %d events", eventsInScene),
		}, true
	}
	return Signal{}, false
}
