package emergence

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/relationship"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/trait"
)

const testGameID = "game-1"

var (
	testPlayer = event.Ref{Type: event.EntityTypePlayer, ID: "player-1"}
	testNPC    = event.Ref{Type: event.EntityTypeNPC, ID: "npc-1"}
)

type fakeRelationshipReader struct {
	rows []relationship.Relationship
}

func (r *fakeRelationshipReader) ListForEntity(_ context.Context, gameID string, entity event.Ref) ([]relationship.Relationship, error) {
	var matched []relationship.Relationship
	for _, row := range r.rows {
		if row.Key.GameID != gameID {
			continue
		}
		if row.Key.From == entity || row.Key.To == entity {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

type fakeTraitReader struct {
	rows []trait.EntityTrait
}

func (r *fakeTraitReader) FindByEntity(_ context.Context, gameID string, entity event.Ref) ([]trait.EntityTrait, error) {
	var matched []trait.EntityTrait
	for _, row := range r.rows {
		if row.GameID == gameID && row.Entity == entity && row.Status == trait.StatusActive {
			matched = append(matched, row)
		}
	}
	return matched, nil
}

func inboundRow(from event.Ref, fear, resentment, trust, affection float64) relationship.Relationship {
	return relationship.Relationship{
		Key: relationship.Key{GameID: testGameID, From: from, To: testNPC},
		Vector: relationship.Vector{
			Fear:       fear,
			Resentment: resentment,
			Trust:      trust,
			Affection:  affection,
		},
	}
}

func triggerEvent(actor, target event.Ref) event.Event {
	return event.Event{
		ID:     "evt-trigger",
		GameID: testGameID,
		Turn:   7,
		Type:   event.TypeAction,
		Action: event.ActionThreaten,
		Actor:  actor,
		Target: target,
	}
}

func TestDetectVillainOpportunity(t *testing.T) {
	t.Parallel()
	relationships := &fakeRelationshipReader{rows: []relationship.Relationship{
		inboundRow(testPlayer, 0.8, 0.6, 0, 0),
	}}
	detector := NewDetector(relationships, &fakeTraitReader{}, DefaultConfig())

	opportunities, err := detector.Detect(context.Background(), testGameID, triggerEvent(testNPC, testPlayer))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(opportunities) != 1 {
		t.Fatalf("opportunities = %v, want one villain", opportunities)
	}
	opp := opportunities[0]
	if opp.Type != TypeVillain {
		t.Errorf("type = %q, want villain", opp.Type)
	}
	if opp.Entity != testNPC {
		t.Errorf("entity = %+v, want the NPC", opp.Entity)
	}
	if opp.TriggeringEventID != "evt-trigger" {
		t.Errorf("triggering event = %q, want evt-trigger", opp.TriggeringEventID)
	}

	// fear 0.8 over a 0.6 floor normalizes to 0.5 of the headroom,
	// resentment sits exactly at its floor: confidence = 0.5 + 0.5*0.25.
	if math.Abs(opp.Confidence-0.625) > 1e-9 {
		t.Errorf("confidence = %v, want 0.625", opp.Confidence)
	}
	if len(opp.ContributingFactors) != 2 {
		t.Fatalf("factors = %v, want fear and resentment", opp.ContributingFactors)
	}
	for _, factor := range opp.ContributingFactors {
		if factor.Value < factor.Threshold {
			t.Errorf("factor %+v reports a value below its threshold", factor)
		}
	}
}

func TestDetectRequiresEveryDimension(t *testing.T) {
	t.Parallel()
	relationships := &fakeRelationshipReader{rows: []relationship.Relationship{
		inboundRow(testPlayer, 0.9, 0.2, 0, 0),
	}}
	detector := NewDetector(relationships, &fakeTraitReader{}, DefaultConfig())

	opportunities, err := detector.Detect(context.Background(), testGameID, triggerEvent(testNPC, testPlayer))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(opportunities) != 0 {
		t.Errorf("opportunities = %v, want none with resentment below its floor", opportunities)
	}
}

func TestDetectAllyOpportunity(t *testing.T) {
	t.Parallel()
	relationships := &fakeRelationshipReader{rows: []relationship.Relationship{
		inboundRow(testPlayer, 0, 0, 1, 1),
	}}
	detector := NewDetector(relationships, &fakeTraitReader{}, DefaultConfig())

	opportunities, err := detector.Detect(context.Background(), testGameID, triggerEvent(testPlayer, testNPC))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(opportunities) != 1 || opportunities[0].Type != TypeAlly {
		t.Fatalf("opportunities = %v, want one ally", opportunities)
	}
	if opportunities[0].Confidence != 1 {
		t.Errorf("confidence = %v, want 1 at saturated dimensions", opportunities[0].Confidence)
	}
}

func TestDetectIgnoresNonNPCEntities(t *testing.T) {
	t.Parallel()
	other := event.Ref{Type: event.EntityTypePlayer, ID: "player-2"}
	relationships := &fakeRelationshipReader{rows: []relationship.Relationship{
		{
			Key:    relationship.Key{GameID: testGameID, From: testNPC, To: other},
			Vector: relationship.Vector{Fear: 1, Resentment: 1},
		},
	}}
	detector := NewDetector(relationships, &fakeTraitReader{}, DefaultConfig())

	opportunities, err := detector.Detect(context.Background(), testGameID, triggerEvent(testPlayer, other))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(opportunities) != 0 {
		t.Errorf("opportunities = %v, player entities must not emerge", opportunities)
	}
}

func TestDetectIgnoresOutboundRelationships(t *testing.T) {
	t.Parallel()
	relationships := &fakeRelationshipReader{rows: []relationship.Relationship{
		{
			Key:    relationship.Key{GameID: testGameID, From: testNPC, To: testPlayer},
			Vector: relationship.Vector{Fear: 1, Resentment: 1},
		},
	}}
	detector := NewDetector(relationships, &fakeTraitReader{}, DefaultConfig())

	opportunities, err := detector.Detect(context.Background(), testGameID, triggerEvent(testNPC, testPlayer))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(opportunities) != 0 {
		t.Errorf("opportunities = %v, the NPC's own fear must not make it a villain", opportunities)
	}
}

func TestDetectMentionsCorroboratingTrait(t *testing.T) {
	t.Parallel()
	relationships := &fakeRelationshipReader{rows: []relationship.Relationship{
		inboundRow(testPlayer, 0.8, 0.7, 0, 0),
	}}
	traits := &fakeTraitReader{rows: []trait.EntityTrait{
		{GameID: testGameID, Entity: testNPC, Trait: trait.Feared, Status: trait.StatusActive},
	}}
	detector := NewDetector(relationships, traits, DefaultConfig())

	opportunities, err := detector.Detect(context.Background(), testGameID, triggerEvent(testNPC, testPlayer))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(opportunities) != 1 {
		t.Fatalf("opportunities = %v, want one villain", opportunities)
	}
	if !strings.Contains(opportunities[0].Reason, string(trait.Feared)) {
		t.Errorf("reason = %q, want mention of the active feared trait", opportunities[0].Reason)
	}
}

func TestDetectUsesPeakInboundValues(t *testing.T) {
	t.Parallel()
	second := event.Ref{Type: event.EntityTypePlayer, ID: "player-2"}
	relationships := &fakeRelationshipReader{rows: []relationship.Relationship{
		inboundRow(testPlayer, 0.7, 0.1, 0, 0),
		inboundRow(second, 0.2, 0.9, 0, 0),
	}}
	detector := NewDetector(relationships, &fakeTraitReader{}, DefaultConfig())

	opportunities, err := detector.Detect(context.Background(), testGameID, triggerEvent(testNPC, testPlayer))
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(opportunities) != 1 || opportunities[0].Type != TypeVillain {
		t.Fatalf("opportunities = %v, want villain from peak values across observers", opportunities)
	}
}
