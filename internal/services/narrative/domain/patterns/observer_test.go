package patterns

import (
	"context"
	"math"
	"testing"

	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/trait"
	"github.com/louisbranch/tablemind/internal/testkit/narrativefakes"
)

const testGameID = "game-1"

var testPlayer = event.Ref{Type: event.EntityTypePlayer, ID: "player-1"}

func seedActions(t *testing.T, store *narrativefakes.EventStore, actions ...event.Action) {
	t.Helper()
	for i, action := range actions {
		_, err := store.AppendEvent(context.Background(), event.Event{
			GameID: testGameID,
			Turn:   i + 1,
			Type:   event.TypeAction,
			Action: action,
			Actor:  testPlayer,
		})
		if err != nil {
			t.Fatalf("append event: %v", err)
		}
	}
}

func TestGetPlayerPatternsNeutralBelowMinimum(t *testing.T) {
	t.Parallel()
	store := narrativefakes.NewEventStore()
	seedActions(t, store, event.ActionSpareEnemy, event.ActionAttack)

	observer := NewObserver(store, DefaultConfig())
	patterns, err := observer.GetPlayerPatterns(context.Background(), testGameID, testPlayer.ID, Options{})
	if err != nil {
		t.Fatalf("GetPlayerPatterns: %v", err)
	}
	if patterns.Ratios.MercyVsViolence != 0 {
		t.Errorf("mercy ratio = %v, want neutral 0 below minimum", patterns.Ratios.MercyVsViolence)
	}
	if patterns.TotalEvents != 2 {
		t.Errorf("total events = %d, want 2", patterns.TotalEvents)
	}
}

func TestGetPlayerPatternsMercyViolenceRatio(t *testing.T) {
	t.Parallel()
	store := narrativefakes.NewEventStore()
	seedActions(t, store, event.ActionAttackFirst, event.ActionKill, event.ActionSpareEnemy)

	observer := NewObserver(store, DefaultConfig())
	patterns, err := observer.GetPlayerPatterns(context.Background(), testGameID, testPlayer.ID, Options{})
	if err != nil {
		t.Fatalf("GetPlayerPatterns: %v", err)
	}

	want := (1.0 - 2.0) / 3.0
	if math.Abs(patterns.Ratios.MercyVsViolence-want) > 1e-9 {
		t.Errorf("mercy ratio = %v, want %v", patterns.Ratios.MercyVsViolence, want)
	}
}

func TestGetPlayerPatternsRatioBounds(t *testing.T) {
	t.Parallel()
	store := narrativefakes.NewEventStore()
	seedActions(t, store, event.ActionSpareEnemy, event.ActionForgive, event.ActionHealOther)

	observer := NewObserver(store, DefaultConfig())
	patterns, err := observer.GetPlayerPatterns(context.Background(), testGameID, testPlayer.ID, Options{})
	if err != nil {
		t.Fatalf("GetPlayerPatterns: %v", err)
	}
	if patterns.Ratios.MercyVsViolence != 1 {
		t.Errorf("mercy ratio = %v, want exactly 1 with no violence events", patterns.Ratios.MercyVsViolence)
	}
}

func TestGetPlayerPatternsViolenceInitiation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		actions       []event.Action
		wantInitiates bool
		wantRatio     float64
	}{
		{
			name:          "below minimum never initiates",
			actions:       []event.Action{event.ActionAttackFirst, event.ActionAttackFirst},
			wantInitiates: false,
			wantRatio:     1,
		},
		{
			name: "high initiation share",
			actions: []event.Action{
				event.ActionAttackFirst, event.ActionAttackFirst,
				event.ActionAttack, event.ActionKill,
			},
			wantInitiates: true,
			wantRatio:     0.5,
		},
		{
			name: "share at threshold does not initiate",
			actions: []event.Action{
				event.ActionAttackFirst, event.ActionAttackFirst,
				event.ActionAttack, event.ActionAttack, event.ActionKill,
			},
			wantInitiates: false,
			wantRatio:     0.4,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			store := narrativefakes.NewEventStore()
			seedActions(t, store, tc.actions...)

			observer := NewObserver(store, DefaultConfig())
			patterns, err := observer.GetPlayerPatterns(context.Background(), testGameID, testPlayer.ID, Options{})
			if err != nil {
				t.Fatalf("GetPlayerPatterns: %v", err)
			}
			got := patterns.ViolenceInitiation
			if got.InitiatesViolence != tc.wantInitiates {
				t.Errorf("initiates = %v, want %v", got.InitiatesViolence, tc.wantInitiates)
			}
			if math.Abs(got.InitiationRatio-tc.wantRatio) > 1e-9 {
				t.Errorf("initiation ratio = %v, want %v", got.InitiationRatio, tc.wantRatio)
			}
		})
	}
}

func TestGetPlayerPatternsSocialApproach(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		actions []event.Action
		want    Approach
	}{
		{
			name:    "minimal below event floor",
			actions: []event.Action{event.ActionHelpNPC, event.ActionHelpNPC},
			want:    ApproachMinimal,
		},
		{
			name: "helpful majority",
			actions: []event.Action{
				event.ActionHelpNPC, event.ActionHelpNPC, event.ActionShareInfo,
				event.ActionPersuade, event.ActionIntimidate,
			},
			want: ApproachHelpful,
		},
		{
			name: "manipulative majority",
			actions: []event.Action{
				event.ActionManipulate, event.ActionManipulate, event.ActionBribe,
				event.ActionHelpNPC, event.ActionPersuade,
			},
			want: ApproachManipulative,
		},
		{
			name: "no dominant bucket is balanced",
			actions: []event.Action{
				event.ActionHelpNPC, event.ActionPersuade, event.ActionManipulate,
				event.ActionIntimidate, event.ActionShareInfo,
			},
			want: ApproachBalanced,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			store := narrativefakes.NewEventStore()
			seedActions(t, store, tc.actions...)

			observer := NewObserver(store, DefaultConfig())
			patterns, err := observer.GetPlayerPatterns(context.Background(), testGameID, testPlayer.ID, Options{})
			if err != nil {
				t.Fatalf("GetPlayerPatterns: %v", err)
			}
			if patterns.SocialApproach != tc.want {
				t.Errorf("social approach = %q, want %q", patterns.SocialApproach, tc.want)
			}
		})
	}
}

func TestGetPlayerPatternsDominantTraits(t *testing.T) {
	t.Parallel()
	store := narrativefakes.NewEventStore()
	seedActions(t, store,
		event.ActionSpareEnemy, event.ActionForgive, event.ActionHealOther, event.ActionProtect,
		event.ActionTellTruth, event.ActionKeepOath, event.ActionConfess,
	)

	observer := NewObserver(store, DefaultConfig())
	patterns, err := observer.GetPlayerPatterns(context.Background(), testGameID, testPlayer.ID, Options{})
	if err != nil {
		t.Fatalf("GetPlayerPatterns: %v", err)
	}

	want := []trait.Name{trait.Merciful, trait.Honest}
	if len(patterns.DominantTraits) != len(want) {
		t.Fatalf("dominant traits = %v, want %v", patterns.DominantTraits, want)
	}
	for i, name := range want {
		if patterns.DominantTraits[i] != name {
			t.Errorf("dominant trait[%d] = %q, want %q", i, patterns.DominantTraits[i], name)
		}
	}
}

func TestGetPlayerPatternsCuriousFromExplorationShare(t *testing.T) {
	t.Parallel()
	store := narrativefakes.NewEventStore()
	seedActions(t, store,
		event.ActionExplore, event.ActionSearch, event.ActionInvestigate,
		event.ActionRest, event.ActionReflect,
	)

	observer := NewObserver(store, DefaultConfig())
	patterns, err := observer.GetPlayerPatterns(context.Background(), testGameID, testPlayer.ID, Options{})
	if err != nil {
		t.Fatalf("GetPlayerPatterns: %v", err)
	}

	found := false
	for _, name := range patterns.DominantTraits {
		if name == trait.Curious {
			found = true
		}
	}
	if !found {
		t.Errorf("dominant traits = %v, want Curious from exploration share", patterns.DominantTraits)
	}
}

func TestGetPlayerPatternsTurnRange(t *testing.T) {
	t.Parallel()
	store := narrativefakes.NewEventStore()
	seedActions(t, store,
		event.ActionAttack, event.ActionAttack, event.ActionAttack,
		event.ActionSpareEnemy, event.ActionForgive, event.ActionHealOther,
	)

	observer := NewObserver(store, DefaultConfig())
	patterns, err := observer.GetPlayerPatterns(context.Background(), testGameID, testPlayer.ID, Options{
		TurnRange: &TurnRange{From: 4, To: 6},
	})
	if err != nil {
		t.Fatalf("GetPlayerPatterns: %v", err)
	}
	if patterns.TotalEvents != 3 {
		t.Fatalf("total events = %d, want 3 within turn range", patterns.TotalEvents)
	}
	if patterns.Ratios.MercyVsViolence != 1 {
		t.Errorf("mercy ratio = %v, want 1 with violence turns excluded", patterns.Ratios.MercyVsViolence)
	}
}

func TestGetPlayerPatternsIgnoresOtherActors(t *testing.T) {
	t.Parallel()
	store := narrativefakes.NewEventStore()
	seedActions(t, store, event.ActionAttack)
	_, err := store.AppendEvent(context.Background(), event.Event{
		GameID: testGameID,
		Turn:   2,
		Type:   event.TypeAction,
		Action: event.ActionKill,
		Actor:  event.Ref{Type: event.EntityTypeNPC, ID: "npc-1"},
	})
	if err != nil {
		t.Fatalf("append event: %v", err)
	}

	observer := NewObserver(store, DefaultConfig())
	patterns, err := observer.GetPlayerPatterns(context.Background(), testGameID, testPlayer.ID, Options{})
	if err != nil {
		t.Fatalf("GetPlayerPatterns: %v", err)
	}
	if patterns.TotalEvents != 1 {
		t.Errorf("total events = %d, want 1 for the player actor only", patterns.TotalEvents)
	}
}
