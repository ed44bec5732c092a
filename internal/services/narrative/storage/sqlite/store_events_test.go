package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/louisbranch/tablemind/internal/platform/errors"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/storage"
)

func TestAppendEventValidation(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	actor := event.Ref{Type: event.EntityTypePlayer, ID: "pc-1"}

	cases := []struct {
		name string
		evt  event.Event
		code apperrors.Code
	}{
		{
			name: "missing game id",
			evt:  event.Event{Turn: 1, Actor: actor},
			code: apperrors.CodeEventGameIDEmpty,
		},
		{
			name: "missing actor",
			evt:  event.Event{GameID: "game-1", Turn: 1},
			code: apperrors.CodeEventActorEmpty,
		},
		{
			name: "turn below one",
			evt:  event.Event{GameID: "game-1", Turn: 0, Actor: actor},
			code: apperrors.CodeEventTurnInvalid,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.AppendEvent(context.Background(), tc.evt)
			if !errors.Is(err, apperrors.New(tc.code, "")) {
				t.Fatalf("expected code %s, got %v", tc.code, err)
			}
		})
	}
}

func TestAppendEventAssignsIDAndDefaults(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	stored := appendTestEvent(t, store, event.Event{
		GameID: "game-1",
		Turn:   1,
		Type:   event.TypeAction,
		Action: event.ActionAttack,
		Actor:  event.Ref{Type: event.EntityTypePlayer, ID: "pc-1"},
		Target: event.Ref{Type: event.EntityTypeNPC, ID: "npc-1"},
		Tags:   []string{event.TagOngoingConfrontation},
	})
	if stored.ID == "" {
		t.Fatal("expected generated event id")
	}
	if stored.Timestamp.IsZero() {
		t.Fatal("expected default timestamp")
	}

	events, err := store.ListEventsByActor(context.Background(), "game-1", stored.Actor, storage.EventQuery{})
	if err != nil {
		t.Fatalf("list events by actor: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	got := events[0]
	if got.ID != stored.ID || got.Action != event.ActionAttack || got.Target.ID != "npc-1" {
		t.Fatalf("unexpected round-tripped event: %+v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != event.TagOngoingConfrontation {
		t.Fatalf("unexpected tags: %v", got.Tags)
	}
}

func TestAppendEventRejectsDuplicateID(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	evt := event.Event{
		ID:     "evt-dup",
		GameID: "game-1",
		Turn:   1,
		Actor:  event.Ref{Type: event.EntityTypePlayer, ID: "pc-1"},
	}
	appendTestEvent(t, store, evt)

	if _, err := store.AppendEvent(context.Background(), evt); !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestListEventsByActorHonorsTurnRange(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	actor := event.Ref{Type: event.EntityTypePlayer, ID: "pc-1"}
	for turn := 1; turn <= 6; turn++ {
		appendTestEvent(t, store, event.Event{
			GameID: "game-1",
			Turn:   turn,
			Type:   event.TypeAction,
			Action: event.ActionAttack,
			Actor:  actor,
		})
	}

	minTurn, maxTurn := 2, 4
	events, err := store.ListEventsByActor(context.Background(), "game-1", actor, storage.EventQuery{
		MinTurn: &minTurn,
		MaxTurn: &maxTurn,
	})
	if err != nil {
		t.Fatalf("list events by actor: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, evt := range events {
		if evt.Turn != i+2 {
			t.Fatalf("expected turn %d at index %d, got %d", i+2, i, evt.Turn)
		}
	}
}

func TestListEventsByActionsFiltersAndOrders(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	actor := event.Ref{Type: event.EntityTypePlayer, ID: "pc-1"}
	for turn, action := range map[int]event.Action{
		1: event.ActionAttack,
		2: event.ActionShowMercy,
		3: event.ActionLie,
		4: event.ActionAttack,
	} {
		appendTestEvent(t, store, event.Event{GameID: "game-1", Turn: turn, Action: action, Actor: actor})
	}

	events, err := store.ListEventsByActions(context.Background(), "game-1", []event.Action{event.ActionAttack, event.ActionShowMercy}, storage.EventQuery{})
	if err != nil {
		t.Fatalf("list events by actions: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Turn != 1 || events[1].Turn != 2 || events[2].Turn != 4 {
		t.Fatalf("expected turns [1 2 4], got [%d %d %d]", events[0].Turn, events[1].Turn, events[2].Turn)
	}

	empty, err := store.ListEventsByActions(context.Background(), "game-1", nil, storage.EventQuery{})
	if err != nil {
		t.Fatalf("list events with empty action set: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no events for empty action set, got %d", len(empty))
	}
}

func TestListRecentEventsReturnsTailAscending(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	actor := event.Ref{Type: event.EntityTypePlayer, ID: "pc-1"}
	for turn := 1; turn <= 5; turn++ {
		appendTestEvent(t, store, event.Event{GameID: "game-1", Turn: turn, Actor: actor})
	}

	events, err := store.ListRecentEvents(context.Background(), "game-1", 3)
	if err != nil {
		t.Fatalf("list recent events: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Turn != 3 || events[2].Turn != 5 {
		t.Fatalf("expected turns 3..5 ascending, got first=%d last=%d", events[0].Turn, events[2].Turn)
	}
}

func TestListEventsFilterAndPagination(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	actor := event.Ref{Type: event.EntityTypePlayer, ID: "pc-1"}
	for turn := 1; turn <= 5; turn++ {
		appendTestEvent(t, store, event.Event{
			GameID: "game-1",
			Turn:   turn,
			Action: event.ActionAttack,
			Actor:  actor,
		})
	}
	appendTestEvent(t, store, event.Event{GameID: "game-1", Turn: 6, Action: event.ActionShowMercy, Actor: actor})

	first, err := store.ListEvents(context.Background(), "game-1", `action = "attack"`, 2, "")
	if err != nil {
		t.Fatalf("list events first page: %v", err)
	}
	if len(first.Events) != 2 || first.NextPageToken == "" {
		t.Fatalf("expected full first page with token, got %d events token %q", len(first.Events), first.NextPageToken)
	}
	if first.Events[0].Turn != 1 || first.Events[1].Turn != 2 {
		t.Fatalf("expected turns [1 2], got [%d %d]", first.Events[0].Turn, first.Events[1].Turn)
	}

	second, err := store.ListEvents(context.Background(), "game-1", `action = "attack"`, 2, first.NextPageToken)
	if err != nil {
		t.Fatalf("list events second page: %v", err)
	}
	if len(second.Events) != 2 || second.NextPageToken == "" {
		t.Fatalf("expected full second page with token, got %d events token %q", len(second.Events), second.NextPageToken)
	}

	last, err := store.ListEvents(context.Background(), "game-1", `action = "attack"`, 2, second.NextPageToken)
	if err != nil {
		t.Fatalf("list events last page: %v", err)
	}
	if len(last.Events) != 1 || last.NextPageToken != "" {
		t.Fatalf("expected final page of 1 without token, got %d events token %q", len(last.Events), last.NextPageToken)
	}
	if last.Events[0].Turn != 5 {
		t.Fatalf("expected turn 5 on final page, got %d", last.Events[0].Turn)
	}
}

func TestListEventsRejectsInvalidFilter(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.ListEvents(context.Background(), "game-1", `bogus_field = "x"`, 10, "")
	if !errors.Is(err, apperrors.New(apperrors.CodeEventFilterInvalid, "")) {
		t.Fatalf("expected filter invalid error, got %v", err)
	}
}

func TestListEventsUnknownPageTokenReturnsEmptyPage(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	appendTestEvent(t, store, event.Event{
		GameID: "game-1",
		Turn:   1,
		Actor:  event.Ref{Type: event.EntityTypePlayer, ID: "pc-1"},
	})

	page, err := store.ListEvents(context.Background(), "game-1", "", 10, "missing-token")
	if err != nil {
		t.Fatalf("list events with unknown token: %v", err)
	}
	if len(page.Events) != 0 || page.NextPageToken != "" {
		t.Fatalf("expected empty page, got %d events token %q", len(page.Events), page.NextPageToken)
	}
}

func TestListEventsScopedToGame(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	actor := event.Ref{Type: event.EntityTypePlayer, ID: "pc-1"}
	appendTestEvent(t, store, event.Event{GameID: "game-1", Turn: 1, Actor: actor})
	appendTestEvent(t, store, event.Event{GameID: "game-2", Turn: 1, Actor: actor})

	page, err := store.ListEvents(context.Background(), "game-1", "", 10, "")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(page.Events) != 1 || page.Events[0].GameID != "game-1" {
		t.Fatalf("expected only game-1 events, got %+v", page.Events)
	}
}

func TestListEventsByTargetTimestampRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	at := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)
	target := event.Ref{Type: event.EntityTypeNPC, ID: "npc-1"}
	appendTestEvent(t, store, event.Event{
		GameID:    "game-1",
		Turn:      1,
		Timestamp: at,
		Actor:     event.Ref{Type: event.EntityTypePlayer, ID: "pc-1"},
		Target:    target,
	})

	events, err := store.ListEventsByTarget(context.Background(), "game-1", target, storage.EventQuery{})
	if err != nil {
		t.Fatalf("list events by target: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if !events[0].Timestamp.Equal(at) {
		t.Fatalf("expected timestamp %v, got %v", at, events[0].Timestamp)
	}
}
