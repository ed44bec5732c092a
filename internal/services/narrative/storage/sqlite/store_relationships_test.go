package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/louisbranch/tablemind/internal/platform/errors"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/relationship"
	"github.com/louisbranch/tablemind/internal/services/narrative/storage"
)

func relationshipKey(gameID, fromID, toID string) relationship.Key {
	return relationship.Key{
		GameID: gameID,
		From:   event.Ref{Type: event.EntityTypePlayer, ID: fromID},
		To:     event.Ref{Type: event.EntityTypeNPC, ID: toID},
	}
}

func TestGetRelationshipNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	_, err := store.GetRelationship(context.Background(), relationshipKey("game-1", "pc-1", "npc-1"))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetRelationshipDimensionUpsertsAndPreservesOthers(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	key := relationshipKey("game-1", "pc-1", "npc-1")
	at := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

	created, err := store.SetRelationshipDimension(context.Background(), key, relationship.DimensionTrust, 0.6, at)
	if err != nil {
		t.Fatalf("set trust: %v", err)
	}
	if created.Vector.Trust != 0.6 || created.Vector.Fear != 0 {
		t.Fatalf("unexpected vector after first set: %+v", created.Vector)
	}
	if !created.UpdatedAt.Equal(at) {
		t.Fatalf("expected updated at %v, got %v", at, created.UpdatedAt)
	}

	later := at.Add(time.Minute)
	updated, err := store.SetRelationshipDimension(context.Background(), key, relationship.DimensionFear, 0.8, later)
	if err != nil {
		t.Fatalf("set fear: %v", err)
	}
	if updated.Vector.Trust != 0.6 || updated.Vector.Fear != 0.8 {
		t.Fatalf("expected trust preserved and fear set, got %+v", updated.Vector)
	}
	if !updated.UpdatedAt.Equal(later) {
		t.Fatalf("expected updated at %v, got %v", later, updated.UpdatedAt)
	}
}

func TestSetRelationshipDimensionRejectsUnknownDimension(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	key := relationshipKey("game-1", "pc-1", "npc-1")
	_, err := store.SetRelationshipDimension(context.Background(), key, relationship.Dimension("loyalty"), 0.5, time.Now())
	if !errors.Is(err, apperrors.New(apperrors.CodeRelationshipDimensionUnknown, "")) {
		t.Fatalf("expected unknown dimension error, got %v", err)
	}
}

func TestListRelationshipsForEntityCoversBothDirections(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	at := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	npc := event.Ref{Type: event.EntityTypeNPC, ID: "npc-1"}

	// pc-1 -> npc-1, npc-1 -> pc-2, and one row not touching npc-1 at all.
	if _, err := store.SetRelationshipDimension(context.Background(), relationshipKey("game-1", "pc-1", "npc-1"), relationship.DimensionFear, 0.7, at); err != nil {
		t.Fatalf("set inbound row: %v", err)
	}
	outbound := relationship.Key{GameID: "game-1", From: npc, To: event.Ref{Type: event.EntityTypePlayer, ID: "pc-2"}}
	if _, err := store.SetRelationshipDimension(context.Background(), outbound, relationship.DimensionTrust, 0.4, at); err != nil {
		t.Fatalf("set outbound row: %v", err)
	}
	if _, err := store.SetRelationshipDimension(context.Background(), relationshipKey("game-1", "pc-1", "npc-2"), relationship.DimensionTrust, 0.9, at); err != nil {
		t.Fatalf("set unrelated row: %v", err)
	}

	rows, err := store.ListRelationshipsForEntity(context.Background(), "game-1", npc)
	if err != nil {
		t.Fatalf("list relationships: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Key.From != npc && row.Key.To != npc {
			t.Fatalf("row does not involve npc-1: %+v", row.Key)
		}
	}
}
