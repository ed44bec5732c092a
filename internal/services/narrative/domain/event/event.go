package event

import (
	"strings"
	"time"
)

// Type identifies the type of a canonical game event.
type Type string

const (
	// TypeAction records a player or NPC action resolution.
	TypeAction Type = "action"
	// TypeDialogue records a spoken exchange.
	TypeDialogue Type = "dialogue"
	// TypeNarration records narrator-authored framing text.
	TypeNarration Type = "narration"
	// TypeSceneChange records a scene transition committed by the DM.
	TypeSceneChange Type = "scene_change"
	// TypeSystem records engine-originated bookkeeping.
	TypeSystem Type = "system"
)

// EntityType identifies what kind of entity an actor or target reference points at.
type EntityType string

const (
	// EntityTypePlayer is a player character.
	EntityTypePlayer EntityType = "player"
	// EntityTypeNPC is a non-player character.
	EntityTypeNPC EntityType = "npc"
	// EntityTypeLocation is a place in the game world.
	EntityTypeLocation EntityType = "location"
	// EntityTypeItem is an object in the game world.
	EntityTypeItem EntityType = "item"
)

// Ref names one entity by type and id.
type Ref struct {
	Type EntityType
	ID   string
}

// IsZero reports whether the reference is unset.
func (r Ref) IsZero() bool {
	return strings.TrimSpace(r.ID) == ""
}

// Event is an immutable, turn-ordered record of one game happening.
// Events are append-only and ordered by turn, then insertion.
type Event struct {
	// ID uniquely identifies the event.
	ID string
	// GameID is the game this event belongs to.
	GameID string
	// Turn is the monotonic turn counter at the time of the event.
	Turn int
	// Timestamp is when the event was recorded.
	Timestamp time.Time
	// Type identifies the kind of event.
	Type Type
	// Action is the resolved action verb, when the event carries one.
	Action Action
	// Actor identifies who caused the event.
	Actor Ref
	// Target identifies who or what the event was directed at, if anyone.
	Target Ref
	// LocationID is the location where the event happened.
	LocationID string
	// Tags carries free-form markers attached by the narrator pipeline.
	Tags []string
	// Content is the narrative text of the event.
	Content string
}

// HasTag reports whether the event carries the given tag.
func (e Event) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Tags recognized by the boundary detector.
const (
	// TagConfrontationResolved marks an explicit end of a confrontation.
	TagConfrontationResolved = "confrontation_resolved"
	// TagOngoingConfrontation marks a confrontation still in progress.
	TagOngoingConfrontation = "ongoing_confrontation"
)
