// Package scene holds the active-scene state consumed by boundary detection.
package scene

import "time"

// Status identifies one scene lifecycle state.
type Status string

const (
	// StatusActive means the scene is the game's current scene.
	StatusActive Status = "active"
	// StatusEnded means the scene has been closed by the DM.
	StatusEnded Status = "ended"
)

// Mood is the DM-declared emotional register of a scene.
type Mood string

const (
	MoodAction     Mood = "action"
	MoodPeaceful   Mood = "peaceful"
	MoodTense      Mood = "tense"
	MoodComedic    Mood = "comedic"
	MoodOminous    Mood = "ominous"
	MoodEmotional  Mood = "emotional"
	MoodMysterious Mood = "mysterious"
)

// Scene captures one narrative scene's boundary-relevant state.
type Scene struct {
	ID          string
	GameID      string
	LocationID  string
	Mood        Mood
	Status      Status
	StartedTurn int
	StartedAt   time.Time
	EndedAt     *time.Time
}
