// Package emergence watches ledger state for entities drifting into new
// narrative roles and surfaces them to the DM as deduplicated notifications.
package emergence

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/tablemind/internal/platform/errors"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/relationship"
)

// Type is one narrative role an entity may be drifting into.
type Type string

const (
	// TypeVillain means inbound fear and resentment support an antagonist turn.
	TypeVillain Type = "villain"
	// TypeAlly means inbound trust and affection support a companion turn.
	TypeAlly Type = "ally"
)

// IsValid reports whether the type is a known emergence role.
func (t Type) IsValid() bool {
	return t == TypeVillain || t == TypeAlly
}

// ContributingFactor explains one dimension that crossed its configured
// threshold.
type ContributingFactor struct {
	Dimension relationship.Dimension `json:"dimension"`
	Value     float64                `json:"value"`
	Threshold float64                `json:"threshold"`
}

// Opportunity is one transient detection result. It only becomes durable
// when surfaced as a notification.
type Opportunity struct {
	Type                Type
	GameID              string
	Entity              event.Ref
	Confidence          float64
	Reason              string
	TriggeringEventID   string
	ContributingFactors []ContributingFactor
}

// Validate checks an opportunity before it is surfaced.
func (o Opportunity) Validate() error {
	if !o.Type.IsValid() {
		return apperrors.WithMetadata(
			apperrors.CodeEmergenceTypeInvalid,
			"unknown emergence type",
			map[string]string{"type": string(o.Type)},
		)
	}
	if strings.TrimSpace(o.GameID) == "" || o.Entity.IsZero() {
		return apperrors.New(apperrors.CodeEmergenceEntityEmpty, "opportunity requires a game id and an entity")
	}
	if o.Confidence < 0 || o.Confidence > 1 {
		return apperrors.New(apperrors.CodeEmergenceConfidenceInvalid, "confidence must be within [0,1]")
	}
	return nil
}

// NotificationStatus is one notification lifecycle state.
type NotificationStatus string

const (
	// NotificationPending means the DM has not acted on it yet.
	NotificationPending NotificationStatus = "pending"
	// NotificationAcknowledged means the DM accepted the observation.
	NotificationAcknowledged NotificationStatus = "acknowledged"
	// NotificationDismissed means the DM rejected the observation.
	NotificationDismissed NotificationStatus = "dismissed"
)

// Notification is one DM-facing emergence alert. At most one pending
// notification exists per (game, entity, type).
type Notification struct {
	ID          string
	GameID      string
	Opportunity Opportunity
	Status      NotificationStatus
	DMNotes     string
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}
