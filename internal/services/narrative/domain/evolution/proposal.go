// Package evolution manages DM-gated character evolution proposals.
//
// A proposal is pending until the DM approves or refuses it. Approval is the
// only path through which analysis results mutate the trait or relationship
// ledgers, and the pending → resolved transition is conditional at the store
// layer so the ledger mutation applies at most once.
package evolution

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/tablemind/internal/platform/errors"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/relationship"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/trait"
)

// Status is one proposal lifecycle state.
type Status string

const (
	// StatusPending means the proposal awaits a DM decision.
	StatusPending Status = "pending"
	// StatusApproved means the DM accepted it and the ledger mutation ran.
	StatusApproved Status = "approved"
	// StatusRefused means the DM declined it; no ledger mutation.
	StatusRefused Status = "refused"
)

// Type selects which ledger an approved proposal mutates.
type Type string

const (
	TypeTraitAdd           Type = "trait_add"
	TypeTraitRemove        Type = "trait_remove"
	TypeRelationshipChange Type = "relationship_change"
)

// Proposal is one pending or resolved evolution suggestion.
type Proposal struct {
	ID     string
	GameID string
	Type   Type
	// Entity is the character the evolution applies to. For relationship
	// changes it is the "from" endpoint.
	Entity event.Ref

	// Trait is set for trait_add and trait_remove proposals.
	Trait trait.Name
	// Target, Dimension and NewValue are set for relationship_change
	// proposals: the dimension of Entity→Target is set to NewValue.
	// OldValue snapshots the dimension at proposal time; it is DM context
	// only and never feeds the approval mutation.
	Target    event.Ref
	Dimension relationship.Dimension
	OldValue  float64
	NewValue  float64

	// Reason is the analysis justification shown to the DM.
	Reason        string
	SourceEventID string
	Turn          int

	Status     Status
	DMNotes    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
}

// Validate checks the content fields required by the proposal's type.
func (p Proposal) Validate() error {
	if strings.TrimSpace(p.GameID) == "" || p.Entity.IsZero() {
		return apperrors.New(apperrors.CodeEvolutionTargetRequired, "proposal requires a game id and an entity")
	}
	if strings.TrimSpace(p.Reason) == "" {
		return apperrors.New(apperrors.CodeEvolutionReasonEmpty, "proposal reason is required")
	}
	switch p.Type {
	case TypeTraitAdd, TypeTraitRemove:
		if strings.TrimSpace(string(p.Trait)) == "" {
			return apperrors.New(apperrors.CodeEvolutionTraitRequired, "trait proposals require a trait name")
		}
	case TypeRelationshipChange:
		if p.Target.IsZero() {
			return apperrors.New(apperrors.CodeEvolutionTargetRequired, "relationship proposals require a target entity")
		}
		if !p.Dimension.IsValid() {
			return apperrors.WithMetadata(
				apperrors.CodeRelationshipDimensionUnknown,
				"unknown relationship dimension",
				map[string]string{"dimension": string(p.Dimension)},
			)
		}
		if p.NewValue < 0 || p.NewValue > 1 {
			return apperrors.New(apperrors.CodeEvolutionValueInvalid, "relationship value must be within [0,1]")
		}
	default:
		return apperrors.WithMetadata(
			apperrors.CodeEvolutionTypeInvalid,
			"unknown evolution type",
			map[string]string{"type": string(p.Type)},
		)
	}
	return nil
}
