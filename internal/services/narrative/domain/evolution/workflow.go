package evolution

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/louisbranch/tablemind/internal/platform/errors"
	"github.com/louisbranch/tablemind/internal/platform/id"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/relationship"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/trait"
)

// Store is the persistence boundary for proposals.
type Store interface {
	InsertProposal(ctx context.Context, p Proposal) error
	GetProposal(ctx context.Context, gameID, proposalID string) (Proposal, error)
	// UpdatePendingProposal persists edited content only while the row is
	// still pending. Implementations return storage.ErrNotFound otherwise.
	UpdatePendingProposal(ctx context.Context, p Proposal) error
	// MarkProposalResolved atomically transitions a pending row to the
	// given terminal status, persisting notes and the resolution time, and
	// returns the resolved row. Implementations return storage.ErrNotFound
	// when no row for the id is still pending; under concurrent resolution
	// exactly one caller observes the transition.
	MarkProposalResolved(ctx context.Context, gameID, proposalID string, status Status, dmNotes string, resolvedAt time.Time) (Proposal, error)
	ListPendingProposals(ctx context.Context, gameID string, pageSize int, pageToken string) (ProposalPage, error)
	// DeleteProposalsByGame purges every proposal for a game and returns
	// how many rows were removed.
	DeleteProposalsByGame(ctx context.Context, gameID string) (int, error)
}

// ProposalPage is one page of a pending proposal listing.
type ProposalPage struct {
	Proposals     []Proposal
	NextPageToken string
}

// TraitLedger is the slice of the trait ledger approvals dispatch to.
type TraitLedger interface {
	AddTrait(ctx context.Context, input trait.AddInput) (trait.EntityTrait, error)
	RemoveTrait(ctx context.Context, gameID string, entity event.Ref, name trait.Name) error
	// ActiveOpposites returns the entity's active traits that the catalog
	// marks as contradicting the given one.
	ActiveOpposites(ctx context.Context, gameID string, entity event.Ref, name trait.Name) ([]trait.Name, error)
}

// RelationshipLedger is the slice of the relationship ledger approvals
// dispatch to.
type RelationshipLedger interface {
	SetDimension(ctx context.Context, key relationship.Key, dimension relationship.Dimension, value float64) (relationship.Relationship, error)
}

/// Workflow owns the proposal lifecycle: propose, edit while pending, and
// resolve exactly once.
type Workflow struct {
	store         Store
	traits        TraitLedger
	relationships RelationshipLedger
	clock         func() time.Time
	newID         func() (string, error)
	tracer        trace.Tracer
}

// NewWorkflow constructs an evolution workflow over injected collaborators.
func NewWorkflow(store Store, traits TraitLedger, relationships RelationshipLedger, clock func() time.Time) *Workflow {
	if clock == nil {
		clock = time.Now
	}
	return &Workflow{
		store:         store,
		traits:        traits,
		relationships: relationships,
		clock:         clock,
		newID:         id.NewID,
		tracer:        otel.Tracer("tablemind/narrative/evolution"),
	}
}

// ProposalInput describes one new proposal.
type ProposalInput struct {
	GameID        string
	Type          Type
	Entity        event.Ref
	Trait         trait.Name
	Target        event.Ref
	Dimension     relationship.Dimension
	OldValue      float64
	NewValue      float64
	Reason        string
	SourceEventID string
	Turn          int
}

// Propose validates and persists a new pending proposal.
func (w *Workflow) Propose(ctx context.Context, input ProposalInput) (Proposal, error) {
	ctx, span := w.tracer.Start(ctx, "evolution.Propose", trace.WithAttributes(
		attribute.String("game.id", input.GameID),
		attribute.String("evolution.type", string(input.Type)),
	))
	defer span.End()

	proposalID, err := w.newID()
	if err != nil {
		return Proposal{}, err
	}
	now := w.clock().UTC()
	proposal := Proposal{
		ID:            proposalID,
		GameID:        input.GameID,
		Type:          input.Type,
		Entity:        input.Entity,
		Trait:         input.Trait,
		Target:        input.Target,
		Dimension:     input.Dimension,
		OldValue:      input.OldValue,
		NewValue:      input.NewValue,
		Reason:        strings.TrimSpace(input.Reason),
		SourceEventID: strings.TrimSpace(input.SourceEventID),
		Turn:          input.Turn,
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := proposal.Validate(); err != nil {
		return Proposal{}, err
	}
	if err := w.store.InsertProposal(ctx, proposal); err != nil {
		return Proposal{}, err
	}
	return proposal, nil
}

// EditInput holds the content fields a DM may adjust before deciding. Nil
// fields are left unchanged; status never changes through an edit.
type EditInput struct {
	Trait     *trait.Name
	Target    *event.Ref
	Dimension *relationship.Dimension
	NewValue  *float64
	Reason    *string
}

// Edit mutates a still-pending proposal's content. A proposal that is
// missing or already resolved yields storage.ErrNotFound from the
// conditional update.
func (w *Workflow) Edit(ctx context.Context, gameID, proposalID string, input EditInput) (Proposal, error) {
	proposal, err := w.store.GetProposal(ctx, gameID, proposalID)
	if err != nil {
		return Proposal{}, err
	}
	if input.Trait != nil {
		proposal.Trait = *input.Trait
	}
	if input.Target != nil {
		proposal.Target = *input.Target
	}
	if input.Dimension != nil {
		proposal.Dimension = *input.Dimension
	}
	if input.NewValue != nil {
		proposal.NewValue = *input.NewValue
	}
	if input.Reason != nil {
		proposal.Reason = strings.TrimSpace(*input.Reason)
	}
	if err := proposal.Validate(); err != nil {
		return Proposal{}, err
	}
	proposal.UpdatedAt = w.clock().UTC()
	if err := w.store.UpdatePendingProposal(ctx, proposal); err != nil {
		return Proposal{}, err
	}
	return proposal, nil
}

// Resolve transitions a pending proposal to approved or refused, and on
// approval dispatches the ledger mutation. The store transition is
// conditional on the row still being pending, so concurrent or repeated
// resolutions of the same id mutate the ledger at most once: all but the
// first caller receive storage.ErrNotFound.
func (w *Workflow) Resolve(ctx context.Context, gameID, proposalID string, status Status, dmNotes string) (Proposal, error) {
	ctx, span := w.tracer.Start(ctx, "evolution.Resolve", trace.WithAttributes(
		attribute.String("game.id", gameID),
		attribute.String("proposal.id", proposalID),
		attribute.String("resolution", string(status)),
	))
	defer span.End()

	if status != StatusApproved && status != StatusRefused {
		return Proposal{}, apperrors.WithMetadata(
			apperrors.CodeEvolutionStatusInvalid,
			"resolution must be approved or refused",
			map[string]string{"status": string(status)},
		)
	}

	resolvedAt := w.clock().UTC()
	proposal, err := w.store.MarkProposalResolved(ctx, gameID, proposalID, status, strings.TrimSpace(dmNotes), resolvedAt)
	if err != nil {
		return Proposal{}, err
	}
	if status == StatusRefused {
		return proposal, nil
	}

	switch proposal.Type {
	case TypeTraitAdd:
		_, err = w.traits.AddTrait(ctx, trait.AddInput{
			GameID:        proposal.GameID,
			Entity:        proposal.Entity,
			Trait:         proposal.Trait,
			AcquiredTurn:  proposal.Turn,
			SourceEventID: proposal.SourceEventID,
		})
	case TypeTraitRemove:
		err = w.traits.RemoveTrait(ctx, proposal.GameID, proposal.Entity, proposal.Trait)
	case TypeRelationshipChange:
		key := relationship.Key{GameID: proposal.GameID, From: proposal.Entity, To: proposal.Target}
		_, err = w.relationships.SetDimension(ctx, key, proposal.Dimension, proposal.NewValue)
	}
	if err != nil {
		return Proposal{}, err
	}
	return proposal, nil
}

// Get returns one proposal.
func (w *Workflow) Get(ctx context.Context, gameID, proposalID string) (Proposal, error) {
	return w.store.GetProposal(ctx, gameID, proposalID)
}

// OppositeTraitContext returns the entity's active traits that contradict a
// trait_add proposal. The DM sees these as context alongside the proposal;
// a contradiction never blocks proposing or approving.
func (w *Workflow) OppositeTraitContext(ctx context.Context, gameID, proposalID string) ([]trait.Name, error) {
	proposal, err := w.store.GetProposal(ctx, gameID, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.Type != TypeTraitAdd {
		return nil, nil
	}
	return w.traits.ActiveOpposites(ctx, proposal.GameID, proposal.Entity, proposal.Trait)
}

// ListPending returns a page of the game's pending proposals.
func (w *Workflow) ListPending(ctx context.Context, gameID string, pageSize int, pageToken string) (ProposalPage, error) {
	return w.store.ListPendingProposals(ctx, gameID, pageSize, pageToken)
}

// DeleteByGame purges every proposal for a game, regardless of status.
func (w *Workflow) DeleteByGame(ctx context.Context, gameID string) (int, error) {
	return w.store.DeleteProposalsByGame(ctx, gameID)
}
