package emergence

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/relationship"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/trait"
)

// RelationshipReader is the slice of the relationship ledger detection reads.
type RelationshipReader interface {
	ListForEntity(ctx context.Context, gameID string, entity event.Ref) ([]relationship.Relationship, error)
}

// TraitReader is the slice of the trait ledger detection reads.
type TraitReader interface {
	FindByEntity(ctx context.Context, gameID string, entity event.Ref) ([]trait.EntityTrait, error)
}

// Detector scans ledger state around a triggering event for entities
// plausibly shifting into a villain or ally role.
type Detector struct {
	relationships RelationshipReader
	traits        TraitReader
	cfg           Config
	tracer        trace.Tracer
}

// NewDetector constructs an emergence detector over injected ledger readers.
func NewDetector(relationships RelationshipReader, traits TraitReader, cfg Config) *Detector {
	return &Detector{
		relationships: relationships,
		traits:        traits,
		cfg:           cfg,
		tracer:        otel.Tracer("tablemind/narrative/emergence"),
	}
}

// Config returns the detector's current configuration.
func (d *Detector) Config() Config {
	return d.cfg
}

// Detect evaluates the NPCs involved in a triggering event against the
// configured role thresholds. It returns zero or more transient
// opportunities; surfacing them is the notification service's job.
func (d *Detector) Detect(ctx context.Context, gameID string, trigger event.Event) ([]Opportunity, error) {
	ctx, span := d.tracer.Start(ctx, "emergence.Detect", trace.WithAttributes(
		attribute.String("game.id", gameID),
		attribute.String("trigger.event_id", trigger.ID),
	))
	defer span.End()

	var opportunities []Opportunity
	for _, entity := range involvedNPCs(trigger) {
		detected, err := d.detectForEntity(ctx, gameID, entity, trigger.ID)
		if err != nil {
			return nil, err
		}
		opportunities = append(opportunities, detected...)
	}
	span.SetAttributes(attribute.Int("opportunities.count", len(opportunities)))
	return opportunities, nil
}

// involvedNPCs returns the distinct NPC endpoints of an event. Role shifts
// apply to NPCs; player characters evolve through the proposal workflow.
func involvedNPCs(trigger event.Event) []event.Ref {
	var refs []event.Ref
	for _, ref := range []event.Ref{trigger.Actor, trigger.Target} {
		if ref.IsZero() || ref.Type != event.EntityTypeNPC {
			continue
		}
		duplicate := false
		for _, seen := range refs {
			if seen == ref {
				duplicate = true
			}
		}
		if !duplicate {
			refs = append(refs, ref)
		}
	}
	return refs
}

func (d *Detector) detectForEntity(ctx context.Context, gameID string, entity event.Ref, triggerEventID string) ([]Opportunity, error) {
	rows, err := d.relationships.ListForEntity(ctx, gameID, entity)
	if err != nil {
		return nil, err
	}
	inbound := inboundPeaks(rows, entity)
	if len(inbound) == 0 {
		return nil, nil
	}

	activeTraits, err := d.traits.FindByEntity(ctx, gameID, entity)
	if err != nil {
		return nil, err
	}

	var opportunities []Opportunity
	if opp, ok := buildOpportunity(TypeVillain, gameID, entity, triggerEventID, inbound, []ruleThreshold{
		{relationship.DimensionFear, d.cfg.VillainFearThreshold},
		{relationship.DimensionResentment, d.cfg.VillainResentmentThreshold},
	}, activeTraits, trait.Feared); ok {
		opportunities = append(opportunities, opp)
	}
	if opp, ok := buildOpportunity(TypeAlly, gameID, entity, triggerEventID, inbound, []ruleThreshold{
		{relationship.DimensionTrust, d.cfg.AllyTrustThreshold},
		{relationship.DimensionAffection, d.cfg.AllyAffectionThreshold},
	}, activeTraits, trait.Beloved); ok {
		opportunities = append(opportunities, opp)
	}
	return opportunities, nil
}

type ruleThreshold struct {
	dimension relationship.Dimension
	threshold float64
}

// inboundPeaks collapses every relationship pointing at the entity into the
// strongest observed value per dimension.
func inboundPeaks(rows []relationship.Relationship, entity event.Ref) map[relationship.Dimension]float64 {
	peaks := make(map[relationship.Dimension]float64)
	for _, row := range rows {
		if row.Key.To != entity {
			continue
		}
		for _, dimension := range relationship.Dimensions() {
			value := row.Vector.Value(dimension)
			if value > peaks[dimension] {
				peaks[dimension] = value
			}
		}
	}
	return peaks
}

// buildOpportunity requires every rule dimension to cross its threshold.
// Confidence starts at 0.5 and scales with the mean headroom-normalized
// excess over the thresholds, so barely-crossing state reads as tentative
// and saturated state approaches 1.
func buildOpportunity(emergenceType Type, gameID string, entity event.Ref, triggerEventID string, inbound map[relationship.Dimension]float64, rules []ruleThreshold, activeTraits []trait.EntityTrait, corroborating trait.Name) (Opportunity, bool) {
	factors := make([]ContributingFactor, 0, len(rules))
	excessSum := 0.0
	for _, rule := range rules {
		value := inbound[rule.dimension]
		if value < rule.threshold {
			return Opportunity{}, false
		}
		factors = append(factors, ContributingFactor{
			Dimension: rule.dimension,
			Value:     value,
			Threshold: rule.threshold,
		})
		excessSum += (value - rule.threshold) / (1 - rule.threshold)
	}

	confidence := 0.5 + 0.5*excessSum/float64(len(rules))
	if confidence > 1 {
		confidence = 1
	}

	reason := fmt.Sprintf("%s toward %s crossed the %s thresholds", factorSummary(factors), entity.ID, emergenceType)
	for _, row := range activeTraits {
		if row.Trait == corroborating {
			reason += fmt.Sprintf("; the %s trait is already active", corroborating)
			break
		}
	}

	return Opportunity{
		Type:                emergenceType,
		GameID:              gameID,
		Entity:              entity,
		Confidence:          confidence,
		Reason:              reason,
		TriggeringEventID:   triggerEventID,
		ContributingFactors: factors,
	}, true
}

func factorSummary(factors []ContributingFactor) string {
	summary := ""
	for i, factor := range factors {
		if i > 0 {
			summary += " and "
		}
		summary += fmt.Sprintf("%s %.2f", factor.Dimension, factor.Value)
	}
	return summary
}
