// Package patterns infers player behavioral tendencies from the event log.
//
// Analysis is pure read + compute: insufficient data yields neutral values
// ("minimal", ratio zero), never an error, so every function stays total
// over valid inputs. Store errors propagate unchanged.
package patterns

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/tablemind/internal/services/narrative/domain/event"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/trait"
	"github.com/louisbranch/tablemind/internal/services/narrative/storage"
)

const (
	// attackFirstShareThreshold is the initiation share above which a
	// player with enough violence events counts as initiating violence.
	attackFirstShareThreshold = 0.4
	// socialBucketShareThreshold is the share one interaction bucket must
	// exceed before it names the player's social approach.
	socialBucketShareThreshold = 0.4
	// explorationShareThreshold is the exploration share above which the
	// player reads as curious.
	explorationShareThreshold = 0.3
)

// Approach classifies a player's social interaction style.
type Approach string

const (
	ApproachHelpful      Approach = "helpful"
	ApproachDiplomatic   Approach = "diplomatic"
	ApproachManipulative Approach = "manipulative"
	ApproachHostile      Approach = "hostile"
	ApproachBalanced     Approach = "balanced"
	// ApproachMinimal means too few social events to classify.
	ApproachMinimal Approach = "minimal"
)

// Ratios holds the opposing-pair behavioral ratios, each in [-1,1].
// A pair with fewer combined events than the configured minimum reports a
// neutral zero.
type Ratios struct {
	MercyVsViolence float64
	HonestyVsDeceit float64
}

// ViolenceInitiation describes how often the player starts fights.
type ViolenceInitiation struct {
	TotalViolenceEvents int
	// InitiationRatio is the share of violence events that are attack_first.
	InitiationRatio float64
	// InitiatesViolence is true only with enough violence events and an
	// initiation share above the threshold.
	InitiatesViolence bool
}

// PlayerPatterns is one player's computed behavioral profile.
type PlayerPatterns struct {
	GameID             string
	PlayerID           string
	TotalEvents        int
	CategoryCounts     map[event.Category]int
	Ratios             Ratios
	ViolenceInitiation ViolenceInitiation
	SocialApproach     Approach
	// DominantTraits lists catalog traits suggested by independent
	// threshold rules. Rules are all evaluated; the list is order-stable
	// and not mutually exclusive.
	DominantTraits []trait.Name
}

// TurnRange bounds analysis to an inclusive turn window.
type TurnRange struct {
	From int
	To   int
}

// Options tunes one analysis call.
type Options struct {
	// TurnRange limits which turns are analyzed when non-nil.
	TurnRange *TurnRange
	// Limit caps pulled events; zero uses the configured default.
	Limit int
}

// Observer computes behavioral patterns from the canonical event log.
type Observer struct {
	events storage.EventStore
	cfg    Config
	tracer trace.Tracer
}

// NewObserver constructs a pattern observer over an injected event log.
func NewObserver(events storage.EventStore, cfg Config) *Observer {
	return &Observer{
		events: events,
		cfg:    cfg,
		tracer: otel.Tracer("tablemind/narrative/patterns"),
	}
}

// Config returns the observer's current configuration.
func (o *Observer) Config() Config {
	return o.cfg
}

// GetPlayerPatterns analyzes a player's accumulated events and returns their
// behavioral profile.
func (o *Observer) GetPlayerPatterns(ctx context.Context, gameID, playerID string, opts Options) (PlayerPatterns, error) {
	ctx, span := o.tracer.Start(ctx, "patterns.GetPlayerPatterns", trace.WithAttributes(
		attribute.String("game.id", gameID),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	limit := opts.Limit
	if limit <= 0 {
		limit = o.cfg.DefaultLimit
	}
	query := storage.EventQuery{Limit: limit}
	if opts.TurnRange != nil {
		from, to := opts.TurnRange.From, opts.TurnRange.To
		query.MinTurn = &from
		query.MaxTurn = &to
	}

	actor := event.Ref{Type: event.EntityTypePlayer, ID: playerID}
	events, err := o.events.ListEventsByActor(ctx, gameID, actor, query)
	if err != nil {
		return PlayerPatterns{}, err
	}
	span.SetAttributes(attribute.Int("events.count", len(events)))

	counts := make(map[event.Category]int, len(event.Categories()))
	var honestCount, deceitCount, attackFirstCount int
	bucketCounts := make(map[event.SocialBucket]int)
	for _, evt := range events {
		category, ok := event.CategoryOf(evt.Action)
		if !ok {
			continue
		}
		counts[category]++
		switch category {
		case event.CategoryHonesty:
			if event.IsDeceptive(evt.Action) {
				deceitCount++
			} else {
				honestCount++
			}
		case event.CategoryViolence:
			if evt.Action == event.ActionAttackFirst {
				attackFirstCount++
			}
		case event.CategorySocial:
			if bucket, ok := event.SocialBucketOf(evt.Action); ok {
				bucketCounts[bucket]++
			}
		}
	}

	minRatio := o.cfg.MinCategoryEventsForRatio
	ratios := Ratios{
		MercyVsViolence: opposingRatio(counts[event.CategoryMercy], counts[event.CategoryViolence], minRatio),
		HonestyVsDeceit: opposingRatio(honestCount, deceitCount, minRatio),
	}

	initiation := violenceInitiation(counts[event.CategoryViolence], attackFirstCount, minRatio)
	approach := socialApproach(counts[event.CategorySocial], bucketCounts, o.cfg.MinEventsForAnalysis)

	result := PlayerPatterns{
		GameID:             gameID,
		PlayerID:           playerID,
		TotalEvents:        len(events),
		CategoryCounts:     counts,
		Ratios:             ratios,
		ViolenceInitiation: initiation,
		SocialApproach:     approach,
	}
	result.DominantTraits = dominantTraits(result)
	return result, nil
}

// opposingRatio computes (countA-countB)/(countA+countB), or a neutral zero
// when the pair lacks signal.
func opposingRatio(countA, countB, minEvents int) float64 {
	total := countA + countB
	if total < minEvents {
		return 0
	}
	return float64(countA-countB) / float64(total)
}

func violenceInitiation(totalViolence, attackFirst, minEvents int) ViolenceInitiation {
	initiation := ViolenceInitiation{TotalViolenceEvents: totalViolence}
	if totalViolence > 0 {
		initiation.InitiationRatio = float64(attackFirst) / float64(totalViolence)
	}
	initiation.InitiatesViolence = totalViolence >= minEvents &&
		initiation.InitiationRatio > attackFirstShareThreshold
	return initiation
}

func socialApproach(totalSocial int, buckets map[event.SocialBucket]int, minEvents int) Approach {
	if totalSocial < minEvents {
		return ApproachMinimal
	}
	ordered := []struct {
		bucket   event.SocialBucket
		approach Approach
	}{
		{event.SocialBucketHelpful, ApproachHelpful},
		{event.SocialBucketDiplomatic, ApproachDiplomatic},
		{event.SocialBucketManipulative, ApproachManipulative},
		{event.SocialBucketHostile, ApproachHostile},
	}
	for _, candidate := range ordered {
		share := float64(buckets[candidate.bucket]) / float64(totalSocial)
		if share > socialBucketShareThreshold {
			return candidate.approach
		}
	}
	return ApproachBalanced
}

// dominantTraits evaluates every threshold rule independently. Rules are not
// mutually exclusive; output order follows the rule table.
func dominantTraits(p PlayerPatterns) []trait.Name {
	var traits []trait.Name
	if p.Ratios.MercyVsViolence > 0.5 {
		traits = append(traits, trait.Merciful)
	}
	if p.Ratios.MercyVsViolence < -0.5 {
		traits = append(traits, trait.Ruthless)
	}
	if p.ViolenceInitiation.InitiatesViolence {
		traits = append(traits, trait.Aggressive)
	}
	if p.Ratios.HonestyVsDeceit > 0.5 {
		traits = append(traits, trait.Honest)
	}
	if p.Ratios.HonestyVsDeceit < -0.5 {
		traits = append(traits, trait.Deceitful)
	}
	if p.TotalEvents > 0 {
		explorationShare := float64(p.CategoryCounts[event.CategoryExploration]) / float64(p.TotalEvents)
		if explorationShare > explorationShareThreshold {
			traits = append(traits, trait.Curious)
		}
	}
	switch p.SocialApproach {
	case ApproachHelpful:
		traits = append(traits, trait.Compassionate)
	case ApproachDiplomatic:
		traits = append(traits, trait.Diplomatic)
	case ApproachManipulative:
		traits = append(traits, trait.Manipulative)
	}
	return traits
}
