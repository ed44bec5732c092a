// Package render produces localized, DM-facing copy for narrative engine
// artifacts: emergence notifications and evolution proposals.
package render

import (
	"math"
	"strings"

	"golang.org/x/text/message"

	"github.com/louisbranch/tablemind/internal/services/narrative/domain/emergence"
	"github.com/louisbranch/tablemind/internal/services/narrative/domain/evolution"
)

const (
	defaultGenericTitle = "Narrative update"
	defaultGenericBody  = "The narrative engine has a new observation for you."
)

// Output is localized copy derived from one narrative artifact.
type Output struct {
	Title string
	Body  string
}

// Localizer is the minimal message-printer contract required by the renderer.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// RenderNotification returns localized copy for one emergence notification.
func RenderNotification(loc Localizer, n emergence.Notification) Output {
	var titleKey, bodyKey string
	switch n.Opportunity.Type {
	case emergence.TypeVillain:
		titleKey = "narrative.emergence.villain.title"
		bodyKey = "narrative.emergence.villain.body"
	case emergence.TypeAlly:
		titleKey = "narrative.emergence.ally.title"
		bodyKey = "narrative.emergence.ally.body"
	default:
		return genericOutput(loc)
	}

	title := localize(loc, titleKey, n.Opportunity.Entity.ID)
	body := localize(loc, bodyKey, n.Opportunity.Entity.ID, confidencePercent(n.Opportunity.Confidence))
	if title == titleKey || body == bodyKey {
		return genericOutput(loc)
	}
	if reason := strings.TrimSpace(n.Opportunity.Reason); reason != "" {
		body += " " + reason + "."
	}
	return Output{Title: title, Body: body}
}

// RenderProposal returns localized copy for one evolution proposal.
func RenderProposal(loc Localizer, p evolution.Proposal) Output {
	var (
		titleKey = "narrative.proposal.title"
		bodyKey  string
		args     []any
	)
	switch p.Type {
	case evolution.TypeTraitAdd:
		bodyKey = "narrative.proposal.trait_add.body"
		args = []any{p.Entity.ID, string(p.Trait)}
	case evolution.TypeTraitRemove:
		bodyKey = "narrative.proposal.trait_remove.body"
		args = []any{p.Entity.ID, string(p.Trait)}
	case evolution.TypeRelationshipChange:
		bodyKey = "narrative.proposal.relationship_change.body"
		args = []any{p.Entity.ID, string(p.Dimension), p.Target.ID, p.NewValue}
	default:
		return genericOutput(loc)
	}

	title := localize(loc, titleKey, p.Entity.ID)
	body := localize(loc, bodyKey, args...)
	if title == titleKey || body == bodyKey {
		return genericOutput(loc)
	}
	if reason := strings.TrimSpace(p.Reason); reason != "" {
		body += " " + reason + "."
	}
	return Output{Title: title, Body: body}
}

func genericOutput(loc Localizer) Output {
	return Output{
		Title: localizeWithFallback(loc, "narrative.generic.title", defaultGenericTitle),
		Body:  localizeWithFallback(loc, "narrative.generic.body", defaultGenericBody),
	}
}

func confidencePercent(confidence float64) int {
	return int(math.Round(confidence * 100))
}

func localize(loc Localizer, key message.Reference, args ...any) string {
	if loc == nil {
		if asString, ok := key.(string); ok {
			return asString
		}
		return ""
	}
	return loc.Sprintf(key, args...)
}

func localizeWithFallback(loc Localizer, key string, fallback string) string {
	value := strings.TrimSpace(localize(loc, key))
	if value == "" || value == key {
		return fallback
	}
	return value
}
