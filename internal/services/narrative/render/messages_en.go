package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	message.SetString(lang, "narrative.generic.title", defaultGenericTitle)
	message.SetString(lang, "narrative.generic.body", defaultGenericBody)
	message.SetString(lang, "narrative.emergence.villain.title", "Potential villain: %s")
	message.SetString(lang, "narrative.emergence.villain.body", "%s may be turning against the party (confidence %d%%).")
	message.SetString(lang, "narrative.emergence.ally.title", "Potential ally: %s")
	message.SetString(lang, "narrative.emergence.ally.body", "%s may be ready to join the party's side (confidence %d%%).")
	message.SetString(lang, "narrative.proposal.title", "Evolution proposal for %s")
	message.SetString(lang, "narrative.proposal.trait_add.body", "%s would gain the %s trait.")
	message.SetString(lang, "narrative.proposal.trait_remove.body", "%s would lose the %s trait.")
	message.SetString(lang, "narrative.proposal.relationship_change.body", "%s's %s toward %s would become %.2f.")
}
