package render

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.MustParse("pt-BR")

	message.SetString(lang, "narrative.generic.title", "Atualização narrativa")
	message.SetString(lang, "narrative.generic.body", "O motor narrativo tem uma nova observação para você.")
	message.SetString(lang, "narrative.emergence.villain.title", "Possível vilão: %s")
	message.SetString(lang, "narrative.emergence.villain.body", "%s pode estar se voltando contra o grupo (confiança %d%%).")
	message.SetString(lang, "narrative.emergence.ally.title", "Possível aliado: %s")
	message.SetString(lang, "narrative.emergence.ally.body", "%s pode estar pronto para se juntar ao grupo (confiança %d%%).")
	message.SetString(lang, "narrative.proposal.title", "Proposta de evolução para %s")
	message.SetString(lang, "narrative.proposal.trait_add.body", "%s ganharia o traço %s.")
	message.SetString(lang, "narrative.proposal.trait_remove.body", "%s perderia o traço %s.")
	message.SetString(lang, "narrative.proposal.relationship_change.body", "%s: %s em relação a %s passaria a ser %.2f.")
}
