package relationship

// Label is a human-readable relationship descriptor derived from a vector.
type Label string

const (
	LabelDevoted     Label = "devoted"
	LabelAlly        Label = "ally"
	LabelFriend      Label = "friend"
	LabelRival       Label = "rival"
	LabelEnemy       Label = "enemy"
	LabelTerrified   Label = "terrified"
	LabelResentful   Label = "resentful"
	LabelIndebted    Label = "indebted"
	LabelWary        Label = "wary"
	LabelIndifferent Label = "indifferent"
)

type labelRule struct {
	label   Label
	matches func(Vector) bool
}

// labelRules is evaluated in order; the first match wins. Precedence:
// devoted > ally > friend > rival > enemy > terrified > resentful >
// indebted > wary > indifferent.
var labelRules = []labelRule{
	{LabelDevoted, func(v Vector) bool {
		return v.Affection >= 0.8 && v.Trust >= 0.7
	}},
	{LabelAlly, func(v Vector) bool {
		return v.Trust >= 0.7 && v.Respect >= 0.6
	}},
	{LabelFriend, func(v Vector) bool {
		return v.Affection >= 0.6 && v.Trust >= 0.5
	}},
	{LabelRival, func(v Vector) bool {
		return v.Respect >= 0.6 && v.Resentment >= 0.5
	}},
	{LabelEnemy, func(v Vector) bool {
		return v.Resentment >= 0.7 && v.Affection < 0.3
	}},
	{LabelTerrified, func(v Vector) bool {
		return v.Fear >= 0.8
	}},
	{LabelResentful, func(v Vector) bool {
		return v.Resentment >= 0.6
	}},
	{LabelIndebted, func(v Vector) bool {
		return v.Debt >= 0.6
	}},
	{LabelWary, func(v Vector) bool {
		return v.Fear >= 0.4
	}},
}

// DeriveLabel evaluates the ordered rule table and returns the first match.
// Vectors matching no rule are indifferent.
func DeriveLabel(v Vector) Label {
	for _, rule := range labelRules {
		if rule.matches(v) {
			return rule.label
		}
	}
	return LabelIndifferent
}
