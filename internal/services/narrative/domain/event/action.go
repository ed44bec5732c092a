package event

// Action is a resolved action verb from the fixed vocabulary.
type Action string

// Mercy actions.
const (
	ActionSpareEnemy Action = "spare_enemy"
	ActionForgive    Action = "forgive"
	ActionHealOther  Action = "heal_other"
	ActionProtect    Action = "protect"
	ActionShowMercy  Action = "show_mercy"
)

// Violence actions.
const (
	ActionAttackFirst Action = "attack_first"
	ActionAttack      Action = "attack"
	ActionKill        Action = "kill"
	ActionThreaten    Action = "threaten"
	ActionAmbush      Action = "ambush"
)

// Honesty actions. The category covers both truthful and deceptive verbs;
// the deceptive ones carry negative polarity for ratio purposes.
const (
	ActionTellTruth Action = "tell_truth"
	ActionConfess   Action = "confess"
	ActionKeepOath  Action = "keep_oath"
	ActionLie       Action = "lie"
	ActionDeceive   Action = "deceive"
	ActionBetray    Action = "betray"
)

// Social actions.
const (
	ActionHelpNPC    Action = "help_npc"
	ActionShareInfo  Action = "share_info"
	ActionPersuade   Action = "persuade"
	ActionNegotiate  Action = "negotiate"
	ActionManipulate Action = "manipulate"
	ActionBribe      Action = "bribe"
	ActionIntimidate Action = "intimidate"
	ActionInsult     Action = "insult"
)

// Exploration actions.
const (
	ActionEnterLocation Action = "enter_location"
	ActionExplore       Action = "explore"
	ActionSearch        Action = "search"
	ActionInvestigate   Action = "investigate"
)

// Character actions.
const (
	ActionRest       Action = "rest"
	ActionReflect    Action = "reflect"
	ActionTrainSkill Action = "train_skill"
)

// Category is one of the fixed behavioral buckets action verbs map into.
type Category string

const (
	CategoryMercy       Category = "mercy"
	CategoryViolence    Category = "violence"
	CategoryHonesty     Category = "honesty"
	CategorySocial      Category = "social"
	CategoryExploration Category = "exploration"
	CategoryCharacter   Category = "character"
)

// Categories lists every behavioral category in a stable order.
func Categories() []Category {
	return []Category{
		CategoryMercy,
		CategoryViolence,
		CategoryHonesty,
		CategorySocial,
		CategoryExploration,
		CategoryCharacter,
	}
}

// actionCategories is the static action->category map. Unmapped actions are
// ignored by behavioral analysis.
var actionCategories = map[Action]Category{
	ActionSpareEnemy: CategoryMercy,
	ActionForgive:    CategoryMercy,
	ActionHealOther:  CategoryMercy,
	ActionProtect:    CategoryMercy,
	ActionShowMercy:  CategoryMercy,

	ActionAttackFirst: CategoryViolence,
	ActionAttack:      CategoryViolence,
	ActionKill:        CategoryViolence,
	ActionThreaten:    CategoryViolence,
	ActionAmbush:      CategoryViolence,

	ActionTellTruth: CategoryHonesty,
	ActionConfess:   CategoryHonesty,
	ActionKeepOath:  CategoryHonesty,
	ActionLie:       CategoryHonesty,
	ActionDeceive:   CategoryHonesty,
	ActionBetray:    CategoryHonesty,

	ActionHelpNPC:    CategorySocial,
	ActionShareInfo:  CategorySocial,
	ActionPersuade:   CategorySocial,
	ActionNegotiate:  CategorySocial,
	ActionManipulate: CategorySocial,
	ActionBribe:      CategorySocial,
	ActionIntimidate: CategorySocial,
	ActionInsult:     CategorySocial,

	ActionEnterLocation: CategoryExploration,
	ActionExplore:       CategoryExploration,
	ActionSearch:        CategoryExploration,
	ActionInvestigate:   CategoryExploration,

	ActionRest:       CategoryCharacter,
	ActionReflect:    CategoryCharacter,
	ActionTrainSkill: CategoryCharacter,
}

// deceptiveActions carry negative polarity within the honesty category.
var deceptiveActions = map[Action]bool{
	ActionLie:     true,
	ActionDeceive: true,
	ActionBetray:  true,
}

// CategoryOf returns the behavioral category for an action verb.
// The second return is false for unmapped actions.
func CategoryOf(action Action) (Category, bool) {
	category, ok := actionCategories[action]
	return category, ok
}

// IsDeceptive reports whether an honesty-category action is a deceptive verb.
func IsDeceptive(action Action) bool {
	return deceptiveActions[action]
}

// ActionsInCategory returns every mapped action verb for a category.
func ActionsInCategory(category Category) []Action {
	var actions []Action
	for action, c := range actionCategories {
		if c == category {
			actions = append(actions, action)
		}
	}
	return actions
}

// SocialBucket is the interaction style a social action verb maps into.
type SocialBucket string

const (
	SocialBucketHelpful      SocialBucket = "helpful"
	SocialBucketDiplomatic   SocialBucket = "diplomatic"
	SocialBucketManipulative SocialBucket = "manipulative"
	SocialBucketHostile      SocialBucket = "hostile"
)

// socialBuckets is the static action->bucket table for social approach analysis.
var socialBuckets = map[Action]SocialBucket{
	ActionHelpNPC:    SocialBucketHelpful,
	ActionShareInfo:  SocialBucketHelpful,
	ActionPersuade:   SocialBucketDiplomatic,
	ActionNegotiate:  SocialBucketDiplomatic,
	ActionManipulate: SocialBucketManipulative,
	ActionBribe:      SocialBucketManipulative,
	ActionIntimidate: SocialBucketHostile,
	ActionInsult:     SocialBucketHostile,
}

// SocialBucketOf returns the interaction bucket for a social action verb.
func SocialBucketOf(action Action) (SocialBucket, bool) {
	bucket, ok := socialBuckets[action]
	return bucket, ok
}
