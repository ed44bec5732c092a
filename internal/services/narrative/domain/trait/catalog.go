package trait

// Category groups catalog traits by what they describe.
type Category string

const (
	CategoryMoral      Category = "moral"
	CategoryEmotional  Category = "emotional"
	CategoryCapability Category = "capability"
	CategoryReputation Category = "reputation"
)

// CatalogEntry is static reference data for one trait.
type CatalogEntry struct {
	Trait       Name
	Category    Category
	Description string
	// Opposites lists traits that contradict this one. An active opposite
	// is surfaced to the DM as proposal context, never a hard failure.
	Opposites []Name
}

// Catalog trait names.
const (
	Merciful      Name = "merciful"
	Ruthless      Name = "ruthless"
	Honest        Name = "honest"
	Deceitful     Name = "deceitful"
	Brave         Name = "brave"
	Cowardly      Name = "cowardly"
	Compassionate Name = "compassionate"
	Cruel         Name = "cruel"
	Curious       Name = "curious"
	Aggressive    Name = "aggressive"
	Diplomatic    Name = "diplomatic"
	Manipulative  Name = "manipulative"
	Loyal         Name = "loyal"
	Treacherous   Name = "treacherous"
	Feared        Name = "feared"
	Beloved       Name = "beloved"
)

var catalog = map[Name]CatalogEntry{
	Merciful: {
		Trait:       Merciful,
		Category:    CategoryMoral,
		Description: "Spares defeated foes and shows restraint.",
		Opposites:   []Name{Ruthless, Cruel},
	},
	Ruthless: {
		Trait:       Ruthless,
		Category:    CategoryMoral,
		Description: "Shows no restraint when violence serves a goal.",
		Opposites:   []Name{Merciful, Compassionate},
	},
	Honest: {
		Trait:       Honest,
		Category:    CategoryMoral,
		Description: "Tells the truth even at personal cost.",
		Opposites:   []Name{Deceitful, Treacherous},
	},
	Deceitful: {
		Trait:       Deceitful,
		Category:    CategoryMoral,
		Description: "Lies and misleads as a matter of habit.",
		Opposites:   []Name{Honest},
	},
	Brave: {
		Trait:       Brave,
		Category:    CategoryEmotional,
		Description: "Faces danger without hesitation.",
		Opposites:   []Name{Cowardly},
	},
	Cowardly: {
		Trait:       Cowardly,
		Category:    CategoryEmotional,
		Description: "Retreats or hides when threatened.",
		Opposites:   []Name{Brave},
	},
	Compassionate: {
		Trait:       Compassionate,
		Category:    CategoryEmotional,
		Description: "Moved by the suffering of others.",
		Opposites:   []Name{Cruel, Ruthless},
	},
	Cruel: {
		Trait:       Cruel,
		Category:    CategoryEmotional,
		Description: "Takes satisfaction in causing pain.",
		Opposites:   []Name{Compassionate, Merciful},
	},
	Curious: {
		Trait:       Curious,
		Category:    CategoryEmotional,
		Description: "Drawn to the unknown and unexplored.",
	},
	Aggressive: {
		Trait:       Aggressive,
		Category:    CategoryEmotional,
		Description: "Initiates conflict rather than waiting for it.",
		Opposites:   []Name{Diplomatic},
	},
	Diplomatic: {
		Trait:       Diplomatic,
		Category:    CategoryCapability,
		Description: "Resolves disputes through negotiation.",
		Opposites:   []Name{Aggressive},
	},
	Manipulative: {
		Trait:       Manipulative,
		Category:    CategoryCapability,
		Description: "Bends others to a goal through pressure and guile.",
	},
	Loyal: {
		Trait:       Loyal,
		Category:    CategoryReputation,
		Description: "Known to keep faith with allies.",
		Opposites:   []Name{Treacherous},
	},
	Treacherous: {
		Trait:       Treacherous,
		Category:    CategoryReputation,
		Description: "Known to betray those who trust them.",
		Opposites:   []Name{Loyal, Honest},
	},
	Feared: {
		Trait:       Feared,
		Category:    CategoryReputation,
		Description: "Spoken of with dread.",
		Opposites:   []Name{Beloved},
	},
	Beloved: {
		Trait:       Beloved,
		Category:    CategoryReputation,
		Description: "Spoken of with warmth.",
		Opposites:   []Name{Feared},
	},
}

// Lookup returns the catalog entry for a trait name.
// The second return is false for traits outside the catalog.
func Lookup(name Name) (CatalogEntry, bool) {
	entry, ok := catalog[name]
	return entry, ok
}

// Opposites returns the traits that contradict the given one, or nil when
// the trait is unknown or has no configured opposites.
func Opposites(name Name) []Name {
	entry, ok := catalog[name]
	if !ok {
		return nil
	}
	return entry.Opposites
}
