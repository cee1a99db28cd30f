package achievements

// ID identifies a catalogued achievement.
type ID string

const (
	FirstTest     ID = "first_test"
	Excellent     ID = "excellent"
	Perfectionist ID = "perfectionist"
	Persistent    ID = "persistent"
	Speedster     ID = "speedster"
)

// AllIDs returns every achievement in display order.
func AllIDs() []ID {
	return []ID{FirstTest, Excellent, Perfectionist, Persistent, Speedster}
}

// Rarity is how hard an achievement is to earn.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// DisplayName returns a human-readable label for the rarity.
func (r Rarity) DisplayName() string {
	switch r {
	case RarityCommon:
		return "Common"
	case RarityRare:
		return "Rare"
	case RarityEpic:
		return "Epic"
	case RarityLegendary:
		return "Legendary"
	default:
		return string(r)
	}
}

// Achievement is a static catalog entry.
type Achievement struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rarity      Rarity `json:"rarity"`
}

var catalog = []Achievement{
	{FirstTest, "First Step", "Complete your first test", RarityCommon},
	{Excellent, "Excellent", "Score 90% or higher", RarityRare},
	{Perfectionist, "Perfectionist", "Score 100%", RarityEpic},
	{Persistent, "Persistent", "Complete 5 tests", RarityRare},
	{Speedster, "Speedster", "Finish a test in record time", RarityLegendary},
}

// Catalog returns every achievement in display order.
func Catalog() []Achievement {
	out := make([]Achievement, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for id.
func Lookup(id ID) (Achievement, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// DisplayName returns the catalog name, or the raw ID when unknown.
func (id ID) DisplayName() string {
	if a, ok := Lookup(id); ok {
		return a.Name
	}
	return string(id)
}

// Icon returns the display icon for the achievement.
func (id ID) Icon() string {
	switch id {
	case FirstTest:
		return "🎯"
	case Excellent:
		return "🌟"
	case Perfectionist:
		return "💎"
	case Persistent:
		return "🔥"
	case Speedster:
		return "⚡"
	default:
		return "✦"
	}
}
