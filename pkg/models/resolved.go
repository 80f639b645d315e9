package models

// Character type values. Every resolved config carries a weight for each.
const (
	CharacterTypeHuman  = "human"
	CharacterTypeAnimal = "animal"
	CharacterTypeObject = "object"
	CharacterTypeHybrid = "hybrid"
)

// CharacterTypes lists all selectable character types in canonical order.
var CharacterTypes = []string{
	CharacterTypeHuman,
	CharacterTypeAnimal,
	CharacterTypeObject,
	CharacterTypeHybrid,
}

// ResolvedConfig is the ephemeral output of merging base rules and theme
// overrides: two independently normalized weight distributions, the
// deduplicated tag set, and an optional theme snippet. Each distribution
// sums to 1 unless every weight collapsed to zero, in which case it is left
// all-zero.
type ResolvedConfig struct {
	StyleWeights     map[string]float64 `json:"style_weights"`
	CharacterWeights map[string]float64 `json:"character_weights"`
	Tags             []string           `json:"tags"`
	ThemeSnippet     string             `json:"theme_snippet,omitempty"`
}

// ResolvedChoices is one concrete draw from a ResolvedConfig: the sampled
// character type and style, plus the tags and snippet carried through to the
// generators.
type ResolvedChoices struct {
	CharacterType string   `json:"character_type"`
	StyleKey      string   `json:"style_key"`
	StyleLabel    string   `json:"style_label"`
	Tags          []string `json:"tags"`
	ThemeSnippet  string   `json:"theme_snippet,omitempty"`
}
