package services

import (
	"sort"

	"github.com/horoscape/horoscape-engine/pkg/models"
)

// ResolveConfig merges base rules and theme overrides into the normalized
// distributions one day's generation draws from. It is pure: no clock, no
// randomness, no I/O. Callers pass rules in descending priority order and
// themes in descending priority order (id as tiebreak), which is how the
// repositories return them.
//
// Merge order: every active style and character type starts at weight 1.0,
// base rules multiply in by priority, theme overrides multiply in last
// against the single map their target names, mood tags accumulate, and each
// distribution is normalized independently. A distribution whose total
// collapsed to zero is left all-zero rather than divided by zero; the
// sampler's fallback handles that case.
func ResolveConfig(
	styles []*models.Style,
	rules []*models.Rule,
	themes []*models.Theme,
	overrides []*models.ThemeRule,
) *models.ResolvedConfig {
	styleWeights := make(map[string]float64, len(styles))
	for _, s := range styles {
		if s.Active {
			styleWeights[s.Key] = 1.0
		}
	}

	charWeights := make(map[string]float64, len(models.CharacterTypes))
	for _, ct := range models.CharacterTypes {
		charWeights[ct] = 1.0
	}

	var tags []string

	for _, rule := range rules {
		for key, mult := range rule.StyleWeights {
			// Unknown style keys are ignored, not errors: rules routinely
			// outlive catalog entries.
			if _, ok := styleWeights[key]; ok {
				styleWeights[key] *= mult
			}
		}
		for key, mult := range rule.CharacterWeights {
			if _, ok := charWeights[key]; ok {
				charWeights[key] *= mult
			}
		}
		tags = append(tags, rule.Tags...)
	}

	for _, ov := range overrides {
		switch ov.Target {
		case models.OverrideTargetStyle:
			for key, mult := range ov.Boosts {
				if _, ok := styleWeights[key]; ok {
					styleWeights[key] *= mult
				}
			}
		case models.OverrideTargetCharacter:
			for key, mult := range ov.Boosts {
				if _, ok := charWeights[key]; ok {
					charWeights[key] *= mult
				}
			}
		}
	}

	snippet := ""
	for _, th := range themes {
		tags = append(tags, th.MoodTags...)
		if snippet == "" && th.Snippet != "" {
			// Themes arrive highest-priority first, so the first non-empty
			// snippet is the winning one.
			snippet = th.Snippet
		}
	}

	normalize(styleWeights)
	normalize(charWeights)

	return &models.ResolvedConfig{
		StyleWeights:     styleWeights,
		CharacterWeights: charWeights,
		Tags:             dedupeTags(tags),
		ThemeSnippet:     snippet,
	}
}

// normalize scales weights in place so they sum to 1. A zero-total map is
// left untouched.
func normalize(weights map[string]float64) {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return
	}
	for k, w := range weights {
		weights[k] = w / total
	}
}

// dedupeTags applies set semantics; the sorted output is an implementation
// convenience, not a contract.
func dedupeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t != "" {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
