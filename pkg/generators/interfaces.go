package generators

import (
	"context"

	"github.com/horoscape/horoscape-engine/pkg/models"
)

// TextResult is the transformed narrative produced by the text generator.
type TextResult struct {
	Narrative     string   `json:"narrative"`
	DoList        []string `json:"do_list"`
	DontList      []string `json:"dont_list"`
	CharacterName string   `json:"character_name"`
}

// ImageResult is the output of one image generation call.
type ImageResult struct {
	URL       string `json:"url"`
	Prompt    string `json:"prompt"`    // the prompt actually sent
	Rationale string `json:"rationale"` // free-text explanation of the choices
}

// TextGenerator transforms a base astrological narrative plus persona facts
// into a personalized daily reading. Calls are synchronous, billed, and not
// retried by callers.
type TextGenerator interface {
	GenerateNarrative(ctx context.Context, profile *models.UserProfile, cfg *models.ResolvedConfig) (*TextResult, error)
}

// ImageGenerator renders the day's companion character from the resolved
// choices and profile facts. Same fallibility contract as TextGenerator.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, profile *models.UserProfile, choices *models.ResolvedChoices) (*ImageResult, error)
}
