package generators

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/horoscape/horoscape-engine/pkg/logging"
	"github.com/horoscape/horoscape-engine/pkg/models"
)

// ImageConfig holds configuration for the OpenAI-backed image generator.
type ImageConfig struct {
	APIKey string
	Model  string
	Size   string
}

// OpenAIImageGenerator renders daily companion characters via the OpenAI
// Images API.
type OpenAIImageGenerator struct {
	client *openai.Client
	model  string
	size   string
	logger *zap.Logger
}

// NewOpenAIImageGenerator creates an image generator from config.
func NewOpenAIImageGenerator(cfg *ImageConfig, logger *zap.Logger) (*OpenAIImageGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	size := cfg.Size
	if size == "" {
		size = openai.CreateImageSize1024x1024
	}
	return &OpenAIImageGenerator{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
		size:   size,
		logger: logger.Named("image-generator"),
	}, nil
}

var _ ImageGenerator = (*OpenAIImageGenerator)(nil)

// GenerateImage calls the Images API exactly once. The returned Prompt is
// the prompt actually sent, and Rationale explains the sampled choices so
// the surrounding app can surface why today's character looks the way it
// does.
func (g *OpenAIImageGenerator) GenerateImage(ctx context.Context, profile *models.UserProfile, choices *models.ResolvedChoices) (*ImageResult, error) {
	prompt := buildImagePrompt(profile, choices)

	g.logger.Debug("image generation request",
		zap.String("model", g.model),
		zap.String("style", choices.StyleKey),
		zap.String("character_type", choices.CharacterType),
		zap.String("prompt", logging.TruncateString(prompt, logging.MaxPromptLogLength)))

	start := time.Now()

	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Model:          g.model,
		Prompt:         prompt,
		Size:           g.size,
		N:              1,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		g.logger.Error("image generation failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, Classify(err)
	}

	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return nil, newError(CategoryUnknown, "empty image response", 0, nil)
	}

	g.logger.Info("image generation completed",
		zap.String("style", choices.StyleKey),
		zap.Duration("elapsed", time.Since(start)))

	return &ImageResult{
		URL:       resp.Data[0].URL,
		Prompt:    prompt,
		Rationale: buildRationale(profile, choices),
	}, nil
}

func buildImagePrompt(profile *models.UserProfile, choices *models.ResolvedChoices) string {
	var b strings.Builder

	fmt.Fprintf(&b, "A %s companion character for a %s person, rendered as %s.",
		choices.CharacterType, profile.StarSign, strings.ToLower(choices.StyleLabel))
	if len(choices.Tags) > 0 {
		fmt.Fprintf(&b, " Mood: %s.", strings.Join(choices.Tags, ", "))
	}
	fmt.Fprintf(&b, " Friendly, single subject, plain background, no text.")

	return b.String()
}

func buildRationale(profile *models.UserProfile, choices *models.ResolvedChoices) string {
	rationale := fmt.Sprintf("Drew a %s character in the %q style from the weighted config for %s (%s, %s) on %s.",
		choices.CharacterType, choices.StyleLabel,
		profile.StarSign, profile.Element, profile.Modality, profile.Weekday)
	if choices.ThemeSnippet != "" {
		rationale += " An active theme contributed today."
	}
	return rationale
}
