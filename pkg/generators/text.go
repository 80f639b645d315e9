package generators

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/horoscape/horoscape-engine/pkg/logging"
	"github.com/horoscape/horoscape-engine/pkg/models"
)

// TextConfig holds configuration for the Anthropic-backed text generator.
type TextConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// AnthropicTextGenerator produces daily narratives via the Anthropic
// Messages API.
type AnthropicTextGenerator struct {
	client    *anthropic.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// NewAnthropicTextGenerator creates a text generator from config.
func NewAnthropicTextGenerator(cfg *TextConfig, logger *zap.Logger) (*AnthropicTextGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1500
	}
	return &AnthropicTextGenerator{
		client:    anthropic.NewClient(cfg.APIKey),
		model:     cfg.Model,
		maxTokens: maxTokens,
		logger:    logger.Named("text-generator"),
	}, nil
}

var _ TextGenerator = (*AnthropicTextGenerator)(nil)

const textSystemPrompt = `You write short, warm, specific daily readings.
You receive a base astrological reading and facts about the person. Rewrite
the reading in their voice and circumstances, then derive practical guidance.
Respond with a single JSON object and nothing else:
{"narrative": "...", "do_list": ["..."], "dont_list": ["..."], "character_name": "..."}
do_list and dont_list carry 2-4 short entries each. character_name is a
friendly name for the day's companion character.`

// GenerateNarrative calls the Messages API exactly once and parses the JSON
// reply. Errors are classified, never retried.
func (g *AnthropicTextGenerator) GenerateNarrative(ctx context.Context, profile *models.UserProfile, cfg *models.ResolvedConfig) (*TextResult, error) {
	prompt := buildTextPrompt(profile, cfg)

	g.logger.Debug("text generation request",
		zap.String("model", g.model),
		zap.String("sign", profile.StarSign),
		zap.String("prompt", logging.TruncateString(prompt, logging.MaxPromptLogLength)))

	start := time.Now()

	resp, err := g.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		System:    textSystemPrompt,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(prompt),
		},
	})
	if err != nil {
		g.logger.Error("text generation failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.String("error", logging.SanitizeError(err)))
		return nil, Classify(err)
	}

	reply := resp.GetFirstContentText()

	result, err := parseTextResult(reply)
	if err != nil {
		return nil, newError(CategoryUnknown, "unparseable generator reply", 0, err)
	}

	g.logger.Info("text generation completed",
		zap.String("sign", profile.StarSign),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens))

	return result, nil
}

// buildTextPrompt assembles the base reading plus persona facts. The base
// narrative is deliberately plain; the model's job is the transformation.
func buildTextPrompt(profile *models.UserProfile, cfg *models.ResolvedConfig) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Base reading for %s (%s, %s) on this %s in %s:\n",
		profile.StarSign, profile.Element, profile.Modality, profile.Weekday, profile.Season)
	fmt.Fprintf(&b, "The %s energy of %s favors steady attention today. ", profile.Element, profile.StarSign)
	fmt.Fprintf(&b, "As a %s sign, small deliberate moves beat grand gestures.\n\n", profile.Modality)

	fmt.Fprintf(&b, "Persona facts:\n- role level: %s\n", profile.RoleLevel)
	if profile.Discipline != "" {
		fmt.Fprintf(&b, "- discipline: %s\n", profile.Discipline)
	}
	if profile.Location != "" {
		fmt.Fprintf(&b, "- location: %s\n", profile.Location)
	}
	if len(cfg.Tags) > 0 {
		fmt.Fprintf(&b, "- today's mood tags: %s\n", strings.Join(cfg.Tags, ", "))
	}
	if cfg.ThemeSnippet != "" {
		fmt.Fprintf(&b, "\nWeave in today's theme: %s\n", cfg.ThemeSnippet)
	}

	return b.String()
}

// parseTextResult extracts the JSON object from a model reply that may be
// wrapped in prose or a markdown fence.
func parseTextResult(reply string) (*TextResult, error) {
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}

	var result TextResult
	if err := json.Unmarshal([]byte(reply[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("failed to decode reply: %w", err)
	}
	if result.Narrative == "" {
		return nil, fmt.Errorf("reply is missing the narrative")
	}

	return &result, nil
}
