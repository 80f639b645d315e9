package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/horoscape/horoscape-engine/pkg/apperrors"
	"github.com/horoscape/horoscape-engine/pkg/astro"
	"github.com/horoscape/horoscape-engine/pkg/generators"
	"github.com/horoscape/horoscape-engine/pkg/models"
	"github.com/horoscape/horoscape-engine/pkg/repositories"
)

// TextPayload is the text operation's response body.
type TextPayload struct {
	StarSign      string   `json:"star_sign"`
	Narrative     string   `json:"narrative"`
	DoList        []string `json:"do_list"`
	DontList      []string `json:"dont_list"`
	CharacterName string   `json:"character_name"`
	ImageURL      string   `json:"image_url,omitempty"`
	Cached        bool     `json:"cached"`
}

// ImagePayload is the image operation's response body.
type ImagePayload struct {
	ImageURL      string `json:"image_url"`
	ImagePrompt   string `json:"image_prompt"`
	CharacterType string `json:"character_type"`
	StyleKey      string `json:"style_key"`
	StyleLabel    string `json:"style_label"`
	Rationale     string `json:"rationale"`
	Cached        bool   `json:"cached"`
}

// ContentService coordinates daily content generation. Its one promise: the
// external generator runs at most once per user per calendar day per content
// kind, no matter how many duplicate or concurrent requests arrive. The
// guarantee rests on the UNIQUE (user_id, content_date) constraint plus the
// merge-preserving upserts; the re-read before persisting only trims the
// cost of the race, it is not the safety mechanism.
type ContentService interface {
	// GenerateDailyText returns today's narrative for the user, generating
	// it on first call and serving the cached record afterwards.
	GenerateDailyText(ctx context.Context, userID uuid.UUID) (*TextPayload, error)

	// GenerateDailyImage returns today's companion image for the user, with
	// the same cache contract.
	GenerateDailyImage(ctx context.Context, userID uuid.UUID) (*ImagePayload, error)

	// GetDaily returns today's record without triggering any generation.
	GetDaily(ctx context.Context, userID uuid.UUID) (*models.DailyContent, error)
}

type contentService struct {
	users   repositories.UserRepository
	daily   repositories.DailyContentRepository
	styles  repositories.StyleRepository
	config  DailyConfigService
	sampler *Sampler
	textGen generators.TextGenerator
	imgGen  generators.ImageGenerator
	now     func() time.Time
	logger  *zap.Logger
}

// NewContentService creates a new ContentService.
func NewContentService(
	users repositories.UserRepository,
	daily repositories.DailyContentRepository,
	styles repositories.StyleRepository,
	config DailyConfigService,
	sampler *Sampler,
	textGen generators.TextGenerator,
	imgGen generators.ImageGenerator,
	logger *zap.Logger,
) ContentService {
	return &contentService{
		users:   users,
		daily:   daily,
		styles:  styles,
		config:  config,
		sampler: sampler,
		textGen: textGen,
		imgGen:  imgGen,
		now:     time.Now,
		logger:  logger.Named("content-service"),
	}
}

var _ ContentService = (*contentService)(nil)

func (s *contentService) GetDaily(ctx context.Context, userID uuid.UUID) (*models.DailyContent, error) {
	return s.daily.GetByUserAndDate(ctx, userID, dateOf(s.now()))
}

func (s *contentService) GenerateDailyText(ctx context.Context, userID uuid.UUID) (*TextPayload, error) {
	today := dateOf(s.now())

	// Cache check: the terminal path for nearly every request after the
	// day's first.
	rec, err := s.getRecord(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if rec.HasText() {
		return textPayload(rec, true), nil
	}

	profile, cfg, err := s.resolveDay(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Exactly one external call per request; failures are classified by the
	// generator and surfaced without retry.
	result, err := s.textGen.GenerateNarrative(ctx, profile, cfg)
	if err != nil {
		return nil, fmt.Errorf("text generation: %w", err)
	}

	// Double-check: a concurrent request may have completed while we were
	// generating. If so, our candidate is discarded - its external cost is
	// already sunk, but its content must not displace the stored result.
	if current, err := s.getRecord(ctx, userID, today); err != nil {
		return nil, err
	} else if current.HasText() {
		s.logger.Info("discarding duplicate text generation",
			zap.String("user_id", userID.String()))
		return textPayload(current, true), nil
	}

	candidate := &models.DailyContent{
		UserID:        userID,
		ContentDate:   today,
		StarSign:      profile.StarSign,
		Narrative:     result.Narrative,
		DoList:        result.DoList,
		DontList:      result.DontList,
		CharacterName: result.CharacterName,
	}
	if err := s.daily.UpsertText(ctx, candidate); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistenceFailure, err)
	}

	// Fail closed: never report success for content that is not durably
	// stored, or the next request would silently regenerate it.
	stored, err := s.daily.GetByUserAndDate(ctx, userID, today)
	if err != nil || !stored.HasText() {
		s.logger.Error("text persistence verification failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: verification read failed", apperrors.ErrPersistenceFailure)
	}

	s.logger.Info("daily text generated",
		zap.String("user_id", userID.String()),
		zap.String("sign", profile.StarSign))

	// The stored row wins even over our own candidate: a concurrent writer
	// that beat our upsert is the canonical result.
	return textPayload(stored, false), nil
}

func (s *contentService) GenerateDailyImage(ctx context.Context, userID uuid.UUID) (*ImagePayload, error) {
	today := dateOf(s.now())

	rec, err := s.getRecord(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	if rec.HasImage() {
		return imagePayload(rec, true), nil
	}

	profile, cfg, err := s.resolveDay(ctx, userID)
	if err != nil {
		return nil, err
	}

	choices, err := s.sampleChoices(ctx, cfg)
	if err != nil {
		return nil, err
	}

	result, err := s.imgGen.GenerateImage(ctx, profile, choices)
	if err != nil {
		return nil, fmt.Errorf("image generation: %w", err)
	}

	if current, err := s.getRecord(ctx, userID, today); err != nil {
		return nil, err
	} else if current.HasImage() {
		s.logger.Info("discarding duplicate image generation",
			zap.String("user_id", userID.String()))
		return imagePayload(current, true), nil
	}

	candidate := &models.DailyContent{
		UserID:        userID,
		ContentDate:   today,
		StarSign:      profile.StarSign,
		ImageURL:      result.URL,
		ImagePrompt:   result.Prompt,
		CharacterType: choices.CharacterType,
		StyleKey:      choices.StyleKey,
		StyleLabel:    choices.StyleLabel,
		Rationale:     result.Rationale,
	}
	if err := s.daily.UpsertImage(ctx, candidate); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistenceFailure, err)
	}

	stored, err := s.daily.GetByUserAndDate(ctx, userID, today)
	if err != nil || !stored.HasImage() {
		s.logger.Error("image persistence verification failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: verification read failed", apperrors.ErrPersistenceFailure)
	}

	s.logger.Info("daily image generated",
		zap.String("user_id", userID.String()),
		zap.String("style", stored.StyleKey))

	return imagePayload(stored, false), nil
}

// getRecord reads the day's record, mapping absence to a nil record and
// storage faults to PersistenceFailure.
func (s *contentService) getRecord(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailyContent, error) {
	rec, err := s.daily.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPersistenceFailure, err)
	}
	return rec, nil
}

// resolveDay loads the user, derives the daily profile and resolves the
// weighted config. Every failure here is pre-generation and therefore cheap.
func (s *contentService) resolveDay(ctx context.Context, userID uuid.UUID) (*models.UserProfile, *models.ResolvedConfig, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.ErrProfileIncomplete
		}
		return nil, nil, fmt.Errorf("load user: %w", err)
	}

	profile, err := astro.ResolveProfile(user, s.now())
	if err != nil {
		return nil, nil, err
	}

	cfg, err := s.config.ResolveForProfile(ctx, profile)
	if err != nil {
		return nil, nil, err
	}

	return profile, cfg, nil
}

// sampleChoices draws the character type and style for today's image.
func (s *contentService) sampleChoices(ctx context.Context, cfg *models.ResolvedConfig) (*models.ResolvedChoices, error) {
	characterType, err := s.sampler.Pick(cfg.CharacterWeights)
	if err != nil {
		return nil, apperrors.ErrConfigurationMissing
	}
	styleKey, err := s.sampler.Pick(cfg.StyleWeights)
	if err != nil {
		return nil, apperrors.ErrConfigurationMissing
	}

	styleLabel := styleKey
	styles, err := s.styles.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch styles: %w", err)
	}
	for _, st := range styles {
		if st.Key == styleKey {
			styleLabel = st.Label
			break
		}
	}

	return &models.ResolvedChoices{
		CharacterType: characterType,
		StyleKey:      styleKey,
		StyleLabel:    styleLabel,
		Tags:          cfg.Tags,
		ThemeSnippet:  cfg.ThemeSnippet,
	}, nil
}

func textPayload(rec *models.DailyContent, cached bool) *TextPayload {
	return &TextPayload{
		StarSign:      rec.StarSign,
		Narrative:     rec.Narrative,
		DoList:        rec.DoList,
		DontList:      rec.DontList,
		CharacterName: rec.CharacterName,
		ImageURL:      rec.ImageURL,
		Cached:        cached,
	}
}

func imagePayload(rec *models.DailyContent, cached bool) *ImagePayload {
	return &ImagePayload{
		ImageURL:      rec.ImageURL,
		ImagePrompt:   rec.ImagePrompt,
		CharacterType: rec.CharacterType,
		StyleKey:      rec.StyleKey,
		StyleLabel:    rec.StyleLabel,
		Rationale:     rec.Rationale,
		Cached:        cached,
	}
}

// dateOf truncates a timestamp to the server-local calendar date, the same
// truncation the profile resolver applies.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
