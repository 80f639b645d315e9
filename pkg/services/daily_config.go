package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/horoscape/horoscape-engine/pkg/apperrors"
	"github.com/horoscape/horoscape-engine/pkg/astro"
	"github.com/horoscape/horoscape-engine/pkg/models"
	"github.com/horoscape/horoscape-engine/pkg/repositories"
)

// DailyConfigService resolves a profile into the day's weighted generation
// config: segments -> active ruleset rules -> theme overlays -> merged
// distributions.
type DailyConfigService interface {
	ResolveForProfile(ctx context.Context, profile *models.UserProfile) (*models.ResolvedConfig, error)
}

type dailyConfigService struct {
	segments repositories.SegmentRepository
	rules    repositories.RuleRepository
	themes   repositories.ThemeRepository
	styles   repositories.StyleRepository
	logger   *zap.Logger
}

// NewDailyConfigService creates a new DailyConfigService.
func NewDailyConfigService(
	segments repositories.SegmentRepository,
	rules repositories.RuleRepository,
	themes repositories.ThemeRepository,
	styles repositories.StyleRepository,
	logger *zap.Logger,
) DailyConfigService {
	return &dailyConfigService{
		segments: segments,
		rules:    rules,
		themes:   themes,
		styles:   styles,
		logger:   logger.Named("daily-config"),
	}
}

var _ DailyConfigService = (*dailyConfigService)(nil)

func (s *dailyConfigService) ResolveForProfile(ctx context.Context, profile *models.UserProfile) (*models.ResolvedConfig, error) {
	styles, err := s.styles.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch styles: %w", err)
	}
	if len(styles) == 0 {
		return nil, apperrors.ErrConfigurationMissing
	}

	segments, err := s.segments.ResolveKeys(ctx, astro.SegmentKeys(profile))
	if err != nil {
		return nil, fmt.Errorf("resolve segments: %w", err)
	}
	if len(segments) == 0 {
		// The sign/weekday/season segments ship as seed data, so an empty
		// resolution means the catalog was never seeded.
		return nil, apperrors.ErrConfigurationMissing
	}

	segmentIDs := make([]uuid.UUID, len(segments))
	for i, seg := range segments {
		segmentIDs[i] = seg.ID
	}

	ruleset, err := s.rules.GetActiveRuleset(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch active ruleset: %w", err)
	}

	// An empty rule set is valid: the merge still yields a uniform
	// distribution over the catalog.
	rules, err := s.rules.GetActiveRules(ctx, ruleset.ID, segmentIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch rules: %w", err)
	}

	themes, err := s.themes.GetActiveOn(ctx, profile.Date)
	if err != nil {
		return nil, fmt.Errorf("fetch themes: %w", err)
	}

	var overrides []*models.ThemeRule
	if len(themes) > 0 {
		themeIDs := make([]uuid.UUID, len(themes))
		for i, th := range themes {
			themeIDs[i] = th.ID
		}
		overrides, err = s.themes.GetThemeRules(ctx, themeIDs, segmentIDs)
		if err != nil {
			return nil, fmt.Errorf("fetch theme rules: %w", err)
		}
	}

	cfg := ResolveConfig(styles, rules, themes, overrides)

	s.logger.Debug("resolved daily config",
		zap.String("sign", profile.StarSign),
		zap.Int("segments", len(segments)),
		zap.Int("rules", len(rules)),
		zap.Int("themes", len(themes)),
		zap.Int("overrides", len(overrides)),
		zap.Strings("tags", cfg.Tags))

	return cfg, nil
}
