package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/horoscape/horoscape-engine/pkg/database"
	"github.com/horoscape/horoscape-engine/pkg/models"
)

// ThemeRepository provides read access to date-ranged theme overlays.
type ThemeRepository interface {
	// GetActiveOn returns all active themes whose date range contains the
	// given date (inclusive on both ends), highest priority first with id as
	// tiebreak. Overlapping themes are expected; all are returned.
	GetActiveOn(ctx context.Context, date time.Time) ([]*models.Theme, error)

	// GetThemeRules returns the overrides of the given themes scoped to the
	// given segments.
	GetThemeRules(ctx context.Context, themeIDs, segmentIDs []uuid.UUID) ([]*models.ThemeRule, error)
}

type themeRepository struct {
	db *database.DB
}

// NewThemeRepository creates a new ThemeRepository.
func NewThemeRepository(db *database.DB) ThemeRepository {
	return &themeRepository{db: db}
}

var _ ThemeRepository = (*themeRepository)(nil)

func (r *themeRepository) GetActiveOn(ctx context.Context, date time.Time) ([]*models.Theme, error) {
	query := `
		SELECT id, name, start_date, end_date, mood_tags, snippet, priority, active, created_at
		FROM themes
		WHERE active
		  AND start_date <= $1
		  AND end_date >= $1
		ORDER BY priority DESC, id`

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get active themes: %w", err)
	}
	defer rows.Close()

	var themes []*models.Theme
	for rows.Next() {
		var th models.Theme
		if err := rows.Scan(
			&th.ID,
			&th.Name,
			&th.StartDate,
			&th.EndDate,
			&th.MoodTags,
			&th.Snippet,
			&th.Priority,
			&th.Active,
			&th.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan theme: %w", err)
		}
		themes = append(themes, &th)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read themes: %w", err)
	}

	return themes, nil
}

func (r *themeRepository) GetThemeRules(ctx context.Context, themeIDs, segmentIDs []uuid.UUID) ([]*models.ThemeRule, error) {
	if len(themeIDs) == 0 || len(segmentIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, theme_id, segment_id, target, boosts
		FROM theme_rules
		WHERE theme_id = ANY($1)
		  AND segment_id = ANY($2)
		ORDER BY theme_id, id`

	rows, err := r.db.Query(ctx, query, themeIDs, segmentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get theme rules: %w", err)
	}
	defer rows.Close()

	var overrides []*models.ThemeRule
	for rows.Next() {
		var tr models.ThemeRule
		if err := rows.Scan(&tr.ID, &tr.ThemeID, &tr.SegmentID, &tr.Target, &tr.Boosts); err != nil {
			return nil, fmt.Errorf("failed to scan theme rule: %w", err)
		}
		overrides = append(overrides, &tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read theme rules: %w", err)
	}

	return overrides, nil
}
