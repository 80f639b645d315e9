package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/horoscape/horoscape-engine/pkg/apperrors"
	"github.com/horoscape/horoscape-engine/pkg/database"
	"github.com/horoscape/horoscape-engine/pkg/models"
)

// DailyContentRepository provides data access for the per-user-per-day
// content cache. The UNIQUE (user_id, content_date) constraint is the safety
// mechanism that collapses concurrent first-time writers to one row; both
// upserts are written so that a field group, once populated, is never
// overwritten or nulled by a later write. Rows are never deleted here.
type DailyContentRepository interface {
	GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailyContent, error)

	// UpsertText writes the text-owned fields (narrative, do/don't lists,
	// character name, star sign), leaving image fields untouched on conflict.
	// If a concurrent writer already populated the narrative, the existing
	// text wins and this write's text is dropped.
	UpsertText(ctx context.Context, rec *models.DailyContent) error

	// UpsertImage writes the image-owned fields, leaving text fields
	// untouched on conflict, with the same first-writer-wins guard on
	// image_url.
	UpsertImage(ctx context.Context, rec *models.DailyContent) error
}

type dailyContentRepository struct {
	db *database.DB
}

// NewDailyContentRepository creates a new DailyContentRepository.
func NewDailyContentRepository(db *database.DB) DailyContentRepository {
	return &dailyContentRepository{db: db}
}

var _ DailyContentRepository = (*dailyContentRepository)(nil)

func (r *dailyContentRepository) GetByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*models.DailyContent, error) {
	query := `
		SELECT id, user_id, content_date, star_sign, narrative, do_list, dont_list,
		       character_name, image_url, image_prompt, character_type, style_key,
		       style_label, rationale, generated_at
		FROM daily_content
		WHERE user_id = $1 AND content_date = $2`

	var rec models.DailyContent
	err := r.db.QueryRow(ctx, query, userID, date).Scan(
		&rec.ID,
		&rec.UserID,
		&rec.ContentDate,
		&rec.StarSign,
		&rec.Narrative,
		&rec.DoList,
		&rec.DontList,
		&rec.CharacterName,
		&rec.ImageURL,
		&rec.ImagePrompt,
		&rec.CharacterType,
		&rec.StyleKey,
		&rec.StyleLabel,
		&rec.Rationale,
		&rec.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get daily content: %w", err)
	}

	return &rec, nil
}

func (r *dailyContentRepository) UpsertText(ctx context.Context, rec *models.DailyContent) error {
	// The text field group is guarded as a unit on narrative: the lists and
	// character name always stay consistent with the narrative they were
	// generated with.
	query := `
		INSERT INTO daily_content (
			user_id, content_date, star_sign, narrative, do_list, dont_list,
			character_name, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, content_date) DO UPDATE SET
			star_sign      = COALESCE(NULLIF(daily_content.star_sign, ''), EXCLUDED.star_sign),
			narrative      = CASE WHEN daily_content.narrative = '' THEN EXCLUDED.narrative ELSE daily_content.narrative END,
			do_list        = CASE WHEN daily_content.narrative = '' THEN EXCLUDED.do_list ELSE daily_content.do_list END,
			dont_list      = CASE WHEN daily_content.narrative = '' THEN EXCLUDED.dont_list ELSE daily_content.dont_list END,
			character_name = CASE WHEN daily_content.narrative = '' THEN EXCLUDED.character_name ELSE daily_content.character_name END
		RETURNING id, generated_at`

	err := r.db.QueryRow(ctx, query,
		rec.UserID,
		rec.ContentDate,
		rec.StarSign,
		rec.Narrative,
		rec.DoList,
		rec.DontList,
		rec.CharacterName,
		time.Now(),
	).Scan(&rec.ID, &rec.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert daily text: %w", err)
	}

	return nil
}

func (r *dailyContentRepository) UpsertImage(ctx context.Context, rec *models.DailyContent) error {
	query := `
		INSERT INTO daily_content (
			user_id, content_date, star_sign, image_url, image_prompt,
			character_type, style_key, style_label, rationale, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, content_date) DO UPDATE SET
			star_sign      = COALESCE(NULLIF(daily_content.star_sign, ''), EXCLUDED.star_sign),
			image_url      = CASE WHEN daily_content.image_url = '' THEN EXCLUDED.image_url ELSE daily_content.image_url END,
			image_prompt   = CASE WHEN daily_content.image_url = '' THEN EXCLUDED.image_prompt ELSE daily_content.image_prompt END,
			character_type = CASE WHEN daily_content.image_url = '' THEN EXCLUDED.character_type ELSE daily_content.character_type END,
			style_key      = CASE WHEN daily_content.image_url = '' THEN EXCLUDED.style_key ELSE daily_content.style_key END,
			style_label    = CASE WHEN daily_content.image_url = '' THEN EXCLUDED.style_label ELSE daily_content.style_label END,
			rationale      = CASE WHEN daily_content.image_url = '' THEN EXCLUDED.rationale ELSE daily_content.rationale END
		RETURNING id, generated_at`

	err := r.db.QueryRow(ctx, query,
		rec.UserID,
		rec.ContentDate,
		rec.StarSign,
		rec.ImageURL,
		rec.ImagePrompt,
		rec.CharacterType,
		rec.StyleKey,
		rec.StyleLabel,
		rec.Rationale,
		time.Now(),
	).Scan(&rec.ID, &rec.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert daily image: %w", err)
	}

	return nil
}
