package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/horoscape/horoscape-engine/pkg/apperrors"
	"github.com/horoscape/horoscape-engine/pkg/database"
	"github.com/horoscape/horoscape-engine/pkg/models"
)

// RuleRepository provides read access to rulesets and their weighted rules.
type RuleRepository interface {
	// GetActiveRuleset returns the single active ruleset, or
	// apperrors.ErrConfigurationMissing when none is active.
	GetActiveRuleset(ctx context.Context) (*models.Ruleset, error)

	// GetActiveRules returns the active rules of the given ruleset bound to
	// any of the given segments, ordered by descending priority. An empty
	// result is valid.
	GetActiveRules(ctx context.Context, rulesetID uuid.UUID, segmentIDs []uuid.UUID) ([]*models.Rule, error)
}

type ruleRepository struct {
	db *database.DB
}

// NewRuleRepository creates a new RuleRepository.
func NewRuleRepository(db *database.DB) RuleRepository {
	return &ruleRepository{db: db}
}

var _ RuleRepository = (*ruleRepository)(nil)

func (r *ruleRepository) GetActiveRuleset(ctx context.Context) (*models.Ruleset, error) {
	query := `
		SELECT id, name, active, created_at
		FROM rulesets
		WHERE active`

	var rs models.Ruleset
	err := r.db.QueryRow(ctx, query).Scan(&rs.ID, &rs.Name, &rs.Active, &rs.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConfigurationMissing
		}
		return nil, fmt.Errorf("failed to get active ruleset: %w", err)
	}

	return &rs, nil
}

func (r *ruleRepository) GetActiveRules(ctx context.Context, rulesetID uuid.UUID, segmentIDs []uuid.UUID) ([]*models.Rule, error) {
	if len(segmentIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT id, ruleset_id, segment_id, style_weights, character_weights, tags, priority, active, created_at
		FROM rules
		WHERE ruleset_id = $1
		  AND segment_id = ANY($2)
		  AND active
		ORDER BY priority DESC, id`

	rows, err := r.db.Query(ctx, query, rulesetID, segmentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get rules: %w", err)
	}
	defer rows.Close()

	var rules []*models.Rule
	for rows.Next() {
		var rule models.Rule
		if err := rows.Scan(
			&rule.ID,
			&rule.RulesetID,
			&rule.SegmentID,
			&rule.StyleWeights,
			&rule.CharacterWeights,
			&rule.Tags,
			&rule.Priority,
			&rule.Active,
			&rule.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, &rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	return rules, nil
}
