package repositories

import (
	"context"
	"fmt"

	"github.com/horoscape/horoscape-engine/pkg/database"
	"github.com/horoscape/horoscape-engine/pkg/models"
)

// StyleRepository provides read access to the style catalog.
type StyleRepository interface {
	GetActive(ctx context.Context) ([]*models.Style, error)
}

type styleRepository struct {
	db *database.DB
}

// NewStyleRepository creates a new StyleRepository.
func NewStyleRepository(db *database.DB) StyleRepository {
	return &styleRepository{db: db}
}

var _ StyleRepository = (*styleRepository)(nil)

func (r *styleRepository) GetActive(ctx context.Context) ([]*models.Style, error) {
	query := `
		SELECT id, key, label, family, active
		FROM styles
		WHERE active
		ORDER BY key`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get styles: %w", err)
	}
	defer rows.Close()

	var styles []*models.Style
	for rows.Next() {
		var s models.Style
		if err := rows.Scan(&s.ID, &s.Key, &s.Label, &s.Family, &s.Active); err != nil {
			return nil, fmt.Errorf("failed to scan style: %w", err)
		}
		styles = append(styles, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read styles: %w", err)
	}

	return styles, nil
}
