package repositories

import (
	"context"
	"fmt"

	"github.com/horoscape/horoscape-engine/pkg/database"
	"github.com/horoscape/horoscape-engine/pkg/models"
)

// SegmentRepository provides read access to the immutable segment catalog.
type SegmentRepository interface {
	// ResolveKeys returns the segment rows matching the given (type, value)
	// pairs. Pairs with no catalog entry are silently absent from the result.
	ResolveKeys(ctx context.Context, keys []models.SegmentKey) ([]*models.Segment, error)
}

type segmentRepository struct {
	db *database.DB
}

// NewSegmentRepository creates a new SegmentRepository.
func NewSegmentRepository(db *database.DB) SegmentRepository {
	return &segmentRepository{db: db}
}

var _ SegmentRepository = (*segmentRepository)(nil)

func (r *segmentRepository) ResolveKeys(ctx context.Context, keys []models.SegmentKey) ([]*models.Segment, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	types := make([]string, len(keys))
	values := make([]string, len(keys))
	for i, k := range keys {
		types[i] = k.Type
		values[i] = k.Value
	}

	// unnest pairs the two arrays positionally, matching each (type, value)
	// exactly rather than the cross product.
	query := `
		SELECT s.id, s.type, s.value
		FROM segments s
		JOIN unnest($1::text[], $2::text[]) AS k(type, value)
		  ON s.type = k.type AND s.value = k.value`

	rows, err := r.db.Query(ctx, query, types, values)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve segments: %w", err)
	}
	defer rows.Close()

	var segments []*models.Segment
	for rows.Next() {
		var s models.Segment
		if err := rows.Scan(&s.ID, &s.Type, &s.Value); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}
		segments = append(segments, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read segments: %w", err)
	}

	return segments, nil
}
