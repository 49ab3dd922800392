package registry

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/trafficreg/trafficreg/pkg/sqlbuild"
)

// DetectedFilter enumerates the optional predicates of a detected-candidate
// list query. There is no RelatedTo scoping: the whole surface is gated by
// the manage_detected capability instead.
type DetectedFilter struct {
	ID           *int64
	Category     *int
	VideoURL     *string // LIKE pattern
	VehiclePlate *string // LIKE pattern
	UserID       *int64  // vehicle owner
	MinID        *int64
	MaxID        *int64
}

// QueryDetected returns at most PageSize detected candidates matching the
// filter, sorted by ID descending.
func (s *Store) QueryDetected(ctx context.Context, f DetectedFilter) ([]Detected, error) {
	stmt, params := sqlbuild.New("SELECT * FROM view_detected").
		Condition("detected_id = ?", f.ID).
		Condition("detected_category = ?", f.Category).
		Condition("detected_video_url LIKE ?", f.VideoURL).
		Condition("vehicle_plate LIKE ?", f.VehiclePlate).
		Condition("user_id = ?", f.UserID).
		Condition("detected_id >= ?", f.MinID).
		Condition("detected_id <= ?", f.MaxID).
		Suffix("ORDER BY detected_id DESC LIMIT ?", PageSize).
		Build()

	var rows []detectedRow
	err := s.withRetry(ctx, func(tx *gorm.DB) error {
		return tx.Raw(stmt, params...).Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("query detected: %w", err)
	}

	detected := make([]Detected, len(rows))
	for i, r := range rows {
		detected[i] = r.toDetected()
	}
	return detected, nil
}

// CreateDetected records a camera-flagged candidate and returns the new ID.
// An unknown plate surfaces as ErrConflict from the foreign key.
func (s *Store) CreateDetected(ctx context.Context, category int, plate, videoURL string) (int64, error) {
	record := DetectedRecord{
		ID:           s.ids.NextID(),
		Category:     category,
		VideoURL:     videoURL,
		VehiclePlate: plate,
	}
	err := s.withRetry(ctx, func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, conflict("Vehicle with this plate does not exist.")
		}
		return 0, fmt.Errorf("create detected: %w", err)
	}
	return record.ID, nil
}

// DeleteDetected removes a candidate once triaged or dismissed. Returns
// ErrNotFound when the ID is unknown.
func (s *Store) DeleteDetected(ctx context.Context, id int64) error {
	return s.withRetry(ctx, func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&DetectedRecord{})
		if result.Error != nil {
			return fmt.Errorf("delete detected: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound("Detected violation with this ID does not exist.")
		}
		return nil
	})
}
