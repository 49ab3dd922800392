package registry

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/trafficreg/trafficreg/pkg/sqlbuild"
)

// VideoURLMaxLength bounds evidence video URLs.
const VideoURLMaxLength = 2048

// ViolationFilter enumerates the optional predicates of a violation list
// query. RelatedTo matches rows where the given user is either the creator
// or the vehicle owner.
type ViolationFilter struct {
	ID               *int64
	CreatorID        *int64
	Category         *int
	FineVND          *int64
	VideoURL         *string // LIKE pattern
	RefutationsCount *int64
	VehiclePlate     *string // LIKE pattern
	UserID           *int64  // vehicle owner
	MinID            *int64
	MaxID            *int64
	RelatedTo        *int64
}

// QueryViolations returns at most PageSize violations matching the filter,
// sorted by ID descending.
func (s *Store) QueryViolations(ctx context.Context, f ViolationFilter) ([]Violation, error) {
	stmt, params := sqlbuild.New("SELECT * FROM view_violations").
		Condition("violation_id = ?", f.ID).
		Condition("creator_id = ?", f.CreatorID).
		Condition("violation_category = ?", f.Category).
		Condition("violation_fine_vnd = ?", f.FineVND).
		Condition("violation_video_url LIKE ?", f.VideoURL).
		Condition("violation_refutations_count = ?", f.RefutationsCount).
		Condition("vehicle_plate LIKE ?", f.VehiclePlate).
		Condition("user_id = ?", f.UserID).
		Condition("violation_id >= ?", f.MinID).
		Condition("violation_id <= ?", f.MaxID).
		Condition("creator_id = ? OR user_id = ?", f.RelatedTo, f.RelatedTo).
		Suffix("ORDER BY violation_id DESC LIMIT ?", PageSize).
		Build()

	var rows []ViolationRow
	err := s.withRetry(ctx, func(tx *gorm.DB) error {
		return tx.Raw(stmt, params...).Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("query violations: %w", err)
	}

	violations := make([]Violation, len(rows))
	for i, r := range rows {
		violations[i] = r.toViolation()
	}
	return violations, nil
}

// CreateViolation logs a violation against a plate and returns the new ID.
// An unknown plate surfaces as ErrConflict from the foreign key, matching
// how the store reports it.
func (s *Store) CreateViolation(ctx context.Context, creatorID int64, category int, plate string, fineVND int64, videoURL string) (int64, error) {
	record := ViolationRecord{
		ID:           s.ids.NextID(),
		CreatorID:    creatorID,
		Category:     category,
		FineVND:      fineVND,
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
		return 0, fmt.Errorf("create violation: %w", err)
	}
	return record.ID, nil
}

// DeleteViolation removes a violation and everything referencing it
// (refutations, settlement). Returns ErrNotFound when the ID is unknown.
func (s *Store) DeleteViolation(ctx context.Context, id int64) error {
	return s.withRetry(ctx, func(tx *gorm.DB) error {
		return tx.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("violation_id = ?", id).Delete(&RefutationRecord{}).Error; err != nil {
				return fmt.Errorf("delete violation refutations: %w", err)
			}
			if err := tx.Where("violation_id = ?", id).Delete(&TransactionRecord{}).Error; err != nil {
				return fmt.Errorf("delete violation settlement: %w", err)
			}
			result := tx.Where("id = ?", id).Delete(&ViolationRecord{})
			if result.Error != nil {
				return fmt.Errorf("delete violation: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				return notFound("Violation with this ID does not exist.")
			}
			return nil
		})
	})
}
