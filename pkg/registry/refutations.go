package registry

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/trafficreg/trafficreg/pkg/sqlbuild"
)

// MessageMaxLength bounds refutation messages and responses.
const MessageMaxLength = 4096

// RefutationFilter enumerates the optional predicates of a refutation list
// query. RelatedTo matches rows where the given user is the refutation
// author, the violation's creator, or the vehicle owner.
type RefutationFilter struct {
	ID           *int64
	Message      *string // LIKE pattern
	Response     *string // LIKE pattern
	AuthorID     *int64
	ViolationID  *int64
	VehiclePlate *string // LIKE pattern
	UserID       *int64  // vehicle owner
	MinID        *int64
	MaxID        *int64
	RelatedTo    *int64
}

// QueryRefutations returns at most PageSize refutations matching the
// filter, sorted by ID descending.
func (s *Store) QueryRefutations(ctx context.Context, f RefutationFilter) ([]Refutation, error) {
	stmt, params := sqlbuild.New("SELECT * FROM view_refutations").
		Condition("refutation_id = ?", f.ID).
		Condition("refutation_message LIKE ?", f.Message).
		Condition("refutation_response LIKE ?", f.Response).
		Condition("author_id = ?", f.AuthorID).
		Condition("violation_id = ?", f.ViolationID).
		Condition("vehicle_plate LIKE ?", f.VehiclePlate).
		Condition("user_id = ?", f.UserID).
		Condition("refutation_id >= ?", f.MinID).
		Condition("refutation_id <= ?", f.MaxID).
		Condition("author_id = ? OR creator_id = ? OR user_id = ?", f.RelatedTo, f.RelatedTo, f.RelatedTo).
		Suffix("ORDER BY refutation_id DESC LIMIT ?", PageSize).
		Build()

	var rows []refutationRow
	err := s.withRetry(ctx, func(tx *gorm.DB) error {
		return tx.Raw(stmt, params...).Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("query refutations: %w", err)
	}

	refutations := make([]Refutation, len(rows))
	for i, r := range rows {
		refutations[i] = r.toRefutation()
	}
	return refutations, nil
}

// CreateRefutation contests a violation and returns the new ID. An unknown
// violation surfaces as ErrConflict from the foreign key.
func (s *Store) CreateRefutation(ctx context.Context, violationID, authorID int64, message string) (int64, error) {
	record := RefutationRecord{
		ID:          s.ids.NextID(),
		Message:     message,
		AuthorID:    authorID,
		ViolationID: violationID,
	}
	err := s.withRetry(ctx, func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, conflict(fmt.Sprintf("Violation %d does not exist.", violationID))
		}
		return 0, fmt.Errorf("create refutation: %w", err)
	}
	return record.ID, nil
}

// RespondToRefutation sets the administrative response. The response
// transitions once from NULL and is immutable afterwards; an unknown or
// already-answered refutation yields ErrConflict, with the cause named.
func (s *Store) RespondToRefutation(ctx context.Context, refutationID int64, response string) error {
	return s.withRetry(ctx, func(tx *gorm.DB) error {
		result := tx.Model(&RefutationRecord{}).
			Where("id = ? AND response IS NULL", refutationID).
			Update("response", response)
		if result.Error != nil {
			return fmt.Errorf("respond to refutation: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&RefutationRecord{}).Where("id = ?", refutationID).Count(&n).Error; err != nil {
				return fmt.Errorf("respond to refutation: %w", err)
			}
			if n == 0 {
				return conflict("The provided refutation ID does not exist.")
			}
			return conflict("This refutation has already been answered.")
		}
		return nil
	})
}

// DeleteRefutation removes a refutation. Returns ErrNotFound when the ID is
// unknown.
func (s *Store) DeleteRefutation(ctx context.Context, id int64) error {
	return s.withRetry(ctx, func(tx *gorm.DB) error {
		result := tx.Where("id = ?", id).Delete(&RefutationRecord{})
		if result.Error != nil {
			return fmt.Errorf("delete refutation: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return notFound("Refutation with this ID does not exist.")
		}
		return nil
	})
}
