package registry

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/trafficreg/trafficreg/pkg/sqlbuild"
)

// TransactionFilter enumerates the optional predicates of a transaction
// list query. RelatedTo matches rows where the given user is the
// violation's creator, the vehicle owner, or the payer.
type TransactionFilter struct {
	ID           *int64
	ViolationID  *int64
	VehiclePlate *string // LIKE pattern
	UserID       *int64  // vehicle owner
	PayerID      *int64
	MinID        *int64
	MaxID        *int64
	RelatedTo    *int64
}

// QueryTransactions returns at most PageSize transactions matching the
// filter, sorted by ID descending.
func (s *Store) QueryTransactions(ctx context.Context, f TransactionFilter) ([]Transaction, error) {
	stmt, params := sqlbuild.New("SELECT * FROM view_transactions").
		Condition("transaction_id = ?", f.ID).
		Condition("violation_id = ?", f.ViolationID).
		Condition("vehicle_plate LIKE ?", f.VehiclePlate).
		Condition("user_id = ?", f.UserID).
		Condition("payer_id = ?", f.PayerID).
		Condition("transaction_id >= ?", f.MinID).
		Condition("transaction_id <= ?", f.MaxID).
		Condition("creator_id = ? OR user_id = ? OR payer_id = ?", f.RelatedTo, f.RelatedTo, f.RelatedTo).
		Suffix("ORDER BY transaction_id DESC LIMIT ?", PageSize).
		Build()

	var rows []transactionRow
	err := s.withRetry(ctx, func(tx *gorm.DB) error {
		return tx.Raw(stmt, params...).Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}

	transactions := make([]Transaction, len(rows))
	for i, r := range rows {
		transactions[i] = r.toTransaction()
	}
	return transactions, nil
}

// CreateTransaction settles a violation and returns the new ID. The unique
// index on violation_id means a violation settles at most once; both an
// unknown violation and a repeat settlement yield ErrConflict.
func (s *Store) CreateTransaction(ctx context.Context, violationID, payerID int64) (int64, error) {
	record := TransactionRecord{
		ID:          s.ids.NextID(),
		ViolationID: violationID,
		PayerID:     payerID,
	}
	err := s.withRetry(ctx, func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return 0, conflict("This violation has already been settled.")
		}
		if isForeignKeyViolation(err) {
			return 0, conflict(fmt.Sprintf("Violation %d does not exist.", violationID))
		}
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	return record.ID, nil
}
