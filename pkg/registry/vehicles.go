package registry

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/trafficreg/trafficreg/pkg/sqlbuild"
)

// PlateMaxLength bounds the vehicle plate natural key.
const PlateMaxLength = 12

// VehicleFilter enumerates the optional predicates of a vehicle list query.
// RelatedTo restricts results to vehicles owned by the given user; the
// authorization policy sets it for unprivileged callers.
type VehicleFilter struct {
	Plate           *string // LIKE pattern
	ViolationsCount *int64
	UserID          *int64
	MinPlate        *string
	MaxPlate        *string
	RelatedTo       *int64
}

// QueryVehicles returns at most PageSize vehicles matching the filter,
// sorted by plate ascending.
func (s *Store) QueryVehicles(ctx context.Context, f VehicleFilter) ([]Vehicle, error) {
	stmt, params := sqlbuild.New("SELECT * FROM view_vehicles").
		Condition("vehicle_plate LIKE ?", f.Plate).
		Condition("vehicle_violations_count = ?", f.ViolationsCount).
		Condition("user_id = ?", f.UserID).
		Condition("vehicle_plate >= ?", f.MinPlate).
		Condition("vehicle_plate <= ?", f.MaxPlate).
		Condition("user_id = ?", f.RelatedTo).
		Suffix("ORDER BY vehicle_plate LIMIT ?", PageSize).
		Build()

	var rows []VehicleRow
	err := s.withRetry(ctx, func(tx *gorm.DB) error {
		return tx.Raw(stmt, params...).Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("query vehicles: %w", err)
	}

	vehicles := make([]Vehicle, len(rows))
	for i, r := range rows {
		vehicles[i] = r.toVehicle()
	}
	return vehicles, nil
}

// CreateVehicle registers a plate to a user. A duplicate plate or an
// unknown owner surfaces as ErrConflict from the store constraints.
func (s *Store) CreateVehicle(ctx context.Context, plate string, userID int64) error {
	record := VehicleRecord{Plate: plate, UserID: userID}
	err := s.withRetry(ctx, func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return conflict("Vehicle with this plate already exists.")
		}
		if isForeignKeyViolation(err) {
			return conflict("User with this ID does not exist.")
		}
		return fmt.Errorf("create vehicle: %w", err)
	}
	return nil
}
