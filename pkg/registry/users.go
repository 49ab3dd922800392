package registry

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/trafficreg/trafficreg/pkg/credentials"
	"github.com/trafficreg/trafficreg/pkg/sqlbuild"
)

// UserFilter enumerates the optional predicates of a user list query.
// Nil fields are skipped entirely.
type UserFilter struct {
	ID       *int64
	Fullname *string // LIKE pattern
	Phone    *string
	MinID    *int64
	MaxID    *int64
}

// QueryUsers returns at most PageSize users matching the filter, sorted by
// ID descending.
func (s *Store) QueryUsers(ctx context.Context, f UserFilter) ([]User, error) {
	stmt, params := sqlbuild.New("SELECT * FROM view_users").
		Condition("user_id = ?", f.ID).
		Condition("user_fullname LIKE ?", f.Fullname).
		Condition("user_phone = ?", f.Phone).
		Condition("user_id >= ?", f.MinID).
		Condition("user_id <= ?", f.MaxID).
		Suffix("ORDER BY user_id DESC LIMIT ?", PageSize).
		Build()

	var rows []UserRow
	err := s.withRetry(ctx, func(tx *gorm.DB) error {
		return tx.Raw(stmt, params...).Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}

	users := make([]User, len(rows))
	for i, r := range rows {
		users[i] = r.toUser()
	}
	return users, nil
}

// CreateUser registers a user and returns the new ID. The phone number is
// the natural key; duplicates surface as ErrConflict from the store's
// unique constraint rather than a check-then-act lookup.
func (s *Store) CreateUser(ctx context.Context, fullname, phone, password string) (int64, error) {
	digest, err := credentials.Digest(password)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}

	record := UserRecord{
		ID:       s.ids.NextID(),
		Fullname: fullname,
		Phone:    phone,
		Password: digest,
	}
	err = s.withRetry(ctx, func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return 0, conflict("User with this phone number already exists.")
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return record.ID, nil
}

// VerifyLogin checks phone+password and returns the matching user ID.
// A missing phone and a wrong password both yield ErrUnauthorized.
func (s *Store) VerifyLogin(ctx context.Context, phone, password string) (int64, error) {
	var record UserRecord
	err := s.withRetry(ctx, func(tx *gorm.DB) error {
		return tx.Where("phone = ?", phone).First(&record).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUnauthorized
		}
		return 0, fmt.Errorf("login lookup: %w", err)
	}

	if !credentials.Verify(password, record.Password) {
		return 0, ErrUnauthorized
	}
	return record.ID, nil
}

// GetUser loads a single user by ID through the denormalized view.
// Returns ErrUnauthorized unless exactly one row matches, so a stale token
// subject never learns whether the row exists.
func (s *Store) GetUser(ctx context.Context, id int64) (*User, error) {
	users, err := s.QueryUsers(ctx, UserFilter{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(users) != 1 {
		return nil, ErrUnauthorized
	}
	return &users[0], nil
}
