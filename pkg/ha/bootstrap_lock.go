// Package ha serializes schema bootstrap across server replicas that share
// one database. The first replica to acquire the lock runs the (idempotent)
// bootstrap; the rest wait and then proceed against the prepared schema.
package ha

import (
	"context"
	"fmt"
	"hash/crc32"
	"os"
	"time"

	"gorm.io/gorm"
)

// BootstrapLocker guards the one-time schema/view bootstrap.
type BootstrapLocker interface {
	// WithLock runs fn while holding the bootstrap lock, blocking until
	// the lock is acquired and releasing it when fn returns.
	WithLock(ctx context.Context, fn func() error) error
}

// NewBootstrapLocker picks a locking strategy for the database dialect.
// PostgreSQL uses a session advisory lock; every other dialect falls back
// to an INSERT-or-fail lock table with stale-lock recovery, which survives
// crashed holders (unlike a lock file left behind by a dead process).
func NewBootstrapLocker(db *gorm.DB) BootstrapLocker {
	if db == nil {
		return noopLock{}
	}
	if db.Dialector.Name() == "postgres" {
		return &advisoryLock{
			db:     db,
			lockID: int64(crc32.ChecksumIEEE([]byte("registry-server-bootstrap"))),
		}
	}
	lock := &tableLock{db: db}
	// Create the lock table up front so concurrent first calls never race
	// against a missing table.
	_ = db.AutoMigrate(&bootstrapLockRow{})
	return lock
}

type noopLock struct{}

func (noopLock) WithLock(_ context.Context, fn func() error) error { return fn() }

// advisoryLock serializes bootstrap with pg_advisory_lock.
type advisoryLock struct {
	db     *gorm.DB
	lockID int64
}

func (l *advisoryLock) WithLock(ctx context.Context, fn func() error) error {
	if err := l.db.WithContext(ctx).Exec("SELECT pg_advisory_lock(?)", l.lockID).Error; err != nil {
		return fmt.Errorf("acquire bootstrap advisory lock: %w", err)
	}
	defer func() {
		_ = l.db.Exec("SELECT pg_advisory_unlock(?)", l.lockID).Error
	}()
	return fn()
}

type bootstrapLockRow struct {
	ID       string    `gorm:"primaryKey;column:id"`
	LockedAt time.Time `gorm:"column:locked_at"`
	LockedBy string    `gorm:"column:locked_by"`
}

func (bootstrapLockRow) TableName() string { return "bootstrap_lock" }

// tableLock uses INSERT-or-fail on a single-row table. A holder that
// crashed is recovered by deleting rows older than staleAfter.
type tableLock struct {
	db *gorm.DB
}

const (
	lockRowID    = "bootstrap"
	acquireTries = 30
	acquireDelay = time.Second
	staleAfter   = 5 * time.Minute
)

func (l *tableLock) WithLock(ctx context.Context, fn func() error) error {
	holder, _ := os.Hostname()
	if holder == "" {
		holder = "unknown"
	}

	var acquired bool
	for attempt := 0; attempt < acquireTries; attempt++ {
		l.db.WithContext(ctx).
			Where("id = ? AND locked_at < ?", lockRowID, time.Now().Add(-staleAfter)).
			Delete(&bootstrapLockRow{})

		row := bootstrapLockRow{ID: lockRowID, LockedAt: time.Now(), LockedBy: holder}
		if err := l.db.WithContext(ctx).Create(&row).Error; err == nil {
			acquired = true
			break
		} else if attempt == acquireTries-1 {
			return fmt.Errorf("acquire bootstrap lock after %d attempts: %w", acquireTries, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(acquireDelay):
		}
	}
	if !acquired {
		return fmt.Errorf("acquire bootstrap lock")
	}

	defer func() {
		l.db.Where("id = ?", lockRowID).Delete(&bootstrapLockRow{})
	}()

	return fn()
}
