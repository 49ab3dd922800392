package ha

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Shared cache so every goroutine sees the same in-memory database.
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestNewBootstrapLocker_NilDB(t *testing.T) {
	locker := NewBootstrapLocker(nil)
	called := false
	require.NoError(t, locker.WithLock(context.Background(), func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
}

func TestTableLock_RunsAndReleases(t *testing.T) {
	db := setupTestDB(t)
	locker := NewBootstrapLocker(db)

	called := false
	require.NoError(t, locker.WithLock(context.Background(), func() error {
		called = true
		return nil
	}))
	assert.True(t, called)

	var count int64
	db.Model(&bootstrapLockRow{}).Count(&count)
	assert.Zero(t, count, "lock row must be gone after WithLock returns")
}

func TestTableLock_ReleasesOnError(t *testing.T) {
	db := setupTestDB(t)
	locker := NewBootstrapLocker(db)

	err := locker.WithLock(context.Background(), func() error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	var count int64
	db.Model(&bootstrapLockRow{}).Count(&count)
	assert.Zero(t, count)
}

func TestTableLock_MutualExclusion(t *testing.T) {
	db := setupTestDB(t)
	locker := NewBootstrapLocker(db)

	var inside atomic.Int32
	var peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(context.Background(), func() error {
				n := inside.Add(1)
				if n > peak.Load() {
					peak.Store(n)
				}
				time.Sleep(10 * time.Millisecond)
				inside.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), peak.Load(), "at most one holder at a time")
}

func TestTableLock_RecoversStaleLock(t *testing.T) {
	db := setupTestDB(t)
	locker := NewBootstrapLocker(db)

	// Simulate a crashed holder from long ago.
	require.NoError(t, db.Create(&bootstrapLockRow{
		ID:       lockRowID,
		LockedAt: time.Now().Add(-time.Hour),
		LockedBy: "crashed-host",
	}).Error)

	called := false
	require.NoError(t, locker.WithLock(context.Background(), func() error {
		called = true
		return nil
	}))
	assert.True(t, called)
}
