package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/trafficreg/trafficreg/pkg/permissions"
	"github.com/trafficreg/trafficreg/pkg/snowflake"
)

// newTestStore opens a migrated in-memory database. Each test gets its own
// named shared-cache database so fixtures never bleed across tests.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := NewStore(db, snowflake.NewGenerator(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func createTestUser(t *testing.T, store *Store, fullname, phone string) int64 {
	t.Helper()
	id, err := store.CreateUser(context.Background(), fullname, phone, "hunter2!")
	require.NoError(t, err)
	return id
}

// grantPermissions writes the permission bits directly; there is no API
// surface for it, operators edit the row.
func grantPermissions(t *testing.T, store *Store, userID int64, p permissions.Permission) {
	t.Helper()
	err := store.db.Model(&UserRecord{}).Where("id = ?", userID).
		Update("permissions", int64(p)).Error
	require.NoError(t, err)
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Migrate(context.Background()))

	secret, err := store.TokenSecret(context.Background())
	require.NoError(t, err)
	assert.Len(t, secret, 32)

	// A replayed migration keeps the original secret.
	require.NoError(t, store.Migrate(context.Background()))
	again, err := store.TokenSecret(context.Background())
	require.NoError(t, err)
	assert.Equal(t, secret, again)
}

func TestCreateUserDuplicatePhone(t *testing.T) {
	store := newTestStore(t)
	createTestUser(t, store, "Nguyen Van A", "0900000001")

	_, err := store.CreateUser(context.Background(), "Someone Else", "0900000001", "pw")
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "phone number already exists")
}

func TestVerifyLogin(t *testing.T) {
	store := newTestStore(t)
	id := createTestUser(t, store, "Nguyen Van A", "0900000001")

	got, err := store.VerifyLogin(context.Background(), "0900000001", "hunter2!")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = store.VerifyLogin(context.Background(), "0900000001", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = store.VerifyLogin(context.Background(), "0999999999", "hunter2!")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateVehicleUnknownOwner(t *testing.T) {
	store := newTestStore(t)

	err := store.CreateVehicle(context.Background(), "29A-12345", 424242)
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "User with this ID does not exist")
}

func TestCreateVehicleDuplicatePlate(t *testing.T) {
	store := newTestStore(t)
	owner := createTestUser(t, store, "Nguyen Van A", "0900000001")

	require.NoError(t, store.CreateVehicle(context.Background(), "29A-12345", owner))
	err := store.CreateVehicle(context.Background(), "29A-12345", owner)
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "plate already exists")
}

func TestViewCountsAggregate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createTestUser(t, store, "Nguyen Van A", "0900000001")
	officer := createTestUser(t, store, "Tran Thi B", "0900000002")

	require.NoError(t, store.CreateVehicle(ctx, "29A-12345", owner))
	require.NoError(t, store.CreateVehicle(ctx, "30B-00001", owner))
	_, err := store.CreateViolation(ctx, officer, CategorySpeeding, "29A-12345", 500_000, "")
	require.NoError(t, err)

	users, err := store.QueryUsers(ctx, UserFilter{ID: &owner})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(2), users[0].VehiclesCount)
	assert.Equal(t, int64(1), users[0].ViolationsCount)

	vehicles, err := store.QueryVehicles(ctx, VehicleFilter{UserID: &owner})
	require.NoError(t, err)
	require.Len(t, vehicles, 2)
	// Plate ascending.
	assert.Equal(t, "29A-12345", vehicles[0].Plate)
	assert.Equal(t, int64(1), vehicles[0].ViolationsCount)
	assert.Equal(t, "30B-00001", vehicles[1].Plate)
	assert.Equal(t, int64(0), vehicles[1].ViolationsCount)
}

func TestCreateViolationUnknownPlate(t *testing.T) {
	store := newTestStore(t)
	officer := createTestUser(t, store, "Tran Thi B", "0900000002")

	_, err := store.CreateViolation(context.Background(), officer, CategoryRedLight, "51F-99999", 1_000_000, "")
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "Vehicle with this plate does not exist")
}

func TestQueryViolationsRelatedTo(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createTestUser(t, store, "Nguyen Van A", "0900000001")
	officer := createTestUser(t, store, "Tran Thi B", "0900000002")
	bystander := createTestUser(t, store, "Le Van C", "0900000003")

	require.NoError(t, store.CreateVehicle(ctx, "29A-12345", owner))
	_, err := store.CreateViolation(ctx, officer, CategorySpeeding, "29A-12345", 500_000, "")
	require.NoError(t, err)

	for _, related := range []int64{owner, officer} {
		got, err := store.QueryViolations(ctx, ViolationFilter{RelatedTo: &related})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}

	got, err := store.QueryViolations(ctx, ViolationFilter{RelatedTo: &bystander})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestViolationNestedEntities(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createTestUser(t, store, "Nguyen Van A", "0900000001")
	officer := createTestUser(t, store, "Tran Thi B", "0900000002")

	require.NoError(t, store.CreateVehicle(ctx, "29A-12345", owner))
	id, err := store.CreateViolation(ctx, officer, CategoryPavement, "29A-12345", 300_000, "https://cam/1")
	require.NoError(t, err)

	got, err := store.QueryViolations(ctx, ViolationFilter{ID: &id})
	require.NoError(t, err)
	require.Len(t, got, 1)

	v := got[0]
	assert.Equal(t, officer, v.Creator.ID)
	assert.Equal(t, "Tran Thi B", v.Creator.Fullname)
	assert.Equal(t, "29A-12345", v.Vehicle.Plate)
	assert.Equal(t, owner, v.Vehicle.User.ID)
	assert.Equal(t, snowflake.Time(id), v.CreatedAt)
	assert.Equal(t, "https://cam/1", v.VideoURL)
}

func TestTransactionSettlesOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createTestUser(t, store, "Nguyen Van A", "0900000001")
	officer := createTestUser(t, store, "Tran Thi B", "0900000002")

	require.NoError(t, store.CreateVehicle(ctx, "29A-12345", owner))
	violationID, err := store.CreateViolation(ctx, officer, CategorySpeeding, "29A-12345", 500_000, "")
	require.NoError(t, err)

	_, err = store.CreateTransaction(ctx, violationID, owner)
	require.NoError(t, err)

	_, err = store.CreateTransaction(ctx, violationID, officer)
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "already been settled")

	_, err = store.CreateTransaction(ctx, 424242, owner)
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestRespondToRefutationTransitionsOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createTestUser(t, store, "Nguyen Van A", "0900000001")
	officer := createTestUser(t, store, "Tran Thi B", "0900000002")

	require.NoError(t, store.CreateVehicle(ctx, "29A-12345", owner))
	violationID, err := store.CreateViolation(ctx, officer, CategorySpeeding, "29A-12345", 500_000, "")
	require.NoError(t, err)
	refutationID, err := store.CreateRefutation(ctx, violationID, owner, "I was parked.")
	require.NoError(t, err)

	require.NoError(t, store.RespondToRefutation(ctx, refutationID, "Video says otherwise."))

	got, err := store.QueryRefutations(ctx, RefutationFilter{ID: &refutationID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Response)
	assert.Equal(t, "Video says otherwise.", *got[0].Response)

	err = store.RespondToRefutation(ctx, refutationID, "Changed my mind.")
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "already been answered")

	err = store.RespondToRefutation(ctx, 424242, "Anyone there?")
	require.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestDeleteViolationCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createTestUser(t, store, "Nguyen Van A", "0900000001")
	officer := createTestUser(t, store, "Tran Thi B", "0900000002")

	require.NoError(t, store.CreateVehicle(ctx, "29A-12345", owner))
	violationID, err := store.CreateViolation(ctx, officer, CategorySpeeding, "29A-12345", 500_000, "")
	require.NoError(t, err)
	_, err = store.CreateRefutation(ctx, violationID, owner, "I was parked.")
	require.NoError(t, err)
	_, err = store.CreateTransaction(ctx, violationID, owner)
	require.NoError(t, err)

	require.NoError(t, store.DeleteViolation(ctx, violationID))

	violations, err := store.QueryViolations(ctx, ViolationFilter{ID: &violationID})
	require.NoError(t, err)
	assert.Empty(t, violations)
	refutations, err := store.QueryRefutations(ctx, RefutationFilter{ViolationID: &violationID})
	require.NoError(t, err)
	assert.Empty(t, refutations)
	transactions, err := store.QueryTransactions(ctx, TransactionFilter{ViolationID: &violationID})
	require.NoError(t, err)
	assert.Empty(t, transactions)

	assert.ErrorIs(t, store.DeleteViolation(ctx, violationID), ErrNotFound)
}

func TestDetectedLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := createTestUser(t, store, "Nguyen Van A", "0900000001")
	require.NoError(t, store.CreateVehicle(ctx, "29A-12345", owner))

	id, err := store.CreateDetected(ctx, CategoryRedLight, "29A-12345", "https://cam/7")
	require.NoError(t, err)

	got, err := store.QueryDetected(ctx, DetectedFilter{ID: &id})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "29A-12345", got[0].Vehicle.Plate)

	require.NoError(t, store.DeleteDetected(ctx, id))
	assert.ErrorIs(t, store.DeleteDetected(ctx, id), ErrNotFound)

	_, err = store.CreateDetected(ctx, CategoryRedLight, "00X-00000", "")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestQueryUsersIDWindow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	first := createTestUser(t, store, "Nguyen Van A", "0900000001")
	second := createTestUser(t, store, "Tran Thi B", "0900000002")
	third := createTestUser(t, store, "Le Van C", "0900000003")

	users, err := store.QueryUsers(ctx, UserFilter{MinID: &second, MaxID: &third})
	require.NoError(t, err)
	require.Len(t, users, 2)
	// ID descending.
	assert.Equal(t, third, users[0].ID)
	assert.Equal(t, second, users[1].ID)

	users, err = store.QueryUsers(ctx, UserFilter{MaxID: &first})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, first, users[0].ID)

	above := third + 1
	users, err = store.QueryUsers(ctx, UserFilter{MinID: &above})
	require.NoError(t, err)
	assert.Empty(t, users)
}
