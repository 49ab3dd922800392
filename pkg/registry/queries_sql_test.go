package registry

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/trafficreg/trafficreg/pkg/snowflake"
)

// newMockedStore wires the store to a sqlmock connection so tests can pin
// the exact statement text and parameter order the builder emits.
func newMockedStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	return NewStore(db, snowflake.NewGenerator(), slog.New(slog.NewTextHandler(io.Discard, nil))), mock
}

var userViewColumns = []string{
	"user_id", "user_fullname", "user_phone", "user_permissions",
	"user_vehicles_count", "user_violations_count",
}

func TestQueryUsersStatementShape(t *testing.T) {
	store, mock := newMockedStore(t)
	id := int64(7)
	phone := "0900000001"

	// Conditions appear in declaration order; the page limit is the last
	// parameter.
	mock.ExpectQuery("SELECT * FROM view_users WHERE (user_id = ?) AND (user_phone = ?) ORDER BY user_id DESC LIMIT ?").
		WithArgs(id, phone, PageSize).
		WillReturnRows(sqlmock.NewRows(userViewColumns).
			AddRow(id, "Nguyen Van A", phone, int64(0), int64(0), int64(0)))

	users, err := store.QueryUsers(context.Background(), UserFilter{ID: &id, Phone: &phone})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, id, users[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryUsersOmitsWhereWithoutFilters(t *testing.T) {
	store, mock := newMockedStore(t)

	mock.ExpectQuery("SELECT * FROM view_users ORDER BY user_id DESC LIMIT ?").
		WithArgs(PageSize).
		WillReturnRows(sqlmock.NewRows(userViewColumns))

	_, err := store.QueryUsers(context.Background(), UserFilter{})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryViolationsRelatedToClause(t *testing.T) {
	store, mock := newMockedStore(t)
	related := int64(7)

	// The related-to scope binds the same ID to both roles inside one
	// parenthesized OR group.
	mock.ExpectQuery("SELECT * FROM view_violations WHERE (creator_id = ? OR user_id = ?) ORDER BY violation_id DESC LIMIT ?").
		WithArgs(related, related, PageSize).
		WillReturnRows(sqlmock.NewRows([]string{"violation_id"}))

	_, err := store.QueryViolations(context.Background(), ViolationFilter{RelatedTo: &related})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryVehiclesOrderedByPlate(t *testing.T) {
	store, mock := newMockedStore(t)
	owner := int64(7)

	mock.ExpectQuery("SELECT * FROM view_vehicles WHERE (user_id = ?) ORDER BY vehicle_plate LIMIT ?").
		WithArgs(owner, PageSize).
		WillReturnRows(sqlmock.NewRows([]string{"vehicle_plate"}))

	_, err := store.QueryVehicles(context.Background(), VehicleFilter{UserID: &owner})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
