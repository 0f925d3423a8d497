package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aklujeats/aklujeats/internal/models"
	"github.com/aklujeats/aklujeats/internal/shared"
)

func newMockStore(t *testing.T, provider string) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	store := NewWithDB(sqlx.NewDb(mockDB, provider), &models.Config{Provider: provider})
	store.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return store, mock
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"8.0.36", "8.0.36", 0},
		{"8.0.36-0ubuntu0.22.04.1", "8.0.36", 0},
		{"5.7.44-log", "8.0.36", -1},
		{"8.4.0", "8.0.36", 1},
		{"8.0", "8.0.0", 0},
		{"10.11.6-MariaDB", "8.0.36", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareVersions(tt.a, tt.b))
		})
	}
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(&models.Config{Provider: "oracle"})
	assert.Error(t, err)
}

func TestNewDoesNotConnect(t *testing.T) {
	store, err := New(&models.Config{Provider: "mysql", URI: "not a dsn"})
	require.NoError(t, err)

	_, err = store.GetRestaurant(context.Background(), "r1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid MySQL connection string")
}

func TestEmptyConnectionStringFailsOnFirstUse(t *testing.T) {
	store, err := New(&models.Config{Provider: "mysql"})
	require.NoError(t, err)

	err = store.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no connection string configured")
}

func TestMySQLDataSourceName(t *testing.T) {
	dsn, err := dataSourceName(&models.Config{
		Provider: "mysql",
		URI:      "aklujeats:secret@tcp(db.internal:3306)/aklujeats",
	}, true)
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "clientFoundRows=true")
	assert.Contains(t, dsn, "multiStatements=true")
	assert.Contains(t, dsn, "tcp(db.internal:3306)/aklujeats")
}

func TestSQLiteMemoryPathUnchanged(t *testing.T) {
	path, err := sqlitePath(":memory:")
	require.NoError(t, err)
	assert.Equal(t, ":memory:", path)
}

func TestGetRestaurantNotFound(t *testing.T) {
	store, mock := newMockStore(t, "postgres")

	mock.ExpectQuery(`SELECT .* FROM restaurants WHERE id = \$1`).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.GetRestaurant(context.Background(), "r1")
	assert.True(t, shared.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMenuItemNotFound(t *testing.T) {
	store, mock := newMockStore(t, "mysql")

	mock.ExpectExec(`DELETE FROM menu_items WHERE id = \?`).
		WithArgs("m1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.DeleteMenuItem(context.Background(), "m1")
	assert.True(t, shared.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderConflict(t *testing.T) {
	store, mock := newMockStore(t, "postgres")

	mock.ExpectExec(`UPDATE orders SET status = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE id = \$1`).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	order := &models.Order{ID: "o1", Status: models.OrderAccepted, PaymentStatus: models.PaymentPaid}
	err := store.UpdateOrder(context.Background(), order, models.OrderPlaced)
	assert.True(t, shared.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderMissing(t *testing.T) {
	store, mock := newMockStore(t, "postgres")

	mock.ExpectExec(`UPDATE orders SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE id = \$1`).
		WithArgs("o1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := store.UpdateOrder(context.Background(), &models.Order{ID: "o1"}, models.OrderPlaced)
	assert.True(t, shared.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOrdersAppliesFilterAndPage(t *testing.T) {
	store, mock := newMockStore(t, "postgres")
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "restaurant_id", "customer_name", "customer_phone",
		"delivery_address", "payment_method", "payment_status", "status", "agent_id",
		"total_paise", "created_at", "updated_at"}).
		AddRow("o1", "r1", "Sakshi", "9800000000", "Station Road", "cash", "pending", "placed", "",
			45000, created, created)

	mock.ExpectQuery(`SELECT .* FROM orders WHERE status = \$1 ORDER BY created_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("placed", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	orders, err := store.ListOrders(context.Background(), shared.OrderFilter{Status: "placed", Limit: 10})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderPlaced, orders[0].Status)
	assert.Equal(t, int64(45000), orders[0].TotalPaise)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountOrdersByStatusFillsZeroes(t *testing.T) {
	store, mock := newMockStore(t, "postgres")

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) AS count FROM orders GROUP BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("placed", 3))

	counts, err := store.CountOrdersByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, counts[models.OrderPlaced])
	assert.Equal(t, 0, counts[models.OrderDelivered])
	assert.Len(t, counts, len(models.OrderStatuses))
}

func TestCreateAdminDuplicate(t *testing.T) {
	store, mock := newMockStore(t, "mysql")

	mock.ExpectExec(`INSERT INTO admins`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := store.CreateAdmin(context.Background(), &models.Admin{ID: "a1", Username: "owner"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&mysql.MySQLError{Number: 1062}))
	assert.False(t, isUniqueViolation(&mysql.MySQLError{Number: 1045}))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: admins.username")))
	assert.False(t, isUniqueViolation(errors.New("disk full")))
}
