package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bharat2468/cloud-project/pkg/database"
)

func newMembershipTestFixture(t *testing.T) (*MembershipRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	repo := NewMembershipRepository(mock)
	return repo, mock
}

// ---------------------------------------------------------------------------
// ListByUser
// ---------------------------------------------------------------------------

func TestMembershipRepository_ListByUser_Success(t *testing.T) {
	repo, mock := newMembershipTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)

	rows := pgxmock.NewRows([]string{"user_id", "product_id", "added_at"}).
		AddRow("user-1", "prod-a", now.Add(-2*time.Hour)).
		AddRow("user-1", "prod-b", now.Add(-time.Hour)).
		AddRow("user-1", "prod-c", now)
	mock.ExpectQuery("SELECT user_id, product_id, added_at").
		WithArgs("user-1").
		WillReturnRows(rows)

	items, err := repo.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "prod-a", items[0].ProductID)
	assert.Equal(t, "prod-b", items[1].ProductID)
	assert.Equal(t, "prod-c", items[2].ProductID)
	assert.Equal(t, "user-1", items[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_ListByUser_Empty(t *testing.T) {
	repo, mock := newMembershipTestFixture(t)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"user_id", "product_id", "added_at"})
	mock.ExpectQuery("SELECT user_id, product_id, added_at").
		WithArgs("user-empty").
		WillReturnRows(rows)

	items, err := repo.ListByUser(context.Background(), "user-empty")
	require.NoError(t, err)
	assert.NotNil(t, items, "should return empty slice, not nil")
	assert.Len(t, items, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_ListByUser_QueryError(t *testing.T) {
	repo, mock := newMembershipTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT user_id, product_id, added_at").
		WithArgs("user-1").
		WillReturnError(errors.New("connection refused"))

	items, err := repo.ListByUser(context.Background(), "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list cart items")
	assert.Nil(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Exists
// ---------------------------------------------------------------------------

func TestMembershipRepository_Exists_True(t *testing.T) {
	repo, mock := newMembershipTestFixture(t)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"exists"}).AddRow(true)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("user-1", "prod-a").
		WillReturnRows(rows)

	exists, err := repo.Exists(context.Background(), "user-1", "prod-a")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_Exists_False(t *testing.T) {
	repo, mock := newMembershipTestFixture(t)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"exists"}).AddRow(false)
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("user-1", "prod-missing").
		WillReturnRows(rows)

	exists, err := repo.Exists(context.Background(), "user-1", "prod-missing")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestMembershipRepository_Create_NewRow(t *testing.T) {
	repo, mock := newMembershipTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)

	rows := pgxmock.NewRows([]string{"user_id", "product_id", "added_at"}).
		AddRow("user-1", "prod-a", now)
	mock.ExpectQuery("INSERT INTO cart_items").
		WithArgs("user-1", "prod-a").
		WillReturnRows(rows)

	item, created, err := repo.Create(context.Background(), "user-1", "prod-a")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "user-1", item.UserID)
	assert.Equal(t, "prod-a", item.ProductID)
	assert.Equal(t, now, item.AddedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_Create_AlreadyExists(t *testing.T) {
	repo, mock := newMembershipTestFixture(t)
	defer mock.Close()

	addedAt := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)

	// ON CONFLICT DO NOTHING yields no row on the conflicting insert.
	mock.ExpectQuery("INSERT INTO cart_items").
		WithArgs("user-1", "prod-a").
		WillReturnError(pgx.ErrNoRows)

	// The pre-existing row is read back, preserving its original added_at.
	existing := pgxmock.NewRows([]string{"user_id", "product_id", "added_at"}).
		AddRow("user-1", "prod-a", addedAt)
	mock.ExpectQuery("SELECT user_id, product_id, added_at").
		WithArgs("user-1", "prod-a").
		WillReturnRows(existing)

	item, created, err := repo.Create(context.Background(), "user-1", "prod-a")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, addedAt, item.AddedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_Create_InsertError(t *testing.T) {
	repo, mock := newMembershipTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("INSERT INTO cart_items").
		WithArgs("user-1", "prod-a").
		WillReturnError(errors.New("database timeout"))

	_, created, err := repo.Create(context.Background(), "user-1", "prod-a")
	require.Error(t, err)
	assert.False(t, created)
	assert.Contains(t, err.Error(), "create cart item")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestMembershipRepository_Delete_Present(t *testing.T) {
	repo, mock := newMembershipTestFixture(t)
	defer mock.Close()

	addedAt := time.Now().UTC().Truncate(time.Microsecond)

	rows := pgxmock.NewRows([]string{"user_id", "product_id", "added_at"}).
		AddRow("user-1", "prod-a", addedAt)
	mock.ExpectQuery("DELETE FROM cart_items").
		WithArgs("user-1", "prod-a").
		WillReturnRows(rows)

	item, err := repo.Delete(context.Background(), "user-1", "prod-a")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "prod-a", item.ProductID)
	assert.Equal(t, addedAt, item.AddedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_Delete_Absent(t *testing.T) {
	repo, mock := newMembershipTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("DELETE FROM cart_items").
		WithArgs("user-1", "prod-missing").
		WillReturnError(pgx.ErrNoRows)

	item, err := repo.Delete(context.Background(), "user-1", "prod-missing")
	require.NoError(t, err, "deleting an absent row is not an error")
	assert.Nil(t, item)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_Delete_QueryError(t *testing.T) {
	repo, mock := newMembershipTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("DELETE FROM cart_items").
		WithArgs("user-1", "prod-a").
		WillReturnError(errors.New("connection reset"))

	item, err := repo.Delete(context.Background(), "user-1", "prod-a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete cart item")
	assert.Nil(t, item)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---------------------------------------------------------------------------
// DeleteAllForUser
// ---------------------------------------------------------------------------

func TestMembershipRepository_DeleteAllForUser_Success(t *testing.T) {
	repo, mock := newMembershipTestFixture(t)
	defer mock.Close()

	now := time.Now().UTC().Truncate(time.Microsecond)

	rows := pgxmock.NewRows([]string{"user_id", "product_id", "added_at"}).
		AddRow("user-1", "prod-a", now.Add(-time.Hour)).
		AddRow("user-1", "prod-b", now)
	mock.ExpectQuery("DELETE FROM cart_items").
		WithArgs("user-1").
		WillReturnRows(rows)

	items, err := repo.DeleteAllForUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "prod-a", items[0].ProductID)
	assert.Equal(t, "prod-b", items[1].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_DeleteAllForUser_EmptyCart(t *testing.T) {
	repo, mock := newMembershipTestFixture(t)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"user_id", "product_id", "added_at"})
	mock.ExpectQuery("DELETE FROM cart_items").
		WithArgs("user-empty").
		WillReturnRows(rows)

	items, err := repo.DeleteAllForUser(context.Background(), "user-empty")
	require.NoError(t, err)
	assert.NotNil(t, items, "should return empty slice, not nil")
	assert.Len(t, items, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMembershipRepository_DeleteAllForUser_QueryError(t *testing.T) {
	repo, mock := newMembershipTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("DELETE FROM cart_items").
		WithArgs("user-1").
		WillReturnError(errors.New("database timeout"))

	items, err := repo.DeleteAllForUser(context.Background(), "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear cart")
	assert.Nil(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
