package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-library/internal/domain/entity"
	"lending-library/internal/infra/adapter/persistence/postgres"
	"lending-library/internal/repository"
)

const lockSQL = `SELECT pg_advisory_xact_lock(hashtext($1))`

func expectLock(mock sqlmock.Sqlmock, isbn string) {
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(lockSQL)).
		WithArgs(isbn).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

/* ──────────────────────────────── 1. WithinISBN ──────────────────────────────── */

func TestStore_WithinISBN_InsertCommits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	b := guide()
	expectLock(mock, b.ISBN)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM books`)).
		WithArgs(b.ISBN).
		WillReturnRows(sqlmock.NewRows(bookCols))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO books`)).
		WithArgs(b.ISBN, b.Title, pq.Array(b.Authors), b.Pages, b.Year, b.Publisher, b.NCopies,
			"'javascript':1 'the':2 'definitive':3 'guide':4 'david':6 'flanagan':7").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	store := postgres.NewStore(db)
	err = store.WithinISBN(context.Background(), b.ISBN, func(sc repository.ISBNScope) error {
		cur, err := sc.Book(context.Background())
		if err != nil {
			return err
		}
		assert.Nil(t, cur)
		return sc.InsertBook(context.Background(), b)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinISBN_CallbackErrorRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	expectLock(mock, "123")
	mock.ExpectRollback()

	err = postgres.NewStore(db).WithinISBN(context.Background(), "123", func(repository.ISBNScope) error {
		return entity.ErrNoCopiesAvailable
	})
	assert.ErrorIs(t, err, entity.ErrNoCopiesAvailable)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinISBN_LockFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	boom := errors.New("lock timeout")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(lockSQL)).WithArgs("123").WillReturnError(boom)
	mock.ExpectRollback()

	called := false
	err = postgres.NewStore(db).WithinISBN(context.Background(), "123", func(repository.ISBNScope) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_WithinISBN_BeginFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin().WillReturnError(sql.ErrConnDone)

	err = postgres.NewStore(db).WithinISBN(context.Background(), "123", func(repository.ISBNScope) error {
		t.Fatal("callback must not run")
		return nil
	})
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

/* ──────────────────────────────── 2. scope operations ──────────────────────────────── */

func TestStore_Scope_AddCopies(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	b := guide()
	merged := guide()
	merged.NCopies = 5
	expectLock(mock, b.ISBN)
	mock.ExpectQuery(regexp.QuoteMeta(`SET n_copies = n_copies + $2`)).
		WithArgs(b.ISBN, 3).
		WillReturnRows(bookRows(merged))
	mock.ExpectCommit()

	var got *entity.Book
	err = postgres.NewStore(db).WithinISBN(context.Background(), b.ISBN, func(sc repository.ISBNScope) error {
		var err error
		got, err = sc.AddCopies(context.Background(), 3)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 5, got.NCopies)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Scope_AddCopies_Missing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	expectLock(mock, "123")
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE books`)).
		WithArgs("123", 1).
		WillReturnRows(sqlmock.NewRows(bookCols))
	mock.ExpectRollback()

	err = postgres.NewStore(db).WithinISBN(context.Background(), "123", func(sc repository.ISBNScope) error {
		_, err := sc.AddCopies(context.Background(), 1)
		return err
	})
	assert.ErrorIs(t, err, entity.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Scope_Checkouts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	expectLock(mock, "123")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM checkouts`)).
		WithArgs("123").
		WillReturnRows(sqlmock.NewRows([]string{"isbn", "patron_id"}).
			AddRow("123", "p1").
			AddRow("123", "p2"))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO checkouts`)).
		WithArgs("123", "p3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM checkouts WHERE isbn = $1 AND patron_id = $2`)).
		WithArgs("123", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM checkouts WHERE isbn = $1 AND patron_id = $2`)).
		WithArgs("123", "ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err = postgres.NewStore(db).WithinISBN(context.Background(), "123", func(sc repository.ISBNScope) error {
		ctx := context.Background()
		list, err := sc.Checkouts(ctx)
		require.NoError(t, err)
		assert.Equal(t, []*entity.Checkout{
			{ISBN: "123", PatronID: "p1"},
			{ISBN: "123", PatronID: "p2"},
		}, list)

		require.NoError(t, sc.InsertCheckout(ctx, "p3"))

		ok, err := sc.DeleteCheckout(ctx, "p1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = sc.DeleteCheckout(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

/* ──────────────────────────────── 3. Clear / Close ──────────────────────────────── */

func TestStore_Clear(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM checkouts`)).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM books`)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, postgres.NewStore(db).Clear(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Clear_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	boom := errors.New("disk full")
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM checkouts`)).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM books`)).WillReturnError(boom)
	mock.ExpectRollback()

	assert.ErrorIs(t, postgres.NewStore(db).Clear(context.Background()), boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Close(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectClose()
	require.NoError(t, postgres.NewStore(db).Close())
	require.NoError(t, mock.ExpectationsWereMet())
}
