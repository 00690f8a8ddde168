package sqlite_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-library/internal/domain/entity"
	"lending-library/internal/infra/adapter/persistence/sqlite"
	"lending-library/internal/infra/db"
	"lending-library/internal/pkg/search"
	"lending-library/internal/repository"
)

/* ──────────────────────────────── ヘルパ ──────────────────────────────── */

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	conn, err := db.Open(context.Background(), db.DriverSQLite, ":memory:", db.DefaultConnectionConfig())
	require.NoError(t, err)
	require.NoError(t, db.MigrateUpSQLite(conn))
	s := sqlite.NewStore(conn)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func insert(t *testing.T, s *sqlite.Store, b *entity.Book) {
	t.Helper()
	err := s.WithinISBN(context.Background(), b.ISBN, func(sc repository.ISBNScope) error {
		return sc.InsertBook(context.Background(), b)
	})
	require.NoError(t, err)
}

func book(isbn, title string, authors ...string) *entity.Book {
	return &entity.Book{
		ISBN: isbn, Title: title, Authors: authors,
		Pages: 300, Year: 2010, Publisher: "O'Reilly", NCopies: 1,
	}
}

func titles(books []*entity.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

/* ──────────────────────────────── 1. books ──────────────────────────────── */

func TestStore_InsertGetAddCopies(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	want := book("123-456-789-0", "JavaScript: The Good Parts", "Douglas Crockford", "Anon")
	insert(t, s, want)

	got, err := s.Books().Get(ctx, want.ISBN)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	err = s.WithinISBN(ctx, want.ISBN, func(sc repository.ISBNScope) error {
		b, err := sc.AddCopies(ctx, 2)
		if err != nil {
			return err
		}
		assert.Equal(t, 3, b.NCopies)
		return nil
	})
	require.NoError(t, err)

	missing, err := s.Books().Get(ctx, "000-000-000-0")
	require.NoError(t, err)
	assert.Nil(t, missing)

	n, err := s.Books().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestStore_AddCopies_Missing(t *testing.T) {
	s := newStore(t)
	err := s.WithinISBN(context.Background(), "000", func(sc repository.ISBNScope) error {
		_, err := sc.AddCopies(context.Background(), 1)
		return err
	})
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestStore_CallbackErrorRollsBack(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	b := book("111-111-111-1", "Rolled Back", "Nobody")

	err := s.WithinISBN(ctx, b.ISBN, func(sc repository.ISBNScope) error {
		require.NoError(t, sc.InsertBook(ctx, b))
		return entity.ErrBookMismatch
	})
	assert.ErrorIs(t, err, entity.ErrBookMismatch)

	got, err := s.Books().Get(ctx, b.ISBN)
	require.NoError(t, err)
	assert.Nil(t, got)

	res, err := s.Books().Search(ctx, repository.BookSearch{Query: search.Parse("rolled")})
	require.NoError(t, err)
	assert.Empty(t, res)
}

/* ──────────────────────────────── 2. search ──────────────────────────────── */

func TestStore_Search(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	insert(t, s, book("100-000-000-1", "JavaScript: The Definitive Guide", "David Flanagan"))
	insert(t, s, book("100-000-000-2", "JavaScript: The Good Parts", "Douglas Crockford"))
	insert(t, s, book("100-000-000-3", "Programming Ruby", "Dave Thomas", "Andy Hunt"))
	insert(t, s, book("100-000-000-4", "Effective Java", "Joshua Bloch"))

	tests := []struct {
		query string
		want  []string
	}{
		{"javascript", []string{"JavaScript: The Definitive Guide", "JavaScript: The Good Parts"}},
		{"JAVA", []string{"Effective Java"}},
		{"a #definitive @JAVASCRIPT", []string{"JavaScript: The Definitive Guide"}},
		{"javascript -crockford", []string{"JavaScript: The Definitive Guide"}},
		{`"good parts"`, []string{"JavaScript: The Good Parts"}},
		{`"parts good"`, []string{}},
		{"dave hunt", []string{"Programming Ruby"}},
		{`"thomas andy"`, []string{"Programming Ruby"}},
		{`"ruby dave"`, []string{}},
		{"python", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.Books().Search(ctx, repository.BookSearch{Query: search.Parse(tt.query)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestStore_Search_NonASCII(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	insert(t, s, book("100-000-000-1", "Gödel, Escher, Bach", "Douglas Hofstadter"))
	insert(t, s, book("100-000-000-2", "Del Toro's Cabinet", "Guillermo del Toro"))
	insert(t, s, book("100-000-000-3", "snake_case in Practice", "Ann Ode"))

	tests := []struct {
		query string
		want  []string
	}{
		{"Gödel", []string{"Gödel, Escher, Bach"}},
		{"GÖDEL bach", []string{"Gödel, Escher, Bach"}},
		{"godel", []string{}},
		{"del", []string{"Del Toro's Cabinet"}},
		{"snake_case", []string{"snake_case in Practice"}},
		{"snake", []string{}},
		{`"bach douglas"`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := s.Books().Search(ctx, repository.BookSearch{Query: search.Parse(tt.query)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestStore_Search_Pagination(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	insert(t, s, book("200-000-000-3", "Go C", "Gopher"))
	insert(t, s, book("200-000-000-1", "Go A", "Gopher"))
	insert(t, s, book("200-000-000-2", "Go B", "Gopher"))
	insert(t, s, book("200-000-000-0", "Go A", "Gopher"))

	one := 2
	got, err := s.Books().Search(ctx, repository.BookSearch{
		Query: search.Parse("gopher"), Offset: 1, Limit: &one,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "200-000-000-1", got[0].ISBN)
	assert.Equal(t, "200-000-000-2", got[1].ISBN)

	all, err := s.Books().Search(ctx, repository.BookSearch{Query: search.Parse("gopher"), Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go C"}, titles(all))
}

func TestBookRepo_Search_Args(t *testing.T) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE books_fts MATCH ?`)).
		WithArgs(`"ruby" NOT "rails"`, -1, 0).
		WillReturnRows(sqlmock.NewRows([]string{"isbn", "title", "authors", "pages", "year", "publisher", "n_copies"}).
			AddRow("1", "Programming Ruby", `["Dave Thomas"]`, 800, 2004, "PragProg", 1))

	got, err := sqlite.NewBookRepo(conn).Search(context.Background(), repository.BookSearch{
		Query: search.Parse("ruby -rails"),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"Dave Thomas"}, got[0].Authors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/* ──────────────────────────────── 3. checkouts ──────────────────────────────── */

func TestStore_Checkouts(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	b := book("300-000-000-0", "Go in Action", "Bill Kennedy")
	insert(t, s, b)

	err := s.WithinISBN(ctx, b.ISBN, func(sc repository.ISBNScope) error {
		require.NoError(t, sc.InsertCheckout(ctx, "p1"))
		require.NoError(t, sc.InsertCheckout(ctx, "p2"))
		assert.Error(t, sc.InsertCheckout(ctx, "p1"), "duplicate pair violates the primary key")
		return nil
	})
	require.NoError(t, err)

	list, err := s.Checkouts().ListByISBN(ctx, b.ISBN)
	require.NoError(t, err)
	assert.Equal(t, []*entity.Checkout{
		{ISBN: b.ISBN, PatronID: "p1"},
		{ISBN: b.ISBN, PatronID: "p2"},
	}, list)

	err = s.WithinISBN(ctx, b.ISBN, func(sc repository.ISBNScope) error {
		ok, err := sc.DeleteCheckout(ctx, "p1")
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = sc.DeleteCheckout(ctx, "p1")
		require.NoError(t, err)
		assert.False(t, ok)
		live, err := sc.Checkouts(ctx)
		require.NoError(t, err)
		assert.Len(t, live, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_Clear(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	b := book("400-000-000-0", "Clearable", "Someone")
	insert(t, s, b)
	require.NoError(t, s.WithinISBN(ctx, b.ISBN, func(sc repository.ISBNScope) error {
		return sc.InsertCheckout(ctx, "p1")
	}))

	require.NoError(t, s.Clear(ctx))

	nb, err := s.Books().Count(ctx)
	require.NoError(t, err)
	nc, err := s.Checkouts().Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, nb)
	assert.Zero(t, nc)

	res, err := s.Books().Search(ctx, repository.BookSearch{Query: search.Parse("clearable")})
	require.NoError(t, err)
	assert.Empty(t, res)

	insert(t, s, b)
}
