package book

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRepositoryContract exercises a Repository implementation. borrowers must
// be ids the store accepts in borrowed_by.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) Repository, borrowers []string) {
	ctx := context.Background()
	alice, bob := borrowers[0], borrowers[1]

	t.Run("create and get", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, Draft{Title: "Dune", Author: "Frank Herbert", Genre: "sf", PublishedYear: 1965})
		require.NoError(t, err)
		assert.True(t, ValidID(created.ID))
		assert.True(t, created.IsAvailable)
		assert.Nil(t, created.BorrowedBy)

		got, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dune", got.Title)
		assert.Equal(t, 1965, got.PublishedYear)
		assert.True(t, got.IsAvailable)

		_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("duplicate title and author", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Create(ctx, Draft{Title: "Emma", Author: "Jane Austen", PublishedYear: 1815})
		require.NoError(t, err)
		_, err = repo.Create(ctx, Draft{Title: "Emma", Author: "Jane Austen", PublishedYear: 1816})
		assert.ErrorIs(t, err, ErrAlreadyExists)
	})

	t.Run("list filters and pages", func(t *testing.T) {
		repo := newRepo(t)

		for _, d := range []Draft{
			{Title: "Dune", Author: "Frank Herbert", Genre: "sf", PublishedYear: 1965},
			{Title: "Emma", Author: "Jane Austen", Genre: "classic", PublishedYear: 1815},
			{Title: "Persuasion", Author: "Jane Austen", Genre: "classic", PublishedYear: 1817},
		} {
			_, err := repo.Create(ctx, d)
			require.NoError(t, err)
		}

		books, total, err := repo.List(ctx, Query{Genre: "classic"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, books, 2)
		assert.Equal(t, "Emma", books[0].Title)

		books, total, err = repo.List(ctx, Query{Author: "austen", Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, books, 1)
		assert.Equal(t, "Persuasion", books[0].Title)

		unavailable := false
		books, total, err = repo.List(ctx, Query{Available: &unavailable})
		require.NoError(t, err)
		assert.Equal(t, 0, total)
		assert.Empty(t, books)
	})

	t.Run("update and delete", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, Draft{Title: "Dune", Author: "Frank Herbert", PublishedYear: 1965})
		require.NoError(t, err)

		updated, err := repo.Update(ctx, created.ID, Draft{Title: "Dune", Author: "Frank Herbert", Genre: "sf", PublishedYear: 1966})
		require.NoError(t, err)
		assert.Equal(t, "sf", updated.Genre)
		assert.Equal(t, 1966, updated.PublishedYear)
		assert.True(t, updated.IsAvailable)

		_, err = repo.Update(ctx, "00000000-0000-0000-0000-000000000000", Draft{Title: "x", Author: "y"})
		assert.ErrorIs(t, err, ErrNotFound)

		removed, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, removed.ID)

		_, err = repo.Delete(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("conditional update transitions", func(t *testing.T) {
		repo := newRepo(t)

		b, err := repo.Create(ctx, Draft{Title: "Dune", Author: "Frank Herbert", PublishedYear: 1965})
		require.NoError(t, err)

		claimed, err := repo.ConditionalUpdate(ctx, b.ID, Claimable(), BorrowedTo(alice))
		require.NoError(t, err)
		assert.False(t, claimed.IsAvailable)
		require.NotNil(t, claimed.BorrowedBy)
		assert.Equal(t, alice, *claimed.BorrowedBy)

		_, err = repo.ConditionalUpdate(ctx, b.ID, Claimable(), BorrowedTo(bob))
		assert.ErrorIs(t, err, ErrNotMatched)

		n, err := repo.CountWhere(ctx, HeldBy(alice))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		held, err := repo.ListWhere(ctx, HeldBy(alice))
		require.NoError(t, err)
		require.Len(t, held, 1)
		assert.Equal(t, b.ID, held[0].ID)

		released, err := repo.ConditionalUpdate(ctx, b.ID, OnLoan(), Available())
		require.NoError(t, err)
		assert.True(t, released.IsAvailable)
		assert.Nil(t, released.BorrowedBy)

		_, err = repo.ConditionalUpdate(ctx, b.ID, OnLoan(), Available())
		assert.ErrorIs(t, err, ErrNotMatched)

		_, err = repo.ConditionalUpdate(ctx, "00000000-0000-0000-0000-000000000000", Claimable(), BorrowedTo(alice))
		assert.ErrorIs(t, err, ErrNotMatched)
	})

	t.Run("concurrent claims have one winner", func(t *testing.T) {
		repo := newRepo(t)

		b, err := repo.Create(ctx, Draft{Title: "Dune", Author: "Frank Herbert", PublishedYear: 1965})
		require.NoError(t, err)

		const workers = 16
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
			unmatched int
			other     []error
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := repo.ConditionalUpdate(ctx, b.ID, Claimable(), BorrowedTo(borrowers[i%len(borrowers)]))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					successes++
				case errors.Is(err, ErrNotMatched):
					unmatched++
				default:
					other = append(other, err)
				}
			}(i)
		}
		wg.Wait()

		assert.Empty(t, other)
		assert.Equal(t, 1, successes)
		assert.Equal(t, workers-1, unmatched)

		got, err := repo.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.False(t, got.IsAvailable)
		assert.NotNil(t, got.BorrowedBy)
	})
}
