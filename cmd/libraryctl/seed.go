package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"

	"github.com/spf13/cobra"

	"libraryapi/internal/book"
	"libraryapi/internal/storage"
	"libraryapi/internal/user"
)

var (
	seedGenres = []string{"Fiction", "Science Fiction", "History", "Science", "Technology", "Romance", "Mystery", "Biography", "Philosophy", "Art"}
	seedWords  = []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Death",
		"Light", "Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
	seedAuthors = []string{"Ada Lovelace", "Grace Hopper", "Alan Turing", "Edsger Dijkstra", "Barbara Liskov", "Donald Knuth"}
)

func newSeedCommand(opts *rootOptions) *cobra.Command {
	var books, users int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample books and users into the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if books < 0 || users < 0 {
				return errors.New("--books and --users must not be negative")
			}

			stores, err := storage.Open(cmd.Context(), opts.cfg.Store)
			if err != nil {
				return err
			}
			defer stores.Close()

			return seed(cmd.Context(), stores, books, users, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&books, "books", 50, "number of books to insert")
	cmd.Flags().IntVar(&users, "users", 10, "number of users to insert")

	return cmd
}

// seed inserts through the repositories so every backend gets the same rows.
// Rows that already exist are skipped, which keeps reruns harmless.
func seed(ctx context.Context, stores *storage.Stores, books, users int, out io.Writer) error {
	var insertedUsers, insertedBooks int

	for i := 0; i < users; i++ {
		u := &user.User{
			Name:  fmt.Sprintf("Reader %d", i+1),
			Email: fmt.Sprintf("reader%d@example.com", i+1),
		}
		if err := stores.Users.Create(ctx, u); err != nil {
			if errors.Is(err, user.ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("insert user %d: %w", i+1, err)
		}
		insertedUsers++
	}

	for i := 0; i < books; i++ {
		d := book.Draft{
			Title:         fmt.Sprintf("Book Title %d - %s", i+1, seedWords[i%len(seedWords)]),
			Author:        seedAuthors[i%len(seedAuthors)],
			Genre:         seedGenres[rand.Intn(len(seedGenres))],
			PublishedYear: 1950 + rand.Intn(75),
		}
		if _, err := stores.Books.Create(ctx, d); err != nil {
			if errors.Is(err, book.ErrAlreadyExists) {
				continue
			}
			return fmt.Errorf("insert book %d: %w", i+1, err)
		}
		insertedBooks++
	}

	fmt.Fprintf(out, "Inserted %d users and %d books into %s store\n", insertedUsers, insertedBooks, stores.Driver)
	return nil
}
