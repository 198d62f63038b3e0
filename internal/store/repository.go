// Package store loads table records from Postgres and keeps mounted table
// sources fresh.
package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/structtable/internal/books"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// TxBeginner starts transactions. Satisfied by *pgxpool.Pool.
type TxBeginner interface {
	DBTX
	Begin(context.Context) (pgx.Tx, error)
}

const createBooksTable = `
CREATE TABLE IF NOT EXISTS books (
	id           uuid PRIMARY KEY,
	title        text NOT NULL,
	author       text NOT NULL DEFAULT '',
	publish_date date,
	description  text,
	price        numeric(10, 2),
	rating       integer NOT NULL DEFAULT 0 CHECK (rating BETWEEN 0 AND 5),
	notes        text NOT NULL DEFAULT ''
)`

const listBooks = `
SELECT id, title, author, publish_date, description, price, rating, notes
FROM books
ORDER BY title, id`

const insertBook = `
INSERT INTO books (id, title, author, publish_date, description, price, rating, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO NOTHING`

// BookRepository reads and writes the books table.
type BookRepository struct {
	db TxBeginner
}

// NewBookRepository returns a repository using db, usually a *pgxpool.Pool.
func NewBookRepository(db TxBeginner) *BookRepository {
	return &BookRepository{db: db}
}

// Migrate creates the books table if it does not exist.
func (r *BookRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, createBooksTable); err != nil {
		return fmt.Errorf("create books table: %w", err)
	}
	return nil
}

// ListBooks returns every book ordered by title.
func (r *BookRepository) ListBooks(ctx context.Context) ([]books.Book, error) {
	rows, err := r.db.Query(ctx, listBooks)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var out []books.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return out, nil
}

// Load implements Loader.
func (r *BookRepository) Load(ctx context.Context) ([]books.Book, error) {
	return r.ListBooks(ctx)
}

// InsertBooks stores bs in one transaction. Books whose id already exists
// are left untouched. Returns the number of rows inserted.
func (r *BookRepository) InsertBooks(ctx context.Context, bs []books.Book) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	var inserted int64
	for i, b := range bs {
		tag, err := tx.Exec(ctx, insertBook,
			pgtype.UUID{Bytes: b.ID, Valid: true},
			b.Title, b.Author, b.PublishDate, b.Description, b.Price,
			int32(b.Rating), b.Notes,
		)
		if err != nil {
			return 0, fmt.Errorf("insert book %d (%s): %w", i, b.ID, err)
		}
		inserted += tag.RowsAffected()
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// SeedIfEmpty inserts bs when the books table has no rows.
func (r *BookRepository) SeedIfEmpty(ctx context.Context, bs []books.Book) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, "SELECT count(*) FROM books").Scan(&count); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	if count > 0 {
		return 0, nil
	}
	return r.InsertBooks(ctx, bs)
}

// scanBook scans a single row of listBooks.
func scanBook(rows pgx.Rows) (books.Book, error) {
	var (
		id     pgtype.UUID
		rating pgtype.Int4
		b      books.Book
	)
	err := rows.Scan(
		&id, &b.Title, &b.Author, &b.PublishDate,
		&b.Description, &b.Price, &rating, &b.Notes,
	)
	if err != nil {
		return books.Book{}, err
	}
	if !id.Valid {
		return books.Book{}, fmt.Errorf("book without id")
	}
	b.ID = uuid.UUID(id.Bytes)
	b.Rating = int(rating.Int32)
	return b, nil
}
