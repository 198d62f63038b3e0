package books

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
)

// ErrMissingColumn is returned when a CSV lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// ParseCSV reads books from r. The first row is the header; header names are
// matched case-insensitively. Recognized columns are id, title, author,
// publish_date, description, price, rating and notes. Only title is required;
// rows without an id get one derived from title and author.
func ParseCSV(r io.Reader) ([]Book, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx := MakeHeaderIndex(header)
	if _, ok := idx["title"]; !ok {
		return nil, fmt.Errorf("%w: title", ErrMissingColumn)
	}

	var out []Book
	seen := make(map[uuid.UUID]int)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}

		b, err := bookFromRow(row, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if prev, dup := seen[b.ID]; dup {
			return nil, fmt.Errorf("row %d: duplicate key %s (first seen on row %d)", line, b.ID, prev)
		}
		seen[b.ID] = line
		out = append(out, b)
	}

	return out, nil
}

func bookFromRow(row []string, idx HeaderIndex) (Book, error) {
	id, err := ToUUID(idx.Cell(row, "id"))
	if err != nil {
		return Book{}, err
	}

	title := idx.Cell(row, "title")
	if title == "" {
		return Book{}, fmt.Errorf("required field title is empty")
	}
	author := idx.Cell(row, "author")
	if id == uuid.Nil {
		id = DeriveID(title, author)
	}

	rating, err := ToRating(idx.Cell(row, "rating"))
	if err != nil {
		return Book{}, err
	}

	date := idx.Cell(row, "publish_date")
	publish := ToPgDate(date)
	if date != "" && !publish.Valid {
		return Book{}, fmt.Errorf("invalid date %q", date)
	}

	return Book{
		ID:          id,
		Title:       title,
		Author:      author,
		PublishDate: publish,
		Description: ToPgText(idx.Cell(row, "description")),
		Price:       ToPgNumeric(idx.Cell(row, "price")),
		Rating:      rating,
		Notes:       idx.Cell(row, "notes"),
	}, nil
}

// FileLoader loads books from a CSV file on every call.
type FileLoader struct {
	Path string
}

// Load reads and parses the file.
func (l FileLoader) Load(ctx context.Context) ([]Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open books file: %w", err)
	}
	defer f.Close()

	books, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", l.Path, err)
	}
	return books, nil
}

// SeedLoader serves the built-in seed catalog.
type SeedLoader struct{}

// Load returns Seed().
func (SeedLoader) Load(context.Context) ([]Book, error) {
	return Seed(), nil
}
