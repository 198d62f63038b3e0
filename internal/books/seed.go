package books

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

func date(y int, m time.Month, d int) pgtype.Date {
	return pgtype.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// Seed returns the built-in catalog used when no database or file is configured.
func Seed() []Book {
	return []Book{
		{
			ID:          uuid.MustParse("3b5d8a52-1f0e-4c8e-9d43-6a1f2f4c0a01"),
			Title:       "The Great Gatsby",
			Author:      "F. Scott Fitzgerald",
			PublishDate: date(1925, time.April, 10),
			Description: ToPgText("A novel of the Jazz Age on Long Island."),
			Price:       ToPgNumeric("10.99"),
			Rating:      4,
		},
		{
			ID:          uuid.MustParse("3b5d8a52-1f0e-4c8e-9d43-6a1f2f4c0a02"),
			Title:       "Nineteen Eighty-Four",
			Author:      "George Orwell",
			PublishDate: date(1949, time.June, 8),
			Description: ToPgText("A dystopian novel about surveillance and control."),
			Price:       ToPgNumeric("12.50"),
			Rating:      5,
		},
		{
			ID:          uuid.MustParse("3b5d8a52-1f0e-4c8e-9d43-6a1f2f4c0a03"),
			Title:       "Ulysses",
			Author:      "James Joyce",
			PublishDate: date(1922, time.February, 2),
			Rating:      3,
			Notes:       "Reprint pending",
		},
		{
			ID:          uuid.MustParse("3b5d8a52-1f0e-4c8e-9d43-6a1f2f4c0a04"),
			Title:       "To Kill a Mockingbird",
			Author:      "Harper Lee",
			PublishDate: date(1960, time.July, 11),
			Description: ToPgText("Childhood and injustice in the American South."),
			Price:       ToPgNumeric("9"),
			Rating:      5,
		},
		{
			ID:          uuid.MustParse("3b5d8a52-1f0e-4c8e-9d43-6a1f2f4c0a05"),
			Title:       "The Grapes of Wrath",
			Author:      "John Steinbeck",
			PublishDate: date(1939, time.April, 14),
			Price:       ToPgNumeric("14.25"),
			Rating:      4,
		},
		{
			ID:          uuid.MustParse("3b5d8a52-1f0e-4c8e-9d43-6a1f2f4c0a06"),
			Title:       "Beloved",
			Author:      "Toni Morrison",
			PublishDate: date(1987, time.September, 2),
			Description: ToPgText("A former slave haunted by her past."),
		},
	}
}
