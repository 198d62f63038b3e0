// Package books is the book catalog served by the demo host: the Book
// record, its table schema and the ways books are loaded.
package books

import (
	"fmt"
	"sync"

	"github.com/JonMunkholm/structtable/internal/table"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// TableName is the record type name of the books table.
const TableName = "books"

// MaxRating is the highest star rating.
const MaxRating = 5

// Book is one row of the books table.
type Book struct {
	ID          uuid.UUID      `table:"key,title=ID"`
	Title       string
	Author      string
	PublishDate pgtype.Date    `table:"title=Published"`
	Description pgtype.Text    `table:"none_value=-,sortable=false"`
	Price       pgtype.Numeric `table:"none_value=-"`
	Rating      int            `table:"skip_header,renderer=stars"`
	Notes       string         `table:"skip"`
}

// RecordType describes Book for the table package. Rows link to paths
// under basePath.
func RecordType(basePath string) (table.RecordType[Book], error) {
	rt, err := table.DescribeStruct[Book](table.DescribeOptions{
		Name:        TableName,
		Sortable:    true,
		RowRenderer: "edit",
		Renderers: map[string]any{
			"edit":  EditRowRenderer{BasePath: basePath},
			"stars": table.CellRendererFunc[Book](renderStars),
		},
	})
	if err != nil {
		return table.RecordType[Book]{}, fmt.Errorf("describe books: %w", err)
	}
	return rt, nil
}

// NewSchema builds the books schema with rows linking under basePath.
func NewSchema(basePath string) (*table.Schema[Book], error) {
	rt, err := RecordType(basePath)
	if err != nil {
		return nil, err
	}
	return table.Build(rt)
}

var defaultSchema = sync.OnceValue(func() *table.Schema[Book] {
	rt, err := RecordType("/tables/" + TableName)
	if err != nil {
		panic(err)
	}
	return table.MustBuild(rt)
})

// Schema returns the books schema mounted at /tables/books.
func Schema() *table.Schema[Book] {
	return defaultSchema()
}
