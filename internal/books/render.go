package books

import (
	"strings"

	"github.com/JonMunkholm/structtable/internal/table"
	"github.com/a-h/templ"
)

// EditRowRenderer renders a book row with a trailing selection checkbox
// and Edit link. Clicking anywhere else on the row posts a row click.
type EditRowRenderer struct {
	BasePath string
}

// RenderRow implements table.RowRenderer.
func (r EditRowRenderer) RenderRow(b Book, row table.RowMeta, cells []templ.Component) templ.Component {
	return editRow(row, strings.TrimSuffix(r.BasePath, "/"), cells)
}

// renderStars draws the rating as filled and empty stars.
func renderStars(b Book, col *table.Column[Book], row table.RowMeta) templ.Component {
	return starsCell(col.Name(), min(b.Rating, MaxRating))
}

func stars(n int) string {
	return strings.Repeat("★", n) + strings.Repeat("☆", MaxRating-n)
}
