package table

// render.go assembles row view models and the default markup.
//
// For each row the schema's custom row renderer is used when declared,
// otherwise the defaultRow component wraps the cells. For each column the
// custom cell renderer is used when declared, otherwise defaultCell writes
// the default formatter's text. The components live in table.templ.

import (
	"time"

	"github.com/a-h/templ"
)

// Interaction describes the user action that caused a row click.
type Interaction struct {
	Source string // "mouse", "keyboard", "http"
	Shift  bool
	Ctrl   bool
	Alt    bool
	Meta   bool
	At     time.Time
}

// RowMeta is the row metadata handed to renderers.
type RowMeta struct {
	Key      string
	Index    int
	Selected bool
	Class    string

	// Dispatch reports a click on this row. Each call emits exactly one
	// RowClickEvent.
	Dispatch func(Interaction)
}

// CellRenderer renders one cell, including its <td> element.
type CellRenderer[R any] interface {
	RenderCell(rec R, col *Column[R], row RowMeta) templ.Component
}

// CellRendererFunc adapts a function to CellRenderer.
type CellRendererFunc[R any] func(rec R, col *Column[R], row RowMeta) templ.Component

func (f CellRendererFunc[R]) RenderCell(rec R, col *Column[R], row RowMeta) templ.Component {
	return f(rec, col, row)
}

// RowRenderer renders one row around its already rendered cells.
type RowRenderer[R any] interface {
	RenderRow(rec R, row RowMeta, cells []templ.Component) templ.Component
}

// RowRendererFunc adapts a function to RowRenderer.
type RowRendererFunc[R any] func(rec R, row RowMeta, cells []templ.Component) templ.Component

func (f RowRendererFunc[R]) RenderRow(rec R, row RowMeta, cells []templ.Component) templ.Component {
	return f(rec, row, cells)
}

// Actions supplies host URLs for the default markup. Returning "" omits
// the corresponding htmx attribute.
type Actions interface {
	SortURL(column string) string
	RowClickURL(key string) string
	SelectURL(key string) string
}

// Cell is one rendered cell of a row view model.
type Cell struct {
	Column   string
	Text     string // Default formatter output
	Renderer RendererKind
	Markup   templ.Component
}

// RowViewModel is the per-render view of one visible row.
type RowViewModel[R any] struct {
	Key      string
	Index    int
	Record   R
	Selected bool
	Class    string
	Cells    []Cell
	Markup   templ.Component

	meta RowMeta
}

// Meta returns the metadata passed to renderers for this row.
func (v RowViewModel[R]) Meta() RowMeta { return v.meta }

// Click invokes the row's bound click dispatcher.
func (v RowViewModel[R]) Click(in Interaction) {
	if v.meta.Dispatch != nil {
		v.meta.Dispatch(in)
	}
}

// RowClass is the class attribute of a row; "selected" is added for selected rows.
func RowClass(selected bool) string {
	if selected {
		return "struct-table-row selected"
	}
	return "struct-table-row"
}

// buildRow assembles the view model for rec at position index.
func buildRow[R any](s *Schema[R], rec R, index int, sel *Selection, dispatch func(RowMeta, Interaction), actions Actions) RowViewModel[R] {
	key := s.KeyOf(rec)
	selected := sel.IsSelected(key)
	meta := RowMeta{
		Key:      key,
		Index:    index,
		Selected: selected,
		Class:    RowClass(selected),
	}
	bound := meta
	meta.Dispatch = func(in Interaction) { dispatch(bound, in) }

	cells := make([]Cell, len(s.columns))
	markup := make([]templ.Component, len(s.columns))
	for i, col := range s.columns {
		text := col.Format(rec)
		var m templ.Component
		if col.cell != nil {
			m = col.cell.RenderCell(rec, col, meta)
		} else {
			m = defaultCell(col.name, text)
		}
		cells[i] = Cell{Column: col.name, Text: text, Renderer: col.Renderer(), Markup: m}
		markup[i] = m
	}

	var row templ.Component
	if s.row != nil {
		row = s.row.RenderRow(rec, meta, markup)
	} else {
		row = defaultRow(newRowView(meta, actions, sel.Mode() != SelectNone), markup)
	}

	return RowViewModel[R]{
		Key:      key,
		Index:    index,
		Record:   rec,
		Selected: selected,
		Class:    meta.Class,
		Cells:    cells,
		Markup:   row,
		meta:     meta,
	}
}

// rowView is what the default row markup needs to know about a row.
type rowView struct {
	Key       string
	Index     int
	Selected  bool
	Class     string
	ClickURL  string
	SelectURL string // Empty hides the selection checkbox
}

func newRowView(meta RowMeta, actions Actions, selectable bool) rowView {
	v := rowView{
		Key:      meta.Key,
		Index:    meta.Index,
		Selected: meta.Selected,
		Class:    meta.Class,
	}
	if actions != nil {
		v.ClickURL = actions.RowClickURL(meta.Key)
		if selectable {
			v.SelectURL = actions.SelectURL(meta.Key)
		}
	}
	return v
}

// headerView is one <th> of the default header.
type headerView struct {
	Column   string
	Label    string // Empty renders a blank header cell
	Sortable bool
	AriaSort string
	SortURL  string
}

// headerViews lists the header cells for the given sort state.
func headerViews[R any](s *Schema[R], sort SortState, actions Actions) []headerView {
	out := make([]headerView, len(s.columns))
	for i, col := range s.columns {
		h := headerView{
			Column:   col.name,
			Label:    col.HeaderLabel(),
			Sortable: col.sortable,
			AriaSort: sort.DirectionOf(col.name).AriaSort(),
		}
		if h.Sortable && actions != nil {
			h.SortURL = actions.SortURL(col.name)
		}
		out[i] = h
	}
	return out
}
