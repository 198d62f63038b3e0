package table

import "sort"

// Direction is the sort direction of a column.
type Direction int

const (
	DirNone Direction = iota
	DirAscending
	DirDescending
)

func (d Direction) String() string {
	switch d {
	case DirAscending:
		return "asc"
	case DirDescending:
		return "desc"
	default:
		return "none"
	}
}

// AriaSort returns the aria-sort attribute value for the direction.
func (d Direction) AriaSort() string {
	switch d {
	case DirAscending:
		return "ascending"
	case DirDescending:
		return "descending"
	default:
		return "none"
	}
}

// next advances the Unsorted -> Ascending -> Descending -> Unsorted cycle.
func (d Direction) next() Direction {
	switch d {
	case DirNone:
		return DirAscending
	case DirAscending:
		return DirDescending
	default:
		return DirNone
	}
}

// SortState is the active sort column and its direction.
// The zero value means unsorted.
type SortState struct {
	Column    string
	Direction Direction
}

// Active reports whether a column is sorted.
func (s SortState) Active() bool {
	return s.Column != "" && s.Direction != DirNone
}

// DirectionOf returns the direction of the named column.
// Every column except the active one is DirNone.
func (s SortState) DirectionOf(column string) Direction {
	if s.Column == column {
		return s.Direction
	}
	return DirNone
}

// SortController tracks the single active sort column of a schema.
type SortController[R any] struct {
	schema *Schema[R]
	state  SortState
}

// NewSortController returns an unsorted controller for schema.
func NewSortController[R any](schema *Schema[R]) *SortController[R] {
	return &SortController[R]{schema: schema}
}

// State returns the current sort state.
func (c *SortController[R]) State() SortState { return c.state }

// Activate handles a click on a column header. It advances the column's
// direction, resetting any other column to unsorted. Unknown and
// non-sortable columns are ignored. Reports whether the state changed.
func (c *SortController[R]) Activate(column string) bool {
	col, ok := c.schema.Lookup(column)
	if !ok || !col.sortable {
		return false
	}

	next := c.state.DirectionOf(column).next()
	if next == DirNone {
		c.state = SortState{}
	} else {
		c.state = SortState{Column: column, Direction: next}
	}
	return true
}

// Set forces a sort state, e.g. one restored from a URL. An unknown or
// non-sortable column resets to unsorted. Reports whether the state changed.
func (c *SortController[R]) Set(state SortState) bool {
	col, ok := c.schema.Lookup(state.Column)
	if !ok || !col.sortable || state.Direction == DirNone {
		state = SortState{}
	}
	if state == c.state {
		return false
	}
	c.state = state
	return true
}

// Reset returns to unsorted.
func (c *SortController[R]) Reset() { c.state = SortState{} }

// Apply returns records ordered by the current state. The input slice is not
// modified. Equal keys keep their relative order.
func (c *SortController[R]) Apply(records []R) []R {
	out := make([]R, len(records))
	copy(out, records)
	return sortRecords(c.schema, c.state, out)
}

// sortRecords stably sorts recs in place by state.
func sortRecords[R any](s *Schema[R], state SortState, recs []R) []R {
	if !state.Active() {
		return recs
	}
	col, ok := s.Lookup(state.Column)
	if !ok {
		return recs
	}
	desc := state.Direction == DirDescending
	sort.SliceStable(recs, func(i, j int) bool {
		cmp := col.Compare(recs[i], recs[j])
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return recs
}
