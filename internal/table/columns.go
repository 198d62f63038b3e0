package table

// Column is the renderable form of one non-skipped field.
type Column[R any] struct {
	index      int
	name       string
	label      string
	typ        FieldType
	optional   bool
	key        bool
	skipHeader bool
	sortable   bool
	noneValue  string
	value      func(R) any
	cell       CellRenderer[R]
	customRow  bool
}

// Index returns the column's position in the body pass.
func (c *Column[R]) Index() int { return c.index }

// Name returns the field name the column was derived from.
func (c *Column[R]) Name() string { return c.name }

// Label returns the column title, regardless of SkipHeader.
func (c *Column[R]) Label() string { return c.label }

// HeaderLabel returns the text for the header pass: empty for skip-header columns.
func (c *Column[R]) HeaderLabel() string {
	if c.skipHeader {
		return ""
	}
	return c.label
}

func (c *Column[R]) Type() FieldType { return c.typ }
func (c *Column[R]) Optional() bool { return c.optional }
func (c *Column[R]) IsKey() bool { return c.key }
func (c *Column[R]) SkipHeader() bool { return c.skipHeader }
func (c *Column[R]) Sortable() bool { return c.sortable }
func (c *Column[R]) NoneValue() string { return c.noneValue }

// Value returns the raw field value of rec.
func (c *Column[R]) Value(rec R) any { return c.value(rec) }

// Format is the default formatter: the value's string form, or the
// none-value placeholder when an optional value is absent.
func (c *Column[R]) Format(rec R) string {
	s, ok := formatValue(c.value(rec), c.typ)
	if !ok {
		return c.noneValue
	}
	return s
}

// Compare orders two records by this column's semantic comparison.
func (c *Column[R]) Compare(a, b R) int {
	return compareValues(c.value(a), c.value(b), c.typ)
}

// Renderer reports which renderer produces this column's content.
// A custom cell renderer takes precedence over the table's row renderer.
func (c *Column[R]) Renderer() RendererKind {
	switch {
	case c.cell != nil:
		return CustomCellRenderer
	case c.customRow:
		return CustomRowRenderer
	default:
		return DefaultCellRenderer
	}
}

// CellRenderer returns the column's custom cell renderer, or nil.
func (c *Column[R]) CellRenderer() CellRenderer[R] { return c.cell }

// Registry is the ordered, read-only column view of a schema.
type Registry[R any] struct {
	columns []*Column[R]
	byName  map[string]*Column[R]
	key     *Column[R]
}

// Columns returns the columns in declaration order.
func (r *Registry[R]) Columns() []*Column[R] {
	out := make([]*Column[R], len(r.columns))
	copy(out, r.columns)
	return out
}

// Len returns the number of columns.
func (r *Registry[R]) Len() int { return len(r.columns) }

// Key returns the key column.
func (r *Registry[R]) Key() *Column[R] { return r.key }

// Lookup returns the column with the given field name.
func (r *Registry[R]) Lookup(name string) (*Column[R], bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Sortable returns the sortable columns in declaration order.
func (r *Registry[R]) Sortable() []*Column[R] {
	var out []*Column[R]
	for _, c := range r.columns {
		if c.sortable {
			out = append(out, c)
		}
	}
	return out
}

// HeaderPass returns the columns in header order. Skip-header columns are
// included so header and body cells line up; their HeaderLabel is empty.
func (r *Registry[R]) HeaderPass() []*Column[R] { return r.Columns() }

// BodyPass returns the columns rendered for each row.
func (r *Registry[R]) BodyPass() []*Column[R] { return r.Columns() }

// HeaderLabels returns the header text of each column in order.
func (r *Registry[R]) HeaderLabels() []string {
	labels := make([]string, len(r.columns))
	for i, c := range r.columns {
		labels[i] = c.HeaderLabel()
	}
	return labels
}
