package table

// FieldType is the semantic value type of a field. It selects the comparison
// used when sorting and the default string form used when rendering.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
	FieldDate
	FieldBool
	FieldUUID
)

// String returns the lower-case name of the type.
func (t FieldType) String() string {
	switch t {
	case FieldText:
		return "text"
	case FieldNumeric:
		return "numeric"
	case FieldDate:
		return "date"
	case FieldBool:
		return "bool"
	case FieldUUID:
		return "uuid"
	default:
		return "unknown"
	}
}

// Sortability controls whether a single column can be sorted.
type Sortability int

const (
	// SortInherit follows the record type's Sortable default.
	SortInherit Sortability = iota
	SortOn
	SortOff
)

// Attributes are the per-field options of a record type.
type Attributes struct {
	Key        bool   // Field identifies the record. Exactly one per record type.
	Skip       bool   // Field is never rendered
	SkipHeader bool   // Field is rendered in the body with an empty header cell
	NoneValue  string // Placeholder for absent values of an optional field
	Title      string // Header label; derived from the field name when empty

	// CellRenderer and RowRenderer name entries of RecordType.Renderers.
	// A field-level RowRenderer applies to the whole table.
	CellRenderer string
	RowRenderer  string

	Sortable Sortability
}

// FieldDescriptor describes one field of a record type.
type FieldDescriptor[R any] struct {
	Name       string
	Type       FieldType
	Optional   bool
	Value      func(R) any
	Attributes Attributes
}

// RecordType is the declarative description a Schema is built from.
type RecordType[R any] struct {
	Name   string
	Fields []FieldDescriptor[R]

	// Sortable is the default for fields whose Sortable attribute is SortInherit.
	Sortable bool

	// RowRenderer names the custom row renderer for the whole table.
	RowRenderer string

	// Renderers maps names used by attributes to renderer values. Entries
	// must implement CellRenderer[R] or RowRenderer[R].
	Renderers map[string]any
}

// RendererKind identifies which renderer produces a column's cells.
type RendererKind int

const (
	DefaultCellRenderer RendererKind = iota
	CustomCellRenderer
	CustomRowRenderer
)

func (k RendererKind) String() string {
	switch k {
	case CustomCellRenderer:
		return "custom_cell"
	case CustomRowRenderer:
		return "custom_row"
	default:
		return "default_cell"
	}
}
