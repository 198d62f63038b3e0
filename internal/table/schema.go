package table

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Schema is the validated, immutable table description built from a RecordType.
type Schema[R any] struct {
	Registry[R]

	name string
	row  RowRenderer[R]
}

// Name returns the record type name.
func (s *Schema[R]) Name() string { return s.name }

// RowRenderer returns the custom row renderer, or nil if rows use the default markup.
func (s *Schema[R]) RowRenderer() RowRenderer[R] { return s.row }

// KeyOf returns the string form of rec's key, used for selection and events.
func (s *Schema[R]) KeyOf(rec R) string { return s.key.Format(rec) }

// Build validates rt and returns its schema. All failures are *SchemaError.
func Build[R any](rt RecordType[R]) (*Schema[R], error) {
	if err := checkKeys(rt); err != nil {
		return nil, err
	}

	s := &Schema[R]{
		name: rt.Name,
		Registry: Registry[R]{
			byName: make(map[string]*Column[R], len(rt.Fields)),
		},
	}

	rowName := rt.RowRenderer
	rowOwner := "" // field that named the row renderer, empty for table level
	seen := make(map[string]bool, len(rt.Fields))

	for _, f := range rt.Fields {
		if f.Name == "" {
			return nil, invalidAttrs(rt.Name, "", "field name is empty")
		}
		if seen[f.Name] {
			return nil, invalidAttrs(rt.Name, f.Name, "duplicate field name")
		}
		seen[f.Name] = true

		if err := checkAttributes(rt.Name, f); err != nil {
			return nil, err
		}

		if r := f.Attributes.RowRenderer; r != "" {
			if rowName != "" && rowName != r {
				return nil, &SchemaError{
					Kind:   InvalidAttributeCombination,
					Record: rt.Name,
					Fields: nonEmpty(rowOwner, f.Name),
					Reason: fmt.Sprintf("conflicting row renderers %q and %q", rowName, r),
				}
			}
			rowName, rowOwner = r, f.Name
		}

		if f.Attributes.Skip {
			continue
		}

		col := &Column[R]{
			index:      len(s.columns),
			name:       f.Name,
			label:      f.Attributes.Title,
			typ:        f.Type,
			optional:   f.Optional,
			key:        f.Attributes.Key,
			skipHeader: f.Attributes.SkipHeader,
			noneValue:  f.Attributes.NoneValue,
			value:      f.Value,
		}
		if col.label == "" {
			col.label = titleCase(f.Name)
		}
		switch f.Attributes.Sortable {
		case SortOn:
			col.sortable = true
		case SortOff:
			col.sortable = false
		default:
			col.sortable = rt.Sortable
		}

		if name := f.Attributes.CellRenderer; name != "" {
			cr, err := resolveCell(rt, f.Name, name)
			if err != nil {
				return nil, err
			}
			col.cell = cr
		}

		s.columns = append(s.columns, col)
		s.byName[col.name] = col
		if col.key {
			s.key = col
		}
	}

	if rowName != "" {
		rr, err := resolveRow(rt, rowOwner, rowName)
		if err != nil {
			return nil, err
		}
		s.row = rr
		for _, c := range s.columns {
			c.customRow = true
		}
	}

	return s, nil
}

// MustBuild is like Build but panics on error.
// Use it for record types declared at package init.
func MustBuild[R any](rt RecordType[R]) *Schema[R] {
	s, err := Build(rt)
	if err != nil {
		panic(err)
	}
	return s
}

// checkKeys enforces exactly one key field.
func checkKeys[R any](rt RecordType[R]) error {
	var keys []string
	for _, f := range rt.Fields {
		if f.Attributes.Key {
			keys = append(keys, f.Name)
		}
	}
	switch len(keys) {
	case 0:
		return &SchemaError{Kind: MissingKey, Record: rt.Name}
	case 1:
		return nil
	default:
		return &SchemaError{Kind: MultipleKeys, Record: rt.Name, Fields: keys}
	}
}

// checkAttributes rejects attribute combinations that cannot be rendered.
func checkAttributes[R any](record string, f FieldDescriptor[R]) error {
	a := f.Attributes

	if f.Value == nil {
		return invalidAttrs(record, f.Name, "field has no value accessor")
	}
	if a.NoneValue != "" && !f.Optional {
		return invalidAttrs(record, f.Name, "none_value requires an optional field")
	}
	if a.Key && a.Skip {
		return invalidAttrs(record, f.Name, "key field cannot be skipped")
	}
	if a.Key && f.Optional {
		return invalidAttrs(record, f.Name, "key field cannot be optional")
	}
	if a.Skip {
		switch {
		case a.SkipHeader:
			return invalidAttrs(record, f.Name, "skip and skip_header are exclusive")
		case a.CellRenderer != "":
			return invalidAttrs(record, f.Name, "skipped field cannot have a cell renderer")
		case a.NoneValue != "":
			return invalidAttrs(record, f.Name, "skipped field cannot have a none_value")
		case a.Sortable != SortInherit:
			return invalidAttrs(record, f.Name, "skipped field cannot be sortable")
		}
	}
	return nil
}

func resolveCell[R any](rt RecordType[R], field, name string) (CellRenderer[R], error) {
	v, ok := rt.Renderers[name]
	if !ok {
		return nil, invalidAttrs(rt.Name, field, fmt.Sprintf("unknown cell renderer %q", name))
	}
	cr, ok := v.(CellRenderer[R])
	if !ok || cr == nil {
		return nil, invalidAttrs(rt.Name, field, fmt.Sprintf("renderer %q (%T) does not render cells", name, v))
	}
	return cr, nil
}

func resolveRow[R any](rt RecordType[R], field, name string) (RowRenderer[R], error) {
	v, ok := rt.Renderers[name]
	if !ok {
		return nil, invalidAttrs(rt.Name, field, fmt.Sprintf("unknown row renderer %q", name))
	}
	rr, ok := v.(RowRenderer[R])
	if !ok || rr == nil {
		return nil, invalidAttrs(rt.Name, field, fmt.Sprintf("renderer %q (%T) does not render rows", name, v))
	}
	return rr, nil
}

// titleCase turns a field name into a header label: "publish_date" -> "Publish Date".
func titleCase(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func nonEmpty(names ...string) []string {
	out := names[:0]
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
