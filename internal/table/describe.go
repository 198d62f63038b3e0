package table

// describe.go derives a RecordType from struct tags.
//
// Tag format (comma separated, all optional):
//
//	type Book struct {
//	    ID          uuid.UUID   `table:"key"`
//	    Title       string      `table:"sortable"`
//	    Description pgtype.Text `table:"none_value=-"`
//	    Hidden      string      `table:"skip"`
//	    Rating      string      `table:"skip_header,title=Stars"`
//	    Cover       string      `table:"renderer=cover,sortable=false"`
//	}
//
// A tag of "-" skips the field. Pointer and pgtype fields are optional.
// The resulting RecordType still has to pass Build.

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// TagName is the struct tag read by DescribeStruct.
const TagName = "table"

// DescribeOptions carries the table-level attributes that cannot be
// expressed on a struct field.
type DescribeOptions struct {
	Name        string // Defaults to the snake_case struct name
	Sortable    bool
	RowRenderer string
	Renderers   map[string]any
}

// DescribeStruct builds a RecordType for the struct type R from its tags.
func DescribeStruct[R any](opts DescribeOptions) (RecordType[R], error) {
	var zero R
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Struct {
		return RecordType[R]{}, fmt.Errorf("describe %T: not a struct type", zero)
	}

	rt := RecordType[R]{
		Name:        opts.Name,
		Sortable:    opts.Sortable,
		RowRenderer: opts.RowRenderer,
		Renderers:   opts.Renderers,
	}
	if rt.Name == "" {
		rt.Name = snakeCase(t.Name())
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get(TagName)
		if tag == "-" {
			continue
		}

		fd := FieldDescriptor[R]{
			Name:  snakeCase(field.Name),
			Value: fieldAccessor[R](i),
		}
		fd.Type, fd.Optional = fieldTypeOf(field.Type)

		if err := parseTag(rt.Name, &fd, tag); err != nil {
			return RecordType[R]{}, err
		}
		rt.Fields = append(rt.Fields, fd)
	}

	return rt, nil
}

// DescribeAndBuild is DescribeStruct followed by Build.
func DescribeAndBuild[R any](opts DescribeOptions) (*Schema[R], error) {
	rt, err := DescribeStruct[R](opts)
	if err != nil {
		return nil, err
	}
	return Build(rt)
}

func fieldAccessor[R any](index int) func(R) any {
	return func(rec R) any {
		return reflect.ValueOf(rec).Field(index).Interface()
	}
}

// parseTag applies the options of a table tag to fd.
func parseTag[R any](record string, fd *FieldDescriptor[R], tag string) error {
	if tag == "" {
		return nil
	}
	for _, opt := range strings.Split(tag, ",") {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		name, value, hasValue := strings.Cut(opt, "=")

		switch name {
		case "key":
			fd.Attributes.Key = true
		case "skip":
			fd.Attributes.Skip = true
		case "skip_header":
			fd.Attributes.SkipHeader = true
		case "none_value":
			fd.Attributes.NoneValue = value
		case "title":
			fd.Attributes.Title = value
		case "name":
			fd.Name = value
		case "renderer", "cell_renderer":
			fd.Attributes.CellRenderer = value
		case "row_renderer":
			fd.Attributes.RowRenderer = value
		case "sortable":
			on := true
			if hasValue {
				b, err := strconv.ParseBool(value)
				if err != nil {
					return invalidAttrs(record, fd.Name, fmt.Sprintf("invalid sortable value %q", value))
				}
				on = b
			}
			fd.Attributes.Sortable = SortOff
			if on {
				fd.Attributes.Sortable = SortOn
			}
		case "optional":
			fd.Optional = true
		case "type":
			ft, err := parseFieldType(value)
			if err != nil {
				return invalidAttrs(record, fd.Name, err.Error())
			}
			fd.Type = ft
		default:
			return invalidAttrs(record, fd.Name, fmt.Sprintf("unknown tag option %q", name))
		}
	}
	return nil
}

func parseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(s) {
	case "text", "string":
		return FieldText, nil
	case "numeric", "number":
		return FieldNumeric, nil
	case "date", "time":
		return FieldDate, nil
	case "bool", "boolean":
		return FieldBool, nil
	case "uuid":
		return FieldUUID, nil
	default:
		return FieldText, fmt.Errorf("unknown field type %q", s)
	}
}

var (
	timeType        = reflect.TypeOf(time.Time{})
	uuidType        = reflect.TypeOf(uuid.UUID{})
	pgTextType      = reflect.TypeOf(pgtype.Text{})
	pgDateType      = reflect.TypeOf(pgtype.Date{})
	pgTimestamptz   = reflect.TypeOf(pgtype.Timestamptz{})
	pgTimestampType = reflect.TypeOf(pgtype.Timestamp{})
	pgNumericType   = reflect.TypeOf(pgtype.Numeric{})
	pgInt8Type      = reflect.TypeOf(pgtype.Int8{})
	pgInt4Type      = reflect.TypeOf(pgtype.Int4{})
	pgFloat8Type    = reflect.TypeOf(pgtype.Float8{})
	pgBoolType      = reflect.TypeOf(pgtype.Bool{})
	pgUUIDType      = reflect.TypeOf(pgtype.UUID{})
)

// fieldTypeOf maps a Go type to its semantic type and optionality.
func fieldTypeOf(t reflect.Type) (FieldType, bool) {
	if t.Kind() == reflect.Pointer {
		ft, _ := fieldTypeOf(t.Elem())
		return ft, true
	}

	switch t {
	case timeType:
		return FieldDate, false
	case uuidType:
		return FieldUUID, false
	case pgTextType:
		return FieldText, true
	case pgDateType, pgTimestamptz, pgTimestampType:
		return FieldDate, true
	case pgNumericType, pgInt8Type, pgInt4Type, pgFloat8Type:
		return FieldNumeric, true
	case pgBoolType:
		return FieldBool, true
	case pgUUIDType:
		return FieldUUID, true
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return FieldNumeric, false
	case reflect.Bool:
		return FieldBool, false
	default:
		return FieldText, false
	}
}

// snakeCase converts a Go identifier to snake_case: "PublishDate" -> "publish_date",
// "HTTPServer" -> "http_server".
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
