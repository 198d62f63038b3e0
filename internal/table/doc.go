// Package table derives sortable, selectable HTML tables from a declarative
// description of a record type.
//
// The package is organized around a few pieces that run in order:
//
//   - Schema: a [RecordType] lists the fields of a record with their
//     attributes. [Build] validates it once and returns an immutable [Schema].
//   - Columns: the schema's [Registry] is consulted on every render pass for
//     header labels, formatting, comparison and renderer choice.
//   - State: a [SortController] and a [Selection] hold interaction state.
//   - Rendering: a mounted [Table] builds [RowViewModel] values for the
//     current snapshot of its [Source] and renders them as templ components.
//   - Events: row clicks and selection changes reach the host through the
//     [Bridge].
//
// # Declaring a record type
//
//	schema := table.MustBuild(table.RecordType[Book]{
//	    Name:     "books",
//	    Sortable: true,
//	    Fields: []table.FieldDescriptor[Book]{
//	        {Name: "id", Type: table.FieldUUID, Value: func(b Book) any { return b.ID },
//	            Attributes: table.Attributes{Key: true}},
//	        {Name: "title", Type: table.FieldText, Value: func(b Book) any { return b.Title }},
//	        {Name: "description", Type: table.FieldText, Optional: true,
//	            Value:      func(b Book) any { return b.Description },
//	            Attributes: table.Attributes{NoneValue: "-"}},
//	    },
//	})
//
// Struct tags can be used instead through [DescribeStruct].
//
// # Mounting
//
//	src := table.NewSource(books)
//	t := table.Mount(schema, src, table.Options{
//	    Handlers: table.Handlers{
//	        OnRowClick: func(ev table.RowClickEvent) { ... },
//	    },
//	})
//	t.Component().Render(ctx, w)
//
// Every mutation and render pass on a Table is serialized, so a render always
// observes a complete snapshot of the most recent source update.
package table
