package web

import (
	"github.com/JonMunkholm/structtable/internal/table"
	"github.com/JonMunkholm/structtable/internal/web/templates"
	"github.com/a-h/templ"
)

// page renders a complete document embedding views.
func page(title string, views []TableView) templ.Component {
	sections := make([]templates.Section, len(views))
	for i, v := range views {
		sections[i] = section(v)
	}
	return templates.Page(title, sections)
}

// section describes one table and the toolbar its selection mode allows.
func section(v TableView) templates.Section {
	mode := v.SelectionMode()
	return templates.Section{
		Name:      v.Name(),
		Path:      TablePath(v.Name()),
		SelectAll: mode == table.SelectMultiple,
		Clear:     mode != table.SelectNone,
		Table:     v.Component(),
	}
}
