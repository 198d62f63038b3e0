package web

import (
	"fmt"
	"net/url"
	"sort"
	"sync"

	"github.com/JonMunkholm/structtable/internal/table"
	"github.com/a-h/templ"
)

// TablesPrefix is the path under which mounted tables are served.
const TablesPrefix = "/tables"

// TableView is the record-type independent surface of a mounted table.
type TableView interface {
	Name() string
	Component() templ.Component
	SortState() table.SortState
	ClickHeader(column string) (table.SortState, error)
	ClickRow(key string, in table.Interaction) error
	Contains(key string) bool
	SelectionMode() table.SelectionMode
	ToggleSelection(key string) bool
	SelectAll() bool
	ClearSelection() bool
	SelectedKeys() []string
	Detail(key string) (RowDetail, bool)
}

// RowDetail is the formatted content of one row.
type RowDetail struct {
	Table    string            `json:"table"`
	Key      string            `json:"key"`
	Index    int               `json:"index"`
	Selected bool              `json:"selected"`
	Fields   map[string]string `json:"fields"`
}

// View adapts a mounted table to TableView.
func View[R any](t *table.Table[R]) TableView {
	return view[R]{t}
}

type view[R any] struct {
	*table.Table[R]
}

func (v view[R]) Detail(key string) (RowDetail, bool) {
	row, ok := v.Row(key)
	if !ok {
		return RowDetail{}, false
	}
	fields := make(map[string]string, len(row.Cells))
	for _, c := range row.Cells {
		fields[c.Column] = c.Text
	}
	return RowDetail{
		Table:    v.Name(),
		Key:      row.Key,
		Index:    row.Index,
		Selected: row.Selected,
		Fields:   fields,
	}, true
}

// Catalog holds the mounted tables by name.
type Catalog struct {
	mu     sync.RWMutex
	tables map[string]TableView
}

// NewCatalog returns a catalog holding views.
func NewCatalog(views ...TableView) (*Catalog, error) {
	c := &Catalog{tables: make(map[string]TableView)}
	for _, v := range views {
		if err := c.Add(v); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add registers v under its name.
func (c *Catalog) Add(v TableView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.tables[v.Name()]; exists {
		return fmt.Errorf("table %q already mounted", v.Name())
	}
	c.tables[v.Name()] = v
	return nil
}

// Get returns the table named name, or ErrUnknownTable.
func (c *Catalog) Get(name string) (TableView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, name)
	}
	return v, nil
}

// Names returns the mounted table names, sorted.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.tables))
	for n := range c.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TablePath is the base path of the named table.
func TablePath(name string) string {
	return TablesPrefix + "/" + url.PathEscape(name)
}

// Actions returns the table.Actions wiring a table's markup to the routes
// of this server.
func Actions(name string) table.Actions {
	return actions{base: TablePath(name)}
}

type actions struct {
	base string
}

func (a actions) SortURL(column string) string {
	return a.base + "/sort/" + url.PathEscape(column)
}

func (a actions) RowClickURL(key string) string {
	return a.base + "/rows/" + url.PathEscape(key) + "/click"
}

func (a actions) SelectURL(key string) string {
	return a.base + "/rows/" + url.PathEscape(key) + "/select"
}
