package web

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/JonMunkholm/structtable/internal/logging"
	"github.com/JonMunkholm/structtable/internal/table"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
)

type ctxKey int

const tableKey ctxKey = iota

// tableContext resolves the {table} URL parameter.
func (s *Server) tableContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v, err := s.catalog.Get(chi.URLParam(r, "table"))
		if err != nil {
			respondError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tableKey, v)))
	})
}

func tableFrom(r *http.Request) TableView {
	return r.Context().Value(tableKey).(TableView)
}

// pathParam returns the unescaped URL parameter name.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// TableState is the JSON view of a table's interactive state.
type TableState struct {
	Table     string   `json:"table"`
	Column    string   `json:"sort_column,omitempty"`
	Direction string   `json:"sort_direction"`
	Selection string   `json:"selection_mode"`
	Selected  []string `json:"selected"`
}

func stateOf(v TableView) TableState {
	sort := v.SortState()
	selected := v.SelectedKeys()
	if selected == nil {
		selected = []string{}
	}
	return TableState{
		Table:     v.Name(),
		Column:    sort.Column,
		Direction: sort.Direction.String(),
		Selection: v.SelectionMode().String(),
		Selected:  selected,
	}
}

// respondTable answers an interaction with the re-rendered table, or its
// state for JSON clients.
func respondTable(w http.ResponseWriter, r *http.Request, v TableView) {
	if wantsJSON(r) {
		writeJSON(w, stateOf(v))
		return
	}
	render(w, r, http.StatusOK, v.Component())
}

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render failed", "path", r.URL.Path, "error", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var views []TableView
	for _, name := range s.catalog.Names() {
		v, err := s.catalog.Get(name)
		if err != nil {
			continue
		}
		views = append(views, v)
	}
	render(w, r, http.StatusOK, page("Tables", views))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"status": "ok", "tables": s.catalog.Names()})
}

// handleTable renders one table: the bare component for htmx requests,
// a full page otherwise.
func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	v := tableFrom(r)
	switch {
	case wantsJSON(r):
		writeJSON(w, stateOf(v))
	case isHTMX(r):
		render(w, r, http.StatusOK, v.Component())
	default:
		render(w, r, http.StatusOK, page(v.Name(), []TableView{v}))
	}
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	v := tableFrom(r)
	column := pathParam(r, "column")

	state, err := v.ClickHeader(column)
	if err != nil {
		respondError(w, r, err)
		return
	}
	logging.WithTable(r.Context(), v.Name()).Debug("sort changed",
		"column", column,
		"direction", state.Direction.String(),
	)
	respondTable(w, r, v)
}

func (s *Server) handleRowClick(w http.ResponseWriter, r *http.Request) {
	v := tableFrom(r)
	if err := v.ClickRow(pathParam(r, "key"), interactionFrom(r)); err != nil {
		respondError(w, r, err)
		return
	}
	respondTable(w, r, v)
}

func (s *Server) handleRowSelect(w http.ResponseWriter, r *http.Request) {
	v := tableFrom(r)
	key := pathParam(r, "key")

	if v.SelectionMode() == table.SelectNone {
		respondError(w, r, table.ErrSelectionOff)
		return
	}
	if !v.Contains(key) {
		respondError(w, r, table.ErrRowNotFound)
		return
	}
	v.ToggleSelection(key)
	respondTable(w, r, v)
}

func (s *Server) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	v := tableFrom(r)
	if v.SelectionMode() != table.SelectMultiple {
		respondError(w, r, table.ErrSelectionOff)
		return
	}
	v.SelectAll()
	respondTable(w, r, v)
}

func (s *Server) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	v := tableFrom(r)
	v.ClearSelection()
	respondTable(w, r, v)
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, stateOf(tableFrom(r)))
}

func (s *Server) handleRowDetail(w http.ResponseWriter, r *http.Request) {
	v := tableFrom(r)
	detail, ok := v.Detail(pathParam(r, "key"))
	if !ok {
		respondError(w, r, table.ErrRowNotFound)
		return
	}
	writeJSON(w, detail)
}

// interactionFrom reads modifier keys posted by the page script. Missing or
// malformed values count as not pressed.
func interactionFrom(r *http.Request) table.Interaction {
	flag := func(name string) bool {
		b, _ := strconv.ParseBool(r.FormValue(name))
		return b
	}
	source := r.FormValue("source")
	if source == "" {
		source = "http"
	}
	return table.Interaction{
		Source: source,
		Shift:  flag("shift"),
		Ctrl:   flag("ctrl"),
		Alt:    flag("alt"),
		Meta:   flag("meta"),
		At:     time.Now(),
	}
}
