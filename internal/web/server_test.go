package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/structtable/internal/books"
	"github.com/JonMunkholm/structtable/internal/config"
	"github.com/JonMunkholm/structtable/internal/table"
	"github.com/JonMunkholm/structtable/internal/web/templates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	gatsbyKey  = books.Seed()[0].ID.String()
	belovedKey = books.Seed()[5].ID.String()
)

func testServer(t *testing.T, mode table.SelectionMode) (*Server, *table.Table[books.Book]) {
	t.Helper()

	cfg, err := config.LoadFrom(func(string) string { return "" })
	require.NoError(t, err)
	cfg.Rate.Enabled = false

	tbl := table.Mount(books.Schema(), table.NewSource(books.Seed()), table.Options{
		ID:        "books",
		Selection: mode,
		Actions:   Actions(books.TableName),
	})
	t.Cleanup(tbl.Close)

	catalog, err := NewCatalog(View(tbl))
	require.NoError(t, err)

	s := NewServer(cfg, catalog)
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s, tbl
}

type reqOption func(*http.Request)

func asJSON(r *http.Request) { r.Header.Set("Accept", "application/json") }
func asHTMX(r *http.Request) { r.Header.Set("HX-Request", "true") }

func do(s *Server, method, target, body string, opts ...reqOption) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, o := range opts {
		o(req)
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestIndex(t *testing.T) {
	s, _ := testServer(t, table.SelectMultiple)

	rec := do(s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	html := rec.Body.String()
	assert.Contains(t, html, `<script src="`+templates.HTMXScript+`"></script>`)
	assert.Contains(t, html, `<table class="struct-table" data-table="books" data-rows="6" id="books">`)
	assert.Contains(t, html, `hx-post="/tables/books/select-all"`)
	assert.Contains(t, html, `<div id="errors"`)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestTable_Views(t *testing.T) {
	s, _ := testServer(t, table.SelectSingle)

	rec := do(s, http.MethodGet, "/tables/books", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "<!doctype html>"))
	assert.NotContains(t, rec.Body.String(), "Select all")
	assert.Contains(t, rec.Body.String(), "Clear selection")

	rec = do(s, http.MethodGet, "/tables/books", "", asHTMX)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), `<table class="struct-table"`))

	rec = do(s, http.MethodGet, "/tables/books", "", asJSON)
	state := decode[TableState](t, rec)
	assert.Equal(t, "books", state.Table)
	assert.Equal(t, "single", state.Selection)
	assert.Equal(t, "none", state.Direction)
	assert.Empty(t, state.Selected)
}

func TestUnknownTable(t *testing.T) {
	s, _ := testServer(t, table.SelectMultiple)

	rec := do(s, http.MethodGet, "/tables/authors", "", asJSON)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TBL001", decode[ErrorResponse](t, rec).Code)
}

func TestSort(t *testing.T) {
	s, tbl := testServer(t, table.SelectMultiple)

	rec := do(s, http.MethodPost, "/tables/books/sort/title", "", asHTMX)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, table.SortState{Column: "title", Direction: table.DirAscending}, tbl.SortState())

	html := rec.Body.String()
	assert.Contains(t, html, `<th data-column="title" class="sortable" aria-sort="ascending">`)
	assert.Less(t, strings.Index(html, "Beloved"), strings.Index(html, "Ulysses"))

	rec = do(s, http.MethodPost, "/tables/books/sort/title", "", asJSON)
	assert.Equal(t, "desc", decode[TableState](t, rec).Direction)

	rec = do(s, http.MethodPost, "/tables/books/sort/title", "", asJSON)
	state := decode[TableState](t, rec)
	assert.Equal(t, "none", state.Direction)
	assert.Empty(t, state.Column)
}

func TestSort_Errors(t *testing.T) {
	s, tbl := testServer(t, table.SelectMultiple)

	rec := do(s, http.MethodPost, "/tables/books/sort/isbn", "", asJSON)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "TBL003", decode[ErrorResponse](t, rec).Code)

	rec = do(s, http.MethodPost, "/tables/books/sort/description", "", asJSON)
	assert.Equal(t, http.StatusOK, rec.Code, "non-sortable columns ignore clicks")
	assert.False(t, tbl.SortState().Active())
}

func TestRowClick(t *testing.T) {
	s, tbl := testServer(t, table.SelectMultiple)
	events, stop := tbl.Events(4)
	defer stop()

	do(s, http.MethodPost, "/tables/books/sort/title", "")

	rec := do(s, http.MethodPost, "/tables/books/rows/"+gatsbyKey+"/click", "shift=true&source=mouse", asHTMX)
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case ev := <-events:
		require.NotNil(t, ev.RowClick)
		assert.Equal(t, gatsbyKey, ev.RowClick.Key)
		assert.Equal(t, 3, ev.RowClick.Index)
		assert.Equal(t, "books", ev.RowClick.Table)
		assert.Equal(t, "mouse", ev.RowClick.Interaction.Source)
		assert.True(t, ev.RowClick.Interaction.Shift)
		assert.False(t, ev.RowClick.Interaction.Ctrl)
	case <-time.After(time.Second):
		t.Fatal("no row click event")
	}
	assert.Empty(t, tbl.SelectedKeys(), "clicks do not select without select-on-click")
}

func TestRowClick_UnknownRow(t *testing.T) {
	s, _ := testServer(t, table.SelectMultiple)

	rec := do(s, http.MethodPost, "/tables/books/rows/missing/click", "", asJSON)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TBL002", decode[ErrorResponse](t, rec).Code)

	rec = do(s, http.MethodPost, "/tables/books/rows/missing/click", "", asHTMX)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "#errors", rec.Header().Get("HX-Retarget"))
	assert.Contains(t, rec.Body.String(), `data-code="TBL002"`)

	rec = do(s, http.MethodPost, "/tables/books/rows/missing/click", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Row not found (TBL002)")
}

func TestRowSelect(t *testing.T) {
	s, tbl := testServer(t, table.SelectMultiple)

	rec := do(s, http.MethodPost, "/tables/books/rows/"+gatsbyKey+"/select", "", asJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{gatsbyKey}, decode[TableState](t, rec).Selected)

	rec = do(s, http.MethodPost, "/tables/books/rows/"+belovedKey+"/select", "", asHTMX)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-key="`+belovedKey+`" data-index="5" aria-selected="true"`)
	assert.ElementsMatch(t, []string{gatsbyKey, belovedKey}, tbl.SelectedKeys())

	rec = do(s, http.MethodPost, "/tables/books/rows/"+gatsbyKey+"/select", "", asJSON)
	assert.Equal(t, []string{belovedKey}, decode[TableState](t, rec).Selected)

	rec = do(s, http.MethodPost, "/tables/books/rows/missing/select", "", asJSON)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSelectAllAndClear(t *testing.T) {
	s, _ := testServer(t, table.SelectMultiple)

	rec := do(s, http.MethodPost, "/tables/books/select-all", "", asJSON)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodGet, "/tables/books/selection", "")
	assert.Len(t, decode[TableState](t, rec).Selected, 6)

	rec = do(s, http.MethodPost, "/tables/books/clear", "", asJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[TableState](t, rec).Selected)
}

func TestSelection_Disabled(t *testing.T) {
	s, tbl := testServer(t, table.SelectNone)

	for _, target := range []string{
		"/tables/books/rows/" + gatsbyKey + "/select",
		"/tables/books/select-all",
	} {
		rec := do(s, http.MethodPost, target, "", asJSON)
		assert.Equal(t, http.StatusConflict, rec.Code, target)
		assert.Equal(t, "TBL004", decode[ErrorResponse](t, rec).Code)
	}
	assert.Empty(t, tbl.SelectedKeys())

	rec := do(s, http.MethodGet, "/tables/books", "")
	assert.NotContains(t, rec.Body.String(), "Clear selection")
}

func TestSelectAll_SingleMode(t *testing.T) {
	s, _ := testServer(t, table.SelectSingle)

	rec := do(s, http.MethodPost, "/tables/books/select-all", "", asJSON)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRowDetail(t *testing.T) {
	s, _ := testServer(t, table.SelectMultiple)

	rec := do(s, http.MethodGet, "/tables/books/rows/"+gatsbyKey, "")
	require.Equal(t, http.StatusOK, rec.Code)

	detail := decode[RowDetail](t, rec)
	assert.Equal(t, "books", detail.Table)
	assert.Equal(t, gatsbyKey, detail.Key)
	assert.Equal(t, "The Great Gatsby", detail.Fields["title"])
	assert.Equal(t, "10.99", detail.Fields["price"])
	assert.NotContains(t, detail.Fields, "notes")

	rec = do(s, http.MethodGet, "/tables/books/rows/missing", "", asJSON)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	s, _ := testServer(t, table.SelectMultiple)

	rec := do(s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tables":["books"]`)
}

func TestCatalog_DuplicateName(t *testing.T) {
	tbl := table.Mount(books.Schema(), table.NewSource(books.Seed()), table.Options{})
	defer tbl.Close()

	_, err := NewCatalog(View(tbl), View(tbl))
	assert.Error(t, err)
}

func TestActions_EscapesKeys(t *testing.T) {
	a := Actions("books")
	assert.Equal(t, "/tables/books/sort/title", a.SortURL("title"))
	assert.Equal(t, "/tables/books/rows/a%2Fb/click", a.RowClickURL("a/b"))
	assert.Equal(t, "/tables/books/rows/a%20b/select", a.SelectURL("a b"))
}

func TestMapError(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{ErrUnknownTable, "TBL001"},
		{table.ErrRowNotFound, "TBL002"},
		{table.ErrUnknownColumn, "TBL003"},
		{table.ErrSelectionOff, "TBL004"},
		{context.DeadlineExceeded, "REQ002"},
		{errRateLimited, "RATE001"},
		{assert.AnError, "ERR000"},
		{nil, "ERR000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, MapError(tt.err).Code, "%v", tt.err)
	}
}

func TestRateLimiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := newRateLimiter(ctx, 2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("1.1.1.1"))
	assert.False(t, rl.allow("1.1.1.1"))
	assert.True(t, rl.allow("2.2.2.2"), "budgets are per IP")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.allow("1.1.1.1"), "budget resets after the window")

	now = now.Add(3 * time.Minute)
	rl.evict()
	rl.mu.Lock()
	assert.Empty(t, rl.visitors)
	rl.mu.Unlock()
}

func TestRateLimiter_Middleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := newRateLimiter(ctx, 1, time.Minute)
	h := rl.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}
