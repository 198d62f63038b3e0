package table

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/a-h/templ"
)

// ChangeReason says which mutation produced a Change.
type ChangeReason string

const (
	ChangeSort      ChangeReason = "sort"
	ChangeSelection ChangeReason = "selection"
	ChangeData      ChangeReason = "data"
	ChangeSource    ChangeReason = "source"
)

// Change is sent to table observers after a mutation has been fully applied.
type Change struct {
	Reason     ChangeReason
	Generation uint64 // Source generation, for data changes
	Sort       SortState
}

// Options configure a mounted table.
type Options struct {
	// ID is written as the id attribute of the <table> element.
	ID string

	Selection SelectionMode

	// SelectOnClick toggles a row's selection when it is clicked.
	SelectOnClick bool

	Handlers Handlers
	Actions  Actions
}

// Table is a mounted table: a schema bound to a data source, its sort and
// selection state, and the host's callbacks.
//
// Mutations are serialized by the table's mutex. A render pass captures the
// ordered snapshot, the sort state and a copy of the selection under the
// mutex and runs renderers and writes after releasing it, so renderers may
// call back into the table.
type Table[R any] struct {
	schema *Schema[R]
	opts   Options
	bridge *Bridge

	mu        sync.Mutex
	src       *Source[R]
	unsubSrc  func()
	sort      *SortController[R]
	selection *Selection

	// Ordered view cache, valid for (orderedGen, orderedSort).
	ordered     []R
	orderedGen  uint64
	orderedSort SortState
	cached      bool

	obsMu     sync.Mutex
	observers map[int]chan Change
	nextObs   int
}

// Mount binds schema to src and returns the renderable table.
func Mount[R any](schema *Schema[R], src *Source[R], opts Options) *Table[R] {
	t := &Table[R]{
		schema:    schema,
		opts:      opts,
		bridge:    NewBridge(opts.Handlers),
		sort:      NewSortController(schema),
		selection: NewSelection(opts.Selection),
		observers: make(map[int]chan Change),
	}
	t.attach(src)
	return t
}

// Schema returns the table's schema.
func (t *Table[R]) Schema() *Schema[R] { return t.schema }

// Name returns the record type name.
func (t *Table[R]) Name() string { return t.schema.name }

// Component returns the opaque renderable for the host to embed. Each
// Render call is one complete render pass over the latest snapshot.
func (t *Table[R]) Component() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := t.capture()
		rows := t.buildRows(p)

		markup := make([]templ.Component, len(rows))
		for i, r := range rows {
			markup[i] = r.Markup
		}
		doc := tableDocument(t.opts.ID, t.schema.name, len(rows),
			tableHeader(headerViews(t.schema, p.sort, t.opts.Actions)), tableBody(markup))
		if err := doc.Render(ctx, w); err != nil {
			return fmt.Errorf("render table %s: %w", t.schema.name, err)
		}
		return nil
	})
}

// Rows runs a render pass and returns the row view models in display order.
func (t *Table[R]) Rows() []RowViewModel[R] {
	return t.buildRows(t.capture())
}

// Row returns the view model of the row with the given key.
func (t *Table[R]) Row(key string) (RowViewModel[R], bool) {
	p := t.capture()
	for i, rec := range p.ordered {
		if t.schema.KeyOf(rec) == key {
			return buildRow(t.schema, rec, i, p.selection, t.dispatchClick, t.opts.Actions), true
		}
	}
	return RowViewModel[R]{}, false
}

// Contains reports whether the current snapshot has a row with key.
func (t *Table[R]) Contains(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	recs, _ := t.src.Snapshot()
	for _, rec := range recs {
		if t.schema.KeyOf(rec) == key {
			return true
		}
	}
	return false
}

// SortState returns the current sort state.
func (t *Table[R]) SortState() SortState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sort.State()
}

// ClickHeader handles a click on a column header. Clicks on non-sortable
// columns change nothing.
func (t *Table[R]) ClickHeader(column string) (SortState, error) {
	t.mu.Lock()
	if _, ok := t.schema.Lookup(column); !ok {
		t.mu.Unlock()
		return SortState{}, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
	changed := t.sort.Activate(column)
	state := t.sort.State()
	t.mu.Unlock()

	if changed {
		t.notify(Change{Reason: ChangeSort, Sort: state})
	}
	return state, nil
}

// SetSort restores a sort state, e.g. from a URL.
func (t *Table[R]) SetSort(state SortState) SortState {
	t.mu.Lock()
	changed := t.sort.Set(state)
	state = t.sort.State()
	t.mu.Unlock()

	if changed {
		t.notify(Change{Reason: ChangeSort, Sort: state})
	}
	return state
}

// ClickRow routes a click on the row with key to its dispatcher.
func (t *Table[R]) ClickRow(key string, in Interaction) error {
	row, ok := t.Row(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRowNotFound, key)
	}
	row.Click(in)
	return nil
}

// dispatchClick is the bound click dispatcher of every row.
func (t *Table[R]) dispatchClick(meta RowMeta, in Interaction) {
	t.bridge.EmitRowClick(RowClickEvent{
		Table:       t.schema.name,
		Key:         meta.Key,
		Index:       meta.Index,
		Interaction: in,
	})
	if t.opts.SelectOnClick {
		t.ToggleSelection(meta.Key)
	}
}

// SelectionMode returns the table's selection mode.
func (t *Table[R]) SelectionMode() SelectionMode { return t.opts.Selection }

// IsSelected reports whether key is selected.
func (t *Table[R]) IsSelected(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selection.IsSelected(key)
}

// SelectedKeys returns the selected keys, sorted.
func (t *Table[R]) SelectedKeys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.selection.Keys()
}

// ToggleSelection flips key's membership. Reports whether anything changed.
func (t *Table[R]) ToggleSelection(key string) bool {
	return t.mutateSelection(func(s *Selection) SelectionDelta { return s.Toggle(key) })
}

// BulkSelect adds keys to the selection.
func (t *Table[R]) BulkSelect(keys ...string) bool {
	return t.mutateSelection(func(s *Selection) SelectionDelta { return s.BulkSelect(keys...) })
}

// SelectAll selects every record of the current snapshot.
func (t *Table[R]) SelectAll() bool {
	return t.mutateSelection(func(s *Selection) SelectionDelta {
		recs := t.orderedLocked()
		keys := make([]string, len(recs))
		for i, rec := range recs {
			keys[i] = t.schema.KeyOf(rec)
		}
		return s.BulkSelect(keys...)
	})
}

// ClearSelection empties the selection.
func (t *Table[R]) ClearSelection() bool {
	return t.mutateSelection(func(s *Selection) SelectionDelta { return s.Clear() })
}

// mutateSelection applies fn under the table lock and emits the change
// after the lock is released.
func (t *Table[R]) mutateSelection(fn func(*Selection) SelectionDelta) bool {
	t.mu.Lock()
	d := fn(t.selection)
	selected := t.selection.Keys()
	t.mu.Unlock()

	if d.Empty() {
		return false
	}
	t.bridge.EmitSelection(SelectionChangeEvent{
		Table:    t.schema.name,
		Selected: selected,
		Added:    d.Added,
		Removed:  d.Removed,
	})
	t.notify(Change{Reason: ChangeSelection})
	return true
}

// ReplaceSource swaps the data source. Sort and selection are reset.
func (t *Table[R]) ReplaceSource(src *Source[R]) {
	t.mu.Lock()
	if t.unsubSrc != nil {
		t.unsubSrc()
	}
	t.sort.Reset()
	d := t.selection.Clear()
	t.cached = false
	t.mu.Unlock()

	t.attach(src)

	if !d.Empty() {
		t.bridge.EmitSelection(SelectionChangeEvent{
			Table:   t.schema.name,
			Removed: d.Removed,
		})
	}
	t.notify(Change{Reason: ChangeSource, Generation: src.Generation()})
}

// Source returns the current data source.
func (t *Table[R]) Source() *Source[R] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.src
}

func (t *Table[R]) attach(src *Source[R]) {
	unsub := src.Subscribe(func(gen uint64) {
		t.notify(Change{Reason: ChangeData, Generation: gen})
	})

	t.mu.Lock()
	t.src = src
	t.unsubSrc = unsub
	t.cached = false
	t.mu.Unlock()
}

// Subscribe returns a channel receiving a Change after every applied
// mutation, and a function that stops the subscription.
func (t *Table[R]) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 16)

	t.obsMu.Lock()
	id := t.nextObs
	t.nextObs++
	t.observers[id] = ch
	t.obsMu.Unlock()

	return ch, func() {
		t.obsMu.Lock()
		defer t.obsMu.Unlock()
		if _, ok := t.observers[id]; ok {
			delete(t.observers, id)
			close(ch)
		}
	}
}

// Events returns a channel of row-click and selection events.
func (t *Table[R]) Events(buffer int) (<-chan Event, func()) {
	return t.bridge.Subscribe(buffer)
}

// Close detaches the source and closes all subscriptions.
func (t *Table[R]) Close() {
	t.mu.Lock()
	if t.unsubSrc != nil {
		t.unsubSrc()
		t.unsubSrc = nil
	}
	t.mu.Unlock()

	t.obsMu.Lock()
	for id, ch := range t.observers {
		close(ch)
		delete(t.observers, id)
	}
	t.obsMu.Unlock()

	t.bridge.close()
}

func (t *Table[R]) notify(c Change) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()

	for _, ch := range t.observers {
		select {
		case ch <- c:
		default:
			// Observer is slow, skip this change
		}
	}
}

// orderedLocked returns the sorted snapshot, recomputing it when the source
// generation or sort state moved. A computation overtaken by a newer write
// is discarded and redone against the newer snapshot.
func (t *Table[R]) orderedLocked() []R {
	for {
		recs, gen := t.src.Snapshot()
		state := t.sort.State()
		if t.cached && gen == t.orderedGen && state == t.orderedSort {
			return t.ordered
		}

		sorted := sortRecords(t.schema, state, cloneRecords(recs))
		if t.src.Generation() != gen {
			continue
		}

		t.ordered = sorted
		t.orderedGen = gen
		t.orderedSort = state
		t.cached = true
		return sorted
	}
}

// renderPass is the table state one render pass reads.
type renderPass[R any] struct {
	ordered   []R
	sort      SortState
	selection *Selection
}

// capture takes a consistent copy of the state a render pass needs. The
// ordered slice is never modified once cached, so it is shared.
func (t *Table[R]) capture() renderPass[R] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return renderPass[R]{
		ordered:   t.orderedLocked(),
		sort:      t.sort.State(),
		selection: t.selection.Clone(),
	}
}

func (t *Table[R]) buildRows(p renderPass[R]) []RowViewModel[R] {
	rows := make([]RowViewModel[R], len(p.ordered))
	for i, rec := range p.ordered {
		rows[i] = buildRow(t.schema, rec, i, p.selection, t.dispatchClick, t.opts.Actions)
	}
	return rows
}
