package table

import "sync"

// RowClickEvent is delivered once per row click.
type RowClickEvent struct {
	Table       string
	Key         string
	Index       int
	Interaction Interaction
}

// SelectionChangeEvent is delivered after the selection membership changed.
type SelectionChangeEvent struct {
	Table    string
	Selected []string // Full selection after the change, sorted
	Added    []string
	Removed  []string
}

// Handlers are the host callbacks of a mounted table. Either may be nil.
type Handlers struct {
	OnRowClick        func(RowClickEvent)
	OnSelectionChange func(SelectionChangeEvent)
}

// Event is the value sent to Bridge subscribers. Exactly one field is set.
type Event struct {
	RowClick  *RowClickEvent
	Selection *SelectionChangeEvent
}

// Bridge delivers table events to the host callbacks and to channel
// subscribers. Slow subscribers miss events rather than block the table.
type Bridge struct {
	handlers Handlers

	mu        sync.Mutex
	listeners map[int]chan Event
	nextID    int
}

// NewBridge returns a bridge calling h.
func NewBridge(h Handlers) *Bridge {
	return &Bridge{handlers: h, listeners: make(map[int]chan Event)}
}

// Subscribe returns a channel of events and a function that closes it.
func (b *Bridge) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.listeners[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.listeners[id]; ok {
				delete(b.listeners, id)
				close(ch)
			}
		})
	}
}

// EmitRowClick delivers a row click.
func (b *Bridge) EmitRowClick(ev RowClickEvent) {
	if b.handlers.OnRowClick != nil {
		b.handlers.OnRowClick(ev)
	}
	b.broadcast(Event{RowClick: &ev})
}

// EmitSelection delivers a selection change.
func (b *Bridge) EmitSelection(ev SelectionChangeEvent) {
	if b.handlers.OnSelectionChange != nil {
		b.handlers.OnSelectionChange(ev)
	}
	b.broadcast(Event{Selection: &ev})
}

func (b *Bridge) broadcast(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.listeners {
		select {
		case ch <- ev:
		default:
			// Listener is slow, skip this event
		}
	}
}

// close closes every subscriber channel.
func (b *Bridge) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.listeners {
		close(ch)
		delete(b.listeners, id)
	}
}
