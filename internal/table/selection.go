package table

import (
	"fmt"
	"maps"
	"sort"
	"strings"
)

// SelectionMode controls how many rows can be selected.
type SelectionMode int

const (
	SelectMultiple SelectionMode = iota
	SelectSingle
	SelectNone
)

func (m SelectionMode) String() string {
	switch m {
	case SelectSingle:
		return "single"
	case SelectNone:
		return "none"
	default:
		return "multiple"
	}
}

// ParseSelectionMode parses "multiple", "single" or "none".
func ParseSelectionMode(s string) (SelectionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "multiple", "multi":
		return SelectMultiple, nil
	case "single":
		return SelectSingle, nil
	case "none", "off":
		return SelectNone, nil
	default:
		return SelectMultiple, fmt.Errorf("invalid selection mode %q", s)
	}
}

// SelectionDelta lists keys whose membership changed in one mutation.
type SelectionDelta struct {
	Added   []string
	Removed []string
}

// Empty reports whether nothing changed.
func (d SelectionDelta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Selection is the set of selected record keys. It is keyed by record
// identity, so it is unaffected by sorting.
type Selection struct {
	mode SelectionMode
	keys map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection(mode SelectionMode) *Selection {
	return &Selection{mode: mode, keys: make(map[string]struct{})}
}

// Clone returns an independent copy of the selection.
func (s *Selection) Clone() *Selection {
	return &Selection{mode: s.mode, keys: maps.Clone(s.keys)}
}

// Mode returns the selection mode.
func (s *Selection) Mode() SelectionMode { return s.mode }

// IsSelected reports whether key is selected.
func (s *Selection) IsSelected(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Len returns the number of selected keys.
func (s *Selection) Len() int { return len(s.keys) }

// Keys returns the selected keys in sorted order.
func (s *Selection) Keys() []string {
	out := make([]string, 0, len(s.keys))
	for k := range s.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Toggle flips the membership of key. In single mode selecting a key
// deselects the previous one.
func (s *Selection) Toggle(key string) SelectionDelta {
	if s.mode == SelectNone {
		return SelectionDelta{}
	}
	if s.IsSelected(key) {
		delete(s.keys, key)
		return SelectionDelta{Removed: []string{key}}
	}
	var d SelectionDelta
	if s.mode == SelectSingle {
		d.Removed = s.Keys()
		clear(s.keys)
	}
	s.keys[key] = struct{}{}
	d.Added = []string{key}
	return d
}

// BulkSelect adds keys to the selection. In single mode only the last key
// is kept.
func (s *Selection) BulkSelect(keys ...string) SelectionDelta {
	if s.mode == SelectNone || len(keys) == 0 {
		return SelectionDelta{}
	}
	if s.mode == SelectSingle {
		last := keys[len(keys)-1]
		if s.IsSelected(last) && len(s.keys) == 1 {
			return SelectionDelta{}
		}
		return s.Toggle(last)
	}

	var d SelectionDelta
	for _, k := range keys {
		if s.IsSelected(k) {
			continue
		}
		s.keys[k] = struct{}{}
		d.Added = append(d.Added, k)
	}
	return d
}

// Clear empties the selection.
func (s *Selection) Clear() SelectionDelta {
	if len(s.keys) == 0 {
		return SelectionDelta{}
	}
	d := SelectionDelta{Removed: s.Keys()}
	clear(s.keys)
	return d
}
