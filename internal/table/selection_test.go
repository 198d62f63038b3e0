package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection_ToggleTwiceRestores(t *testing.T) {
	s := NewSelection(SelectMultiple)
	s.BulkSelect("a")

	for _, key := range []string{"a", "b"} {
		before := s.IsSelected(key)
		s.Toggle(key)
		assert.NotEqual(t, before, s.IsSelected(key), "first toggle of %s", key)
		s.Toggle(key)
		assert.Equal(t, before, s.IsSelected(key), "second toggle of %s", key)
	}
}

func TestSelection_Delta(t *testing.T) {
	s := NewSelection(SelectMultiple)

	d := s.Toggle("a")
	assert.Equal(t, []string{"a"}, d.Added)
	assert.Empty(t, d.Removed)

	d = s.BulkSelect("a", "b", "c")
	assert.Equal(t, []string{"b", "c"}, d.Added)

	d = s.BulkSelect("a")
	assert.True(t, d.Empty())

	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())

	d = s.Clear()
	assert.Equal(t, []string{"a", "b", "c"}, d.Removed)
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.Clear().Empty())
}

func TestSelection_SingleMode(t *testing.T) {
	s := NewSelection(SelectSingle)

	s.Toggle("a")
	d := s.Toggle("b")
	assert.Equal(t, []string{"b"}, d.Added)
	assert.Equal(t, []string{"a"}, d.Removed)
	assert.Equal(t, []string{"b"}, s.Keys())

	s.BulkSelect("c", "d")
	assert.Equal(t, []string{"d"}, s.Keys())

	s.Toggle("d")
	assert.Equal(t, 0, s.Len())
}

func TestSelection_NoneMode(t *testing.T) {
	s := NewSelection(SelectNone)

	assert.True(t, s.Toggle("a").Empty())
	assert.True(t, s.BulkSelect("a", "b").Empty())
	assert.Equal(t, 0, s.Len())
}

func TestSelection_SurvivesSort(t *testing.T) {
	schema := mustSchema(t)
	books := []testBook{
		{ID: "k1", Title: "Zeta"},
		{ID: "k2", Title: "Alpha"},
		{ID: "k3", Title: "Mu"},
	}
	tbl := Mount(schema, NewSource(books), Options{})
	defer tbl.Close()

	require.True(t, tbl.ToggleSelection("k1"))

	_, err := tbl.ClickHeader("title")
	require.NoError(t, err)

	assert.True(t, tbl.IsSelected("k1"))
	rows := tbl.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "k1", rows[2].Key)
	assert.True(t, rows[2].Selected)
	assert.False(t, rows[0].Selected)
}

func TestParseSelectionMode(t *testing.T) {
	tests := []struct {
		in      string
		want    SelectionMode
		wantErr bool
	}{
		{in: "", want: SelectMultiple},
		{in: "multiple", want: SelectMultiple},
		{in: "Single", want: SelectSingle},
		{in: "none", want: SelectNone},
		{in: "bogus", want: SelectMultiple, wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseSelectionMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
		} else {
			assert.NoError(t, err, tt.in)
		}
		assert.Equal(t, tt.want, got, tt.in)
	}
}
