package books

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `ID,Title,Author,Publish_Date,Description,Price,Rating,Notes
3b5d8a52-1f0e-4c8e-9d43-6a1f2f4c0a01,The Great Gatsby,F. Scott Fitzgerald,1925-04-10,Jazz Age,$10.99,4,
,"Emma",Jane Austen,12/23/1815,,,5,first edition
`

func TestParseCSV(t *testing.T) {
	books, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, books, 2)

	gatsby := books[0]
	assert.Equal(t, "3b5d8a52-1f0e-4c8e-9d43-6a1f2f4c0a01", gatsby.ID.String())
	assert.Equal(t, "The Great Gatsby", gatsby.Title)
	assert.Equal(t, 1925, gatsby.PublishDate.Time.Year())
	assert.True(t, gatsby.Description.Valid)
	assert.True(t, gatsby.Price.Valid)
	assert.Equal(t, 4, gatsby.Rating)

	emma := books[1]
	assert.NotEqual(t, gatsby.ID, emma.ID)
	assert.Equal(t, "Emma", emma.Title)
	assert.Equal(t, 1815, emma.PublishDate.Time.Year())
	assert.False(t, emma.Description.Valid)
	assert.False(t, emma.Price.Valid)
	assert.Equal(t, "first edition", emma.Notes)
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "missing title column", input: "id,author\n,x\n", wantErr: "missing required column"},
		{name: "empty title", input: "title,author\n,Orwell\n", wantErr: "row 2: required field title is empty"},
		{name: "bad rating", input: "title,rating\nEmma,9\n", wantErr: "row 2: rating 9 out of range"},
		{name: "bad date", input: "title,publish_date\nEmma,someday\n", wantErr: `row 2: invalid date "someday"`},
		{name: "bad id", input: "id,title\nxyz,Emma\n", wantErr: "row 2: invalid id"},
		{
			name:    "duplicate id",
			input:   "id,title\n3b5d8a52-1f0e-4c8e-9d43-6a1f2f4c0a01,A\n3b5d8a52-1f0e-4c8e-9d43-6a1f2f4c0a01,B\n",
			wantErr: "row 3: duplicate key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := ParseCSV(strings.NewReader("id,author\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestParseCSV_Empty(t *testing.T) {
	books, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	books, err := FileLoader{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, books, 2)

	_, err = FileLoader{Path: filepath.Join(t.TempDir(), "missing.csv")}.Load(context.Background())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = FileLoader{Path: path}.Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileLoader_StableKeysAcrossReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "books.csv")
	require.NoError(t, os.WriteFile(path, []byte("title,author\nDune,Herbert\nEmma,Jane Austen\n"), 0o600))

	loader := FileLoader{Path: path}
	first, err := loader.Load(context.Background())
	require.NoError(t, err)
	second, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID, "key of %s changed between reloads", first[i].Title)
	}
	assert.NotEqual(t, first[0].ID, first[1].ID)
	assert.Equal(t, DeriveID("Dune", "Herbert"), first[0].ID)
}

func TestParseCSV_DerivedDuplicate(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("title,author\nDune,Herbert\nDune,Herbert\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3: duplicate key")
}

func TestSeedLoader(t *testing.T) {
	books, err := SeedLoader{}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Seed(), books)

	ids := make(map[string]bool)
	for _, b := range books {
		assert.False(t, ids[b.ID.String()], "duplicate seed id %s", b.ID)
		ids[b.ID.String()] = true
	}
}
