package table

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_SnapshotIsolation(t *testing.T) {
	input := []ratedBook{{ID: "a"}, {ID: "b"}}
	src := NewSource(input)

	input[0].ID = "mutated"

	recs, gen := src.Snapshot()
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, "a", recs[0].ID)

	src.Set([]ratedBook{{ID: "c"}})
	assert.Equal(t, "a", recs[0].ID, "old snapshot unchanged")
	assert.Equal(t, uint64(2), src.Generation())
	assert.Equal(t, 1, src.Len())
}

func TestSource_Update(t *testing.T) {
	src := NewSource([]ratedBook{{ID: "a"}})
	before, _ := src.Snapshot()

	src.Update(func(recs []ratedBook) []ratedBook {
		recs[0].Title = "changed"
		return append(recs, ratedBook{ID: "b"})
	})

	after, gen := src.Snapshot()
	assert.Equal(t, uint64(2), gen)
	require.Len(t, after, 2)
	assert.Equal(t, "changed", after[0].Title)
	assert.Equal(t, "", before[0].Title)
}

func TestSource_Subscribe(t *testing.T) {
	src := NewSource[ratedBook](nil)

	var gens []uint64
	unsub := src.Subscribe(func(gen uint64) { gens = append(gens, gen) })

	src.Set(nil)
	src.Set(nil)
	unsub()
	src.Set(nil)

	assert.Equal(t, []uint64{2, 3}, gens)
}

func TestSource_ConcurrentWriters(t *testing.T) {
	src := NewSource[ratedBook](nil)
	tbl := Mount(ratedSchema(t), src, Options{})
	defer tbl.Close()

	tbl.ClickHeader("title")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				src.Update(func(recs []ratedBook) []ratedBook {
					return append(recs, ratedBook{ID: string(rune('a'+i)) + string(rune('0'+j%10)), Title: "t"})
				})
				_ = tbl.Rows()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(401), src.Generation())
	assert.Len(t, tbl.Rows(), 400)
}
