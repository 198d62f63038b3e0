package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JonMunkholm/structtable/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresher_RefreshOnce(t *testing.T) {
	src := table.NewSource([]string{"old"})
	fail := false
	loader := LoaderFunc[string](func(ctx context.Context) ([]string, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return []string{"a", "b"}, nil
	})

	r := NewRefresher[string]("letters", loader, src, time.Minute)

	require.NoError(t, r.RefreshOnce(context.Background()))
	recs, gen := src.Snapshot()
	assert.Equal(t, []string{"a", "b"}, recs)
	assert.Equal(t, uint64(2), gen)

	fail = true
	assert.Error(t, r.RefreshOnce(context.Background()))
	recs, gen = src.Snapshot()
	assert.Equal(t, []string{"a", "b"}, recs, "failed load keeps previous records")
	assert.Equal(t, uint64(2), gen)

	loads, failures := r.Stats()
	assert.Equal(t, int64(1), loads)
	assert.Equal(t, int64(1), failures)
}

func TestRefresher_RunTicks(t *testing.T) {
	src := table.NewSource[int](nil)
	var calls atomic.Int64
	loader := LoaderFunc[int](func(ctx context.Context) ([]int, error) {
		n := calls.Add(1)
		return []int{int(n)}, nil
	})

	r := NewRefresher[int]("ticks", loader, src, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop after cancel")
	}

	recs, _ := src.Snapshot()
	require.Len(t, recs, 1)
	assert.GreaterOrEqual(t, recs[0], 3)
}

func TestRefresher_NoInterval(t *testing.T) {
	src := table.NewSource[int](nil)
	var calls atomic.Int64
	loader := LoaderFunc[int](func(ctx context.Context) ([]int, error) {
		calls.Add(1)
		return []int{1}, nil
	})

	NewRefresher[int]("once", loader, src, 0).Run(context.Background())

	assert.Equal(t, int64(0), calls.Load())
	assert.Equal(t, 0, src.Len())
}

func TestRefresher_RunWaitsForFirstTick(t *testing.T) {
	src := table.NewSource[int](nil)
	var calls atomic.Int64
	loader := LoaderFunc[int](func(ctx context.Context) ([]int, error) {
		calls.Add(1)
		return []int{1}, nil
	})

	r := NewRefresher[int]("startup", loader, src, time.Hour)
	require.NoError(t, r.RefreshOnce(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, int64(1), calls.Load(), "startup loads exactly once")
	loads, _ := r.Stats()
	assert.Equal(t, int64(1), loads)
}

func TestRefresher_FeedsMountedTable(t *testing.T) {
	type row struct{ ID, Name string }
	schema := table.MustBuild(table.RecordType[row]{
		Name:     "rows",
		Sortable: true,
		Fields: []table.FieldDescriptor[row]{
			{Name: "id", Type: table.FieldText, Value: func(r row) any { return r.ID },
				Attributes: table.Attributes{Key: true}},
			{Name: "name", Type: table.FieldText, Value: func(r row) any { return r.Name }},
		},
	})

	src := table.NewSource[row](nil)
	tbl := table.Mount(schema, src, table.Options{})
	defer tbl.Close()

	changes, stop := tbl.Subscribe()
	defer stop()

	loader := LoaderFunc[row](func(ctx context.Context) ([]row, error) {
		return []row{{ID: "2", Name: "b"}, {ID: "1", Name: "a"}}, nil
	})
	require.NoError(t, NewRefresher[row]("rows", loader, src, 0).RefreshOnce(context.Background()))

	c := <-changes
	assert.Equal(t, table.ChangeData, c.Reason)

	tbl.ClickHeader("name")
	rows := tbl.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0].Key)
}
