package monthview

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/opad/internal/pkg/calendar"
)

type fakeLookup struct {
	mu     sync.Mutex
	photos map[calendar.Date]string
	fail   map[calendar.Date]bool
	calls  []calendar.Date
}

func (f *fakeLookup) LookupPhoto(_ context.Context, _ uint, date calendar.Date) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, date)
	if f.fail[date] {
		return "", false, errors.New("store unavailable")
	}
	url, ok := f.photos[date]
	return url, ok, nil
}

func feb(day int) calendar.Date {
	return calendar.NewDate(2024, time.February, day)
}

func TestDecide(t *testing.T) {
	today := feb(15)
	grid := calendar.BuildMonthGrid(today.YearMonth(), today)
	slot := func(day int) calendar.CalendarDay { return grid.Slots[grid.Offset+day-1] }

	tests := []struct {
		name    string
		day     calendar.CalendarDay
		url     string
		found   bool
		err     error
		state   State
		missing Missing
	}{
		{"padding", grid.Slots[0], "", false, nil, StateEmpty, MissingNone},
		{"future ignores lookup", slot(16), "https://x/16", true, nil, StateFuture, MissingNone},
		{"past with photo", slot(1), "https://x/1", true, nil, StatePhoto, MissingNone},
		{"today with photo", slot(15), "https://x/15", true, nil, StatePhoto, MissingNone},
		{"today without photo", slot(15), "", false, nil, StateMissing, MissingToday},
		{"past without photo", slot(3), "", false, nil, StateMissing, MissingMissed},
		{"record without url", slot(3), "", true, nil, StateMissing, MissingMissed},
		{"lookup failure today", slot(15), "", false, errors.New("boom"), StateMissing, MissingToday},
		{"lookup failure past", slot(2), "https://x/2", true, errors.New("boom"), StateMissing, MissingMissed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := Decide(tt.day, today, tt.url, tt.found, tt.err)
			assert.Equal(t, tt.state, cell.State)
			assert.Equal(t, tt.missing, cell.Missing)
			assert.Equal(t, tt.day.Slot, cell.Slot)
			if tt.state == StatePhoto {
				assert.Equal(t, tt.url, cell.URL)
			} else {
				assert.Empty(t, cell.URL)
			}
		})
	}
}

func TestRender(t *testing.T) {
	today := feb(15)
	lookup := &fakeLookup{
		photos: map[calendar.Date]string{
			feb(1):  "https://cdn/1.png",
			feb(14): "",
			feb(16): "https://cdn/16.png",
		},
		fail: map[calendar.Date]bool{feb(10): true},
	}
	grid := calendar.BuildMonthGrid(today.YearMonth(), today)

	view := Render(context.Background(), lookup, 7, grid, today, 4)

	assert.Equal(t, uint64(1), view.Generation)
	assert.Equal(t, 6, view.RowCount)
	assert.Len(t, lookup.calls, 15, "only days up to today are looked up")
	for _, d := range lookup.calls {
		assert.False(t, d.After(today))
	}

	cellOf := func(day int) Cell { return view.Cells[grid.Offset+day-1] }
	assert.Equal(t, StatePhoto, cellOf(1).State)
	assert.Equal(t, "https://cdn/1.png", cellOf(1).URL)
	assert.Equal(t, StateMissing, cellOf(2).State)
	assert.Equal(t, MissingMissed, cellOf(2).Missing)
	assert.Equal(t, MissingMissed, cellOf(10).Missing)
	assert.Equal(t, MissingMissed, cellOf(14).Missing)
	assert.Equal(t, MissingToday, cellOf(15).Missing)
	assert.Equal(t, StateFuture, cellOf(16).State)
	assert.Empty(t, cellOf(16).URL)
	assert.Equal(t, StateEmpty, view.Cells[0].State)
	assert.Equal(t, StateEmpty, view.Cells[calendar.SlotCount-1].State)

	for _, cell := range view.Cells {
		assert.NotEqual(t, StatePending, cell.State)
	}
}

func TestRender_BoundsConcurrency(t *testing.T) {
	today := feb(29)
	var inFlight, peak int32
	lookup := LookupFunc(func(context.Context, uint, calendar.Date) (string, bool, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return "", false, nil
	})

	grid := calendar.BuildMonthGrid(today.YearMonth(), today)
	view := Render(context.Background(), lookup, 1, grid, today, 3)

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.Equal(t, MissingToday, view.Cells[grid.Offset+28].Missing)
}

func TestBoard_DiscardsStaleResults(t *testing.T) {
	board := NewBoard()
	today := feb(29)

	started := make(chan struct{}, calendar.SlotCount)
	release := make(chan struct{})
	slow := LookupFunc(func(context.Context, uint, calendar.Date) (string, bool, error) {
		started <- struct{}{}
		<-release
		return "https://cdn/old.png", true, nil
	})

	first := board.Bind(calendar.BuildMonthGrid(today.YearMonth(), today), today)
	done := make(chan struct{})
	go func() {
		board.Resolve(context.Background(), slow, 1, 2)
		close(done)
	}()
	<-started

	march := calendar.YearMonth{Year: 2024, Month: time.March}
	second := board.Bind(calendar.BuildMonthGrid(march, today), today)
	require.Greater(t, second, first)

	close(release)
	<-done

	view := board.Snapshot()
	assert.Equal(t, second, view.Generation)
	assert.Equal(t, march, view.Grid.Month)
	for _, cell := range view.Cells {
		assert.NotEqual(t, StatePhoto, cell.State, "slot %d took a result from an old generation", cell.Slot)
	}

	assert.False(t, board.Apply(first, 10, Cell{State: StatePhoto}))
	assert.True(t, board.Apply(second, 10, Cell{Slot: 10, State: StateFuture}))
	assert.False(t, board.Apply(second, calendar.SlotCount, Cell{}))
}

func TestBoard_ResolveUnbound(t *testing.T) {
	board := NewBoard()
	called := false
	board.Resolve(context.Background(), LookupFunc(func(context.Context, uint, calendar.Date) (string, bool, error) {
		called = true
		return "", false, nil
	}), 1, 1)
	assert.False(t, called)
	assert.Equal(t, uint64(0), board.Generation())
}
