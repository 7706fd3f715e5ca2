package monthview

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/errgroup"

	"github.com/ManuelReschke/opad/internal/pkg/calendar"
)

// DefaultLookupLimit bounds concurrent lookups when the caller passes <= 0.
const DefaultLookupLimit = 8

// View is a snapshot of a board.
type View struct {
	Generation uint64                   `json:"generation"`
	Grid       calendar.MonthGrid       `json:"-"`
	Cells      [calendar.SlotCount]Cell `json:"cells"`
	RowCount   int                      `json:"row_count"`
}

// Board holds the cells of the month currently on screen. Every Bind starts
// a new generation; results tagged with an older generation are dropped.
type Board struct {
	mu         sync.Mutex
	generation uint64
	bound      bool
	grid       calendar.MonthGrid
	today      calendar.Date
	cells      [calendar.SlotCount]Cell
}

func NewBoard() *Board {
	return &Board{}
}

// Bind shows grid on the board and returns the new generation.
func (b *Board) Bind(grid calendar.MonthGrid, today calendar.Date) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.generation++
	b.bound = true
	b.grid = grid
	b.today = today
	for i, day := range grid.Slots {
		b.cells[i] = Initial(day, today)
	}
	return b.generation
}

func (b *Board) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}

// Apply stores cell at slot if generation is still current.
func (b *Board) Apply(generation uint64, slot int, cell Cell) bool {
	if slot < 0 || slot >= calendar.SlotCount {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if generation != b.generation {
		return false
	}
	b.cells[slot] = cell
	return true
}

// Resolve looks up every past or present day of the bound grid, at most limit
// at a time. It returns when all lookups of this generation have finished.
func (b *Board) Resolve(ctx context.Context, lookup PhotoLookup, userID uint, limit int) {
	b.mu.Lock()
	if !b.bound {
		b.mu.Unlock()
		return
	}
	generation := b.generation
	grid := b.grid
	today := b.today
	b.mu.Unlock()

	if limit <= 0 {
		limit = DefaultLookupLimit
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for _, day := range grid.Slots {
		if !NeedsLookup(day, today) {
			continue
		}
		day := day
		g.Go(func() error {
			url, found, err := lookup.LookupPhoto(ctx, userID, day.Date)
			if err != nil {
				log.Warnf("[MonthView] lookup for user %d on %s failed: %v", userID, day.Date, err)
			}
			b.Apply(generation, day.Slot, Decide(day, today, url, found, err))
			return nil
		})
	}
	_ = g.Wait()
}

// Snapshot copies the current board state.
func (b *Board) Snapshot() View {
	b.mu.Lock()
	defer b.mu.Unlock()

	return View{
		Generation: b.generation,
		Grid:       b.grid,
		Cells:      b.cells,
		RowCount:   b.grid.RowCount(),
	}
}

// Render binds grid to a fresh board, resolves it and returns the result.
func Render(ctx context.Context, lookup PhotoLookup, userID uint, grid calendar.MonthGrid, today calendar.Date, limit int) View {
	board := NewBoard()
	board.Bind(grid, today)
	board.Resolve(ctx, lookup, userID, limit)
	return board.Snapshot()
}
