package monthview

import (
	"context"

	"github.com/ManuelReschke/opad/internal/pkg/calendar"
)

// State is the display state of one grid slot.
type State string

const (
	StateEmpty   State = "empty"
	StateFuture  State = "future"
	StatePending State = "pending"
	StatePhoto   State = "photo"
	StateMissing State = "missing"
)

// Missing tells the two missing icons apart.
type Missing string

const (
	MissingNone   Missing = ""
	MissingToday  Missing = "today"
	MissingMissed Missing = "missed"
)

// Cell is the resolved state of one slot.
type Cell struct {
	Slot    int           `json:"slot"`
	Day     int           `json:"day"`
	Date    calendar.Date `json:"date"`
	State   State         `json:"state"`
	Missing Missing       `json:"missing,omitempty"`
	URL     string        `json:"url,omitempty"`
}

// PhotoLookup answers whether a user has a photo for a given day.
type PhotoLookup interface {
	LookupPhoto(ctx context.Context, userID uint, date calendar.Date) (url string, found bool, err error)
}

// LookupFunc adapts a plain function to PhotoLookup.
type LookupFunc func(ctx context.Context, userID uint, date calendar.Date) (string, bool, error)

func (f LookupFunc) LookupPhoto(ctx context.Context, userID uint, date calendar.Date) (string, bool, error) {
	return f(ctx, userID, date)
}

// Initial returns the state of a slot before any lookup has finished.
func Initial(day calendar.CalendarDay, today calendar.Date) Cell {
	cell := Cell{Slot: day.Slot, Day: day.Day, Date: day.Date}
	switch {
	case day.IsPadding():
		cell.State = StateEmpty
	case day.Date.After(today):
		cell.State = StateFuture
	default:
		cell.State = StatePending
	}
	return cell
}

// NeedsLookup reports whether the slot's state depends on the photo store.
func NeedsLookup(day calendar.CalendarDay, today calendar.Date) bool {
	return !day.IsPadding() && !day.Date.After(today)
}

// Decide turns a lookup outcome into the final cell. A failed lookup is
// shown as missing.
func Decide(day calendar.CalendarDay, today calendar.Date, url string, found bool, err error) Cell {
	cell := Initial(day, today)
	if cell.State != StatePending {
		return cell
	}

	if err == nil && found && url != "" {
		cell.State = StatePhoto
		cell.URL = url
		return cell
	}

	cell.State = StateMissing
	if day.Date.Equal(today) {
		cell.Missing = MissingToday
	} else {
		cell.Missing = MissingMissed
	}
	return cell
}
