package streak

import (
	"sort"

	"github.com/ManuelReschke/opad/internal/pkg/calendar"
)

// Summary holds the streak values shown on the home screen.
type Summary struct {
	Current   int  `json:"current"`
	Longest   int  `json:"longest"`
	Total     int  `json:"total"`
	TodayDone bool `json:"today_done"`
}

// Compute counts consecutive days with a photo, walking backwards from today.
//
// The streak is not broken if yesterday has a photo but today does not yet
// (grace period). Without a photo today or yesterday the streak is 0, no
// matter how many older days exist. Duplicates and order do not matter.
func Compute(dates []calendar.Date, today calendar.Date) int {
	if len(dates) == 0 {
		return 0
	}
	return computeSet(toSet(dates), today)
}

func computeSet(set map[calendar.Date]struct{}, today calendar.Date) int {
	if len(set) == 0 {
		return 0
	}

	cursor := today
	yesterday := today.AddDays(-1)
	if !has(set, today) && has(set, yesterday) {
		cursor = yesterday
	}

	count := 0
	for has(set, cursor) {
		count++
		cursor = cursor.AddDays(-1)
	}
	return count
}

// Longest returns the longest run of consecutive days anywhere in dates.
func Longest(dates []calendar.Date) int {
	set := toSet(dates)
	if len(set) == 0 {
		return 0
	}

	asc := make([]calendar.Date, 0, len(set))
	for d := range set {
		asc = append(asc, d)
	}
	sort.Slice(asc, func(i, j int) bool { return asc[i].Before(asc[j]) })

	longest, run := 1, 1
	for i := 1; i < len(asc); i++ {
		if asc[i-1].AddDays(1) == asc[i] {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 1
		}
	}
	return longest
}

// Summarize computes every streak value from one set of upload dates.
func Summarize(dates []calendar.Date, today calendar.Date) Summary {
	set := toSet(dates)
	current := computeSet(set, today)
	longest := Longest(dates)
	if current > longest {
		longest = current
	}
	return Summary{
		Current:   current,
		Longest:   longest,
		Total:     len(set),
		TodayDone: has(set, today),
	}
}

func toSet(dates []calendar.Date) map[calendar.Date]struct{} {
	set := make(map[calendar.Date]struct{}, len(dates))
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		set[d] = struct{}{}
	}
	return set
}

func has(set map[calendar.Date]struct{}, d calendar.Date) bool {
	_, ok := set[d]
	return ok
}
