package photos

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/opad/internal/pkg/calendar"
	"github.com/ManuelReschke/opad/internal/pkg/streak"
)

// Streak summarizes the user's history as of today.
func (s *Service) Streak(ctx context.Context, userID uint) (streak.Summary, error) {
	today := s.Today()
	key := streakCacheKey(userID, today)

	if raw, ok := s.cacheGet(ctx, key); ok {
		var sum streak.Summary
		if err := json.Unmarshal([]byte(raw), &sum); err == nil {
			return sum, nil
		}
	}

	photos, err := s.records.ListDays(ctx, userID)
	if err != nil {
		return streak.Summary{}, fmt.Errorf("failed to list photos: %w", err)
	}

	dates := make([]calendar.Date, 0, len(photos))
	for _, p := range photos {
		d := p.Date()
		if d.IsZero() {
			parsed, perr := calendar.ParseKey(p.DayKey, today)
			if perr != nil {
				log.Warnf("[Photos] skipping photo with bad key %q for user %d: %v", p.DayKey, userID, perr)
				continue
			}
			d = parsed
		}
		dates = append(dates, d)
	}

	sum := streak.Summarize(dates, today)
	if raw, err := json.Marshal(sum); err == nil {
		s.cacheSet(ctx, key, string(raw), streakCacheTTL)
	}
	return sum, nil
}
