package scheduling

import (
	"context"
	"time"

	"github.com/247convo/convo-backend/internal/tenants"
)

// SlotStep is the spacing between candidate slot starts.
const SlotStep = 30 * time.Minute

// Forward search bounds when the requested slot is taken.
const (
	probeAttempts = 5
	probeWindow   = time.Hour
)

// Overlaps reports whether [start, end) intersects any busy interval.
// Intervals are half-open: a meeting ending exactly at start does not block.
func Overlaps(busy []Interval, start, end time.Time) bool {
	for _, b := range busy {
		if b.Start.Before(end) && b.End.After(start) {
			return true
		}
	}
	return false
}

// GenerateSlots walks [windowStart, windowEnd] in SlotStep increments and
// keeps every start whose full duration both fits inside the window and
// avoids the busy set.
func GenerateSlots(windowStart, windowEnd time.Time, duration time.Duration, busy []Interval) []time.Time {
	var slots []time.Time
	for cur := windowStart; !cur.After(windowEnd); cur = cur.Add(SlotStep) {
		end := cur.Add(duration)
		if end.After(windowEnd) {
			break
		}
		if !Overlaps(busy, cur, end) {
			slots = append(slots, cur)
		}
	}
	return slots
}

// BusyFunc queries the provider for busy intervals within [from, to].
type BusyFunc func(ctx context.Context, from, to time.Time) ([]Interval, error)

// NextFree probes forward from a rejected start time in SlotStep increments,
// at most probeAttempts times, and returns the first start whose probeWindow
// is completely free. Returns nil when the search is exhausted.
func NextFree(ctx context.Context, queryBusy BusyFunc, from time.Time) (*time.Time, error) {
	cand := from
	for i := 0; i < probeAttempts; i++ {
		cand = cand.Add(SlotStep)
		busy, err := queryBusy(ctx, cand, cand.Add(probeWindow))
		if err != nil {
			return nil, err
		}
		if len(busy) == 0 {
			t := cand
			return &t, nil
		}
	}
	return nil, nil
}

// dayWindow resolves the tenant's operating window for the given day in the
// tenant's timezone. ok is false when the weekday has no configured hours or
// the configured times do not parse.
func dayWindow(cfg tenants.Config, day time.Time) (start, end time.Time, ok bool) {
	loc := cfg.Location()
	day = day.In(loc)
	h, ok := cfg.HoursFor(day.Weekday().String())
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	openMin, err := tenants.MinutesOfDay(h.Start)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	closeMin, err := tenants.MinutesOfDay(h.End)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	return midnight.Add(time.Duration(openMin) * time.Minute),
		midnight.Add(time.Duration(closeMin) * time.Minute), true
}
