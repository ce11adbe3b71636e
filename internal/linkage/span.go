package linkage

import "time"

// dateKey is the map key format for per-day allocations.
const dateKey = "2006-01-02"

// Allocation maps ISO dates to allocated monetary value.
type Allocation map[string]float64

// Total sums the allocation.
func (a Allocation) Total() float64 {
	var sum float64
	for _, v := range a {
		sum += v
	}
	return sum
}

// Window returns the subset of the allocation whose dates fall inside
// [from, to] inclusive. Per-day shares are kept as computed against the full
// span — a partial window is a strict subset of the original total, never
// re-normalized.
func (a Allocation) Window(from, to time.Time) Allocation {
	fromKey := midnight(from).Format(dateKey)
	toKey := midnight(to).Format(dateKey)
	out := make(Allocation)
	for day, value := range a {
		if day >= fromKey && day <= toKey {
			out[day] = value
		}
	}
	return out
}

// BusinessDays returns the Mon-Fri days in [start, end] inclusive, at UTC
// midnight.
func BusinessDays(start, end time.Time) []time.Time {
	start = midnight(start)
	end = midnight(end)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			days = append(days, d)
		}
	}
	return days
}

// AllocateSpan spreads total evenly across the business days of the
// inclusive span. Weekends receive nothing and are excluded from the
// denominator. A degenerate span (end before start, or no business days at
// all) falls back to a single-day allocation of the full value on the start
// date, so a weekend-only job still reports its revenue.
func AllocateSpan(total float64, start, end time.Time) Allocation {
	days := BusinessDays(start, end)
	if end.Before(start) || len(days) == 0 {
		return Allocation{midnight(start).Format(dateKey): total}
	}

	share := total / float64(len(days))
	out := make(Allocation, len(days))
	for _, d := range days {
		out[d.Format(dateKey)] = share
	}
	return out
}

func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
