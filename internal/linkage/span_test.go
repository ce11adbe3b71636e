package linkage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAllocateSpan_FullBusinessWeek(t *testing.T) {
	// Mon Feb 2 .. Fri Feb 6, 2026.
	alloc := AllocateSpan(1000, date(2026, 2, 2), date(2026, 2, 6))

	require.Len(t, alloc, 5)
	for day, v := range alloc {
		assert.InDelta(t, 200, v, 1e-9, day)
	}
	assert.InDelta(t, 1000, alloc.Total(), 1e-9)
}

func TestAllocateSpan_WeekendsExcluded(t *testing.T) {
	// Fri Feb 6 .. Mon Feb 9, 2026 spans a weekend.
	alloc := AllocateSpan(500, date(2026, 2, 6), date(2026, 2, 9))

	require.Len(t, alloc, 2)
	assert.NotContains(t, alloc, "2026-02-07")
	assert.NotContains(t, alloc, "2026-02-08")
	assert.InDelta(t, 250, alloc["2026-02-06"], 1e-9)
	assert.InDelta(t, 250, alloc["2026-02-09"], 1e-9)
}

func TestAllocateSpan_SumEqualsTotal(t *testing.T) {
	for _, span := range []struct {
		start, end time.Time
	}{
		{date(2026, 2, 2), date(2026, 2, 2)},
		{date(2026, 2, 2), date(2026, 2, 27)},
		{date(2026, 1, 15), date(2026, 3, 20)},
	} {
		alloc := AllocateSpan(12345.67, span.start, span.end)
		assert.InDelta(t, 12345.67, alloc.Total(), 1e-6)
	}
}

func TestAllocateSpan_DegenerateSpans(t *testing.T) {
	// End before start: single-day fallback on the start date.
	reversed := AllocateSpan(300, date(2026, 2, 6), date(2026, 2, 2))
	require.Len(t, reversed, 1)
	assert.InDelta(t, 300, reversed["2026-02-06"], 1e-9)

	// Weekend-only span has zero business days: same fallback.
	weekend := AllocateSpan(300, date(2026, 2, 7), date(2026, 2, 8))
	require.Len(t, weekend, 1)
	assert.InDelta(t, 300, weekend["2026-02-07"], 1e-9)
}

func TestAllocationWindow_SubsetNotRenormalized(t *testing.T) {
	alloc := AllocateSpan(1000, date(2026, 2, 2), date(2026, 2, 6))

	window := alloc.Window(date(2026, 2, 3), date(2026, 2, 4))
	require.Len(t, window, 2)
	// Shares stay computed against the full span.
	assert.InDelta(t, 200, window["2026-02-03"], 1e-9)
	assert.InDelta(t, 200, window["2026-02-04"], 1e-9)
	assert.InDelta(t, 400, window.Total(), 1e-9)
}

func TestAllocationWindow_Empty(t *testing.T) {
	alloc := AllocateSpan(1000, date(2026, 2, 2), date(2026, 2, 6))
	assert.Empty(t, alloc.Window(date(2026, 3, 1), date(2026, 3, 31)))
}

func TestBusinessDays_TimeOfDayIgnored(t *testing.T) {
	start := time.Date(2026, 2, 2, 23, 30, 0, 0, time.UTC)
	end := time.Date(2026, 2, 4, 0, 5, 0, 0, time.UTC)
	days := BusinessDays(start, end)
	require.Len(t, days, 3)
	assert.Equal(t, date(2026, 2, 2), days[0])
}
