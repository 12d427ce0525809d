package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthWindow(t *testing.T) {
	now := time.Date(2026, time.October, 19, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name       string
		monthsBack int
		wantFrom   string
		wantTo     string
	}{
		{name: "current month", monthsBack: 0, wantFrom: "20261001", wantTo: "20261101"},
		{name: "previous month", monthsBack: 1, wantFrom: "20260901", wantTo: "20261001"},
		{name: "crosses year", monthsBack: 10, wantFrom: "20251201", wantTo: "20260101"},
		{name: "two years back", monthsBack: 24, wantFrom: "20241001", wantTo: "20241101"},
		{name: "negative is the future", monthsBack: -3, wantFrom: "20270101", wantTo: "20270201"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := MonthWindow(now, tt.monthsBack)
			assert.Equal(t, tt.wantFrom, w.From.Format(dateLayout))
			assert.Equal(t, tt.wantTo, w.To.Format(dateLayout))
		})
	}
}

func TestMonthWindow_Properties(t *testing.T) {
	starts := []time.Time{
		time.Date(2026, time.January, 31, 23, 59, 0, 0, time.UTC),
		time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC),
		time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC),
	}

	for _, now := range starts {
		for n := 0; n <= 36; n++ {
			w := MonthWindow(now, n)

			assert.Equal(t, 1, w.From.Day(), "from must be the first day (now=%s n=%d)", now, n)
			assert.Equal(t, 1, w.To.Day(), "to must be the first day (now=%s n=%d)", now, n)
			assert.True(t, w.From.Before(w.To), "from < to (now=%s n=%d)", now, n)
			assert.Equal(t, w.From.AddDate(0, 1, 0), w.To, "window spans one month (now=%s n=%d)", now, n)

			months := (now.Year()-w.From.Year())*12 + int(now.Month()-w.From.Month())
			assert.Equal(t, n, months, "from is n months before now (now=%s)", now)
		}
	}
}

func TestMonthWindow_CurrentMonthContainsNow(t *testing.T) {
	now := time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC)
	w := MonthWindow(now, 0)

	assert.False(t, now.Before(w.From))
	assert.True(t, now.Before(w.To))
}

func TestWindow_Clause(t *testing.T) {
	w := MonthWindow(time.Date(2026, time.October, 5, 0, 0, 0, 0, time.Local), 1)
	assert.Equal(t, "created:20260901 -created:20261001", w.Clause())
}
