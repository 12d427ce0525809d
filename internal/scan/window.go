package scan

import (
	"fmt"
	"time"
)

// dateLayout is the compact yyyyMMdd form used by created: clauses.
const dateLayout = "20060102"

// Window is a half-open calendar month [From, To).
type Window struct {
	From time.Time
	To   time.Time
}

// MonthWindow returns the calendar month that lies monthsBack months before
// the month containing now. monthsBack is not validated: a negative value
// selects a month in the future.
func MonthWindow(now time.Time, monthsBack int) Window {
	from := time.Date(now.Year(), now.Month()-time.Month(monthsBack), 1, 0, 0, 0, 0, now.Location())
	return Window{
		From: from,
		To:   from.AddDate(0, 1, 0),
	}
}

// Clause renders the window as an Evernote search clause, e.g.
// "created:20260901 -created:20261001".
func (w Window) Clause() string {
	return fmt.Sprintf("created:%s -created:%s", w.From.Format(dateLayout), w.To.Format(dateLayout))
}
