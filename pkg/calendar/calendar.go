// Package calendar partitions a requested planning range into whole weeks.
package calendar

import (
	"time"

	"github.com/TimUx/Dienstplan-sub000/pkg/errors"
	"github.com/TimUx/Dienstplan-sub000/pkg/model"
)

// WeekKey identifies a calendar week across planning runs. The ISO year/week
// pair, not a locally counted index, is what keeps team rotation continuous
// when overlapping periods are solved independently.
type WeekKey struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// Week is one whole week of the partitioned window.
type Week struct {
	Key   WeekKey  `json:"key"`
	Dates []string `json:"dates"` // exactly seven days, starting on the configured week start
}

// Contains reports whether the week includes the date.
func (w Week) Contains(date string) bool {
	for _, d := range w.Dates {
		if d == date {
			return true
		}
	}
	return false
}

// Window is a requested range extended to whole weeks.
type Window struct {
	Requested model.DateRange `json:"requested"`
	Start     string          `json:"start"` // first day of the first week
	End       string          `json:"end"`   // last day of the last week
	Weeks     []Week          `json:"weeks"`
	WeekStart time.Weekday    `json:"week_start"`
}

// Partition extends [start, end] to whole weeks beginning on weekStart and
// splits the result into weeks with ISO keys.
func Partition(start, end string, weekStart time.Weekday) (*Window, error) {
	r := model.DateRange{StartDate: start, EndDate: end}
	if !r.Valid() {
		return nil, errors.InvalidDateRange(start, end)
	}

	s, _ := time.Parse(model.DateFormat, start)
	e, _ := time.Parse(model.DateFormat, end)

	// Walk back to the week start, forward to the day before the next one.
	for s.Weekday() != weekStart {
		s = s.AddDate(0, 0, -1)
	}
	for e.AddDate(0, 0, 1).Weekday() != weekStart {
		e = e.AddDate(0, 0, 1)
	}

	w := &Window{
		Requested: r,
		Start:     s.Format(model.DateFormat),
		End:       e.Format(model.DateFormat),
		WeekStart: weekStart,
	}

	for t := s; !t.After(e); t = t.AddDate(0, 0, 7) {
		week := Week{Key: KeyFor(t.Format(model.DateFormat))}
		for i := 0; i < 7; i++ {
			week.Dates = append(week.Dates, t.AddDate(0, 0, i).Format(model.DateFormat))
		}
		w.Weeks = append(w.Weeks, week)
	}

	return w, nil
}

// KeyFor returns the ISO week key of a date.
func KeyFor(date string) WeekKey {
	t, err := time.Parse(model.DateFormat, date)
	if err != nil {
		return WeekKey{}
	}
	y, wk := t.ISOWeek()
	return WeekKey{Year: y, Week: wk}
}

// Dates returns every date of the window in order.
func (w *Window) Dates() []string {
	var dates []string
	for _, week := range w.Weeks {
		dates = append(dates, week.Dates...)
	}
	return dates
}

// ExtendedDates returns the dates added by whole-week extension, outside the
// originally requested range.
func (w *Window) ExtendedDates() []string {
	var extended []string
	for _, d := range w.Dates() {
		if !w.Requested.Contains(d) {
			extended = append(extended, d)
		}
	}
	return extended
}

// WeekOf returns the week containing the date.
func (w *Window) WeekOf(date string) (Week, bool) {
	for _, week := range w.Weeks {
		if week.Contains(date) {
			return week, true
		}
	}
	return Week{}, false
}

// WeekByKey returns the week with the given key.
func (w *Window) WeekByKey(key WeekKey) (Week, bool) {
	for _, week := range w.Weeks {
		if week.Key == key {
			return week, true
		}
	}
	return Week{}, false
}

// IsBoundaryWeek reports whether the week straddles an edge of the requested
// range, i.e. contains both requested and extended dates. Continuity locks
// from an adjacent solved period land in exactly these weeks.
func (w *Window) IsBoundaryWeek(key WeekKey) bool {
	week, ok := w.WeekByKey(key)
	if !ok {
		return false
	}
	inside, outside := false, false
	for _, d := range week.Dates {
		if w.Requested.Contains(d) {
			inside = true
		} else {
			outside = true
		}
	}
	return inside && outside
}
