// Package calendar lays a Gregorian year out into a Sunday-first week
// grid and joins it with the year's journal entries.
package calendar

import (
	"time"

	"year-journal/internal/models"
)

var monthAbbr = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Week is one 7-slot row of the grid, Sunday through Saturday. Slots
// holding days borrowed from an adjacent year are empty strings so the
// columns stay aligned without ever showing wrong-year dates.
type Week struct {
	// Days holds "2006-01-02" dates, "" for out-of-year slots.
	Days [7]string `json:"days"`
	// Month is the month (1..12) of the first in-year slot, 0 if the
	// week has none.
	Month int `json:"month"`
	// Label is the month abbreviation, set only on the first week row
	// that contains a day of that month.
	Label string `json:"label,omitempty"`
}

// Weeks generates the full week grid for a year. The grid starts on the
// Sunday on or before Jan 1 and ends with the week containing Dec 31;
// every day of the year appears exactly once.
func Weeks(year int) []Week {
	cursor := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	cursor = cursor.AddDate(0, 0, -int(cursor.Weekday()))
	end := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	var weeks []Week
	lastLabeled := 0
	for !cursor.After(end) {
		var w Week
		for i := 0; i < 7; i++ {
			if cursor.Year() == year {
				w.Days[i] = cursor.Format(models.DateLayout)
				if w.Month == 0 {
					w.Month = int(cursor.Month())
				}
			}
			cursor = cursor.AddDate(0, 0, 1)
		}
		if w.Month != 0 && w.Month != lastLabeled {
			w.Label = monthAbbr[w.Month-1]
			lastLabeled = w.Month
		}
		weeks = append(weeks, w)
	}
	return weeks
}

// DayCell is one renderable grid cell: a real date plus its entry, if any.
type DayCell struct {
	Date  string           `json:"date"`
	Entry *models.DayEntry `json:"entry"`
}

// WeekView is a Week with entries attached. Nil cells are padding slots
// outside the target year.
type WeekView struct {
	Days  [7]*DayCell `json:"days"`
	Label string      `json:"label,omitempty"`
}

// YearView is the complete render model for one year, recomputed per
// request and never stored.
type YearView struct {
	Year  int        `json:"year"`
	Weeks []WeekView `json:"weeks"`
}

// Assemble joins the week grid with the year's entries by exact date
// string. Entries outside the year are ignored.
func Assemble(year int, entries []models.DayEntry) YearView {
	byDate := make(map[string]*models.DayEntry, len(entries))
	for i := range entries {
		byDate[entries[i].Date] = &entries[i]
	}

	weeks := Weeks(year)
	view := YearView{Year: year, Weeks: make([]WeekView, len(weeks))}
	for wi, w := range weeks {
		wv := WeekView{Label: w.Label}
		for di, day := range w.Days {
			if day == "" {
				continue
			}
			wv.Days[di] = &DayCell{Date: day, Entry: byDate[day]}
		}
		view.Weeks[wi] = wv
	}
	return view
}
