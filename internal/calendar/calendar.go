// Package calendar lays out a month as a grid of day cells and marks the
// days that have appointments.
package calendar

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

// Month identifies a calendar month. Month is zero-based: 0 is January.
type Month struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func FromTime(t time.Time) Month {
	return Month{Year: t.Year(), Month: int(t.Month()) - 1}
}

func (m Month) Valid() bool {
	return m.Month >= 0 && m.Month <= 11 && m.Year >= 1 && m.Year <= 9999
}

// Prev and Next stop at the ends of the supported range: January of year 1
// and December of 9999 return themselves.
func (m Month) Prev() Month {
	if m.Year <= 1 && m.Month == 0 {
		return m
	}
	if m.Month == 0 {
		return Month{Year: m.Year - 1, Month: 11}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

func (m Month) Next() Month {
	if m.Year >= 9999 && m.Month == 11 {
		return m
	}
	if m.Month == 11 {
		return Month{Year: m.Year + 1, Month: 0}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// First is midnight UTC on the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, time.Month(m.Month+1), 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) Days() int {
	return m.First().AddDate(0, 1, -1).Day()
}

// Title reads like "June 2025".
func (m Month) Title() string {
	return m.First().Format("January 2006")
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month+1)
}

// Date formats day d of the month the way appointment dates are stored.
func (m Month) Date(d int) string {
	return fmt.Sprintf("%04d-%02d-%02d", m.Year, m.Month+1, d)
}

// Cell is one square of the grid. Blank cells pad the first week and have
// Day == 0.
type Cell struct {
	Day          int                 `json:"day"`
	Date         string              `json:"date,omitempty"`
	Flagged      bool                `json:"flagged"`
	Appointments []model.Appointment `json:"appointments,omitempty"`
}

func (c Cell) Blank() bool { return c.Day == 0 }

// Grid returns the leading blanks (one per weekday before the 1st, weeks
// starting on Sunday) followed by one cell per day. A day is flagged when
// an appointment's date string equals the day's YYYY-MM-DD date; appointment
// status does not matter.
func Grid(m Month, appts []model.Appointment) []Cell {
	byDate := make(map[string][]model.Appointment)
	for _, a := range appts {
		byDate[a.Date] = append(byDate[a.Date], a)
	}

	lead := int(m.First().Weekday())
	days := m.Days()
	cells := make([]Cell, lead, lead+days)
	for d := 1; d <= days; d++ {
		date := m.Date(d)
		on := byDate[date]
		cells = append(cells, Cell{Day: d, Date: date, Flagged: len(on) > 0, Appointments: on})
	}
	return cells
}

// Leading counts the blank cells at the start of a grid.
func Leading(cells []Cell) int {
	n := 0
	for n < len(cells) && cells[n].Blank() {
		n++
	}
	return n
}

// Weeks splits a grid into rows of seven, padding the last row with blanks.
func Weeks(cells []Cell) [][]Cell {
	var rows [][]Cell
	for i := 0; i < len(cells); i += 7 {
		end := min(i+7, len(cells))
		row := make([]Cell, 7)
		copy(row, cells[i:end])
		rows = append(rows, row)
	}
	return rows
}

// Parse reads a year and zero-based month from form values. Empty values
// fall back to the matching field of def.
func Parse(year, month string, def Month) (Month, error) {
	m := def
	if year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return Month{}, fmt.Errorf("invalid year %q", year)
		}
		m.Year = y
	}
	if month != "" {
		mo, err := strconv.Atoi(month)
		if err != nil {
			return Month{}, fmt.Errorf("invalid month %q", month)
		}
		m.Month = mo
	}
	if !m.Valid() {
		return Month{}, fmt.Errorf("month %d/%d out of range", m.Year, m.Month)
	}
	return m, nil
}

// View is a month ready to render: its title and the grid cut into weeks.
// HasPrev and HasNext are false at the ends of the supported range.
type View struct {
	Year    int      `json:"year"`
	Month   int      `json:"month"`
	Title   string   `json:"title"`
	Prev    Month    `json:"prev"`
	Next    Month    `json:"next"`
	HasPrev bool     `json:"has_prev"`
	HasNext bool     `json:"has_next"`
	Weeks   [][]Cell `json:"weeks"`
}

func NewView(m Month, appts []model.Appointment) View {
	prev, next := m.Prev(), m.Next()
	return View{
		Year:    m.Year,
		Month:   m.Month,
		Title:   m.Title(),
		Prev:    prev,
		Next:    next,
		HasPrev: prev != m,
		HasNext: next != m,
		Weeks:   Weeks(Grid(m, appts)),
	}
}
