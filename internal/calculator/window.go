package calculator

import "github.com/mmynk/hisab/internal/models"

// Window selects which entries take part in a computation: either every
// entry ever recorded, or only entries dated within one calendar month.
// Windows are always explicit; the calculator never reads the clock.
type Window struct {
	month   models.Month
	bounded bool
}

// AllTime returns the unrestricted window used by the dashboard.
func AllTime() Window {
	return Window{}
}

// InMonth returns the window of a single calendar month.
func InMonth(m models.Month) Window {
	return Window{month: m, bounded: true}
}

// Month returns the window's month and whether the window is bounded.
func (w Window) Month() (models.Month, bool) {
	return w.month, w.bounded
}

// Contains reports whether an entry dated d belongs to the window.
func (w Window) Contains(d models.Date) bool {
	if !w.bounded {
		return true
	}
	return w.month.Contains(d)
}

// Apply returns a copy of s holding only the entries inside the window.
// Group and members are kept as they are; s itself is not modified.
func (w Window) Apply(s models.Snapshot) models.Snapshot {
	out := models.Snapshot{
		Group:   s.Group,
		Members: s.Members,
	}
	for _, e := range s.Expenses {
		if w.Contains(e.Date) {
			out.Expenses = append(out.Expenses, e)
		}
	}
	for _, f := range s.Funds {
		if w.Contains(f.Date) {
			out.Funds = append(out.Funds, f)
		}
	}
	for _, m := range s.Meals {
		if w.Contains(m.Date) {
			out.Meals = append(out.Meals, m)
		}
	}
	return out
}
