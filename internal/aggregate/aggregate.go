// Package aggregate derives the month views shown next to the entry list:
// totals, the per-category breakdown and the daily flow series.
//
// Every function is pure. Inputs are never modified and any list of
// well-formed entries, including an empty one, is accepted.
package aggregate

import (
	"sort"
	"time"

	"myy/internal/core"
)

// Totals holds the month's sums. Net is income minus expenses.
type Totals struct {
	SumExpense core.Money `json:"sumExpense"`
	SumIncome  core.Money `json:"sumIncome"`
	Net        core.Money `json:"net"`
}

// CategoryTotal is one slice of the expenses-by-category chart.
type CategoryTotal struct {
	Name  string     `json:"name"`
	Value core.Money `json:"value"`
}

// DayFlow is one point of the daily flow series.
type DayFlow struct {
	Date    string     `json:"date"`
	Expense core.Money `json:"expense"`
	Income  core.Money `json:"income"`
}

// MonthSummary bundles every derived view for a single month.
type MonthSummary struct {
	Month           string          `json:"month"`
	Totals          Totals          `json:"totals"`
	ByCategory      []CategoryTotal `json:"byCategory"`
	ByDay           []DayFlow       `json:"byDay"`
	MonthsAvailable []string        `json:"monthsAvailable"`
	Count           int             `json:"count"`
}

// TotalsOf sums expenses and income. Entries that are not income count as expenses.
func TotalsOf(entries []core.Entry) Totals {
	var t Totals
	for _, e := range entries {
		if e.IsIncome() {
			t.SumIncome = t.SumIncome.Add(e.Amount)
		} else {
			t.SumExpense = t.SumExpense.Add(e.Amount)
		}
	}
	t.Net = t.SumIncome.Sub(t.SumExpense)
	return t
}

// ByCategory groups expenses by category. The result is ordered by value
// descending, then by name, so charts and tests see a stable order.
func ByCategory(entries []core.Entry) []CategoryTotal {
	sums := make(map[string]core.Money)
	for _, e := range entries {
		if e.IsIncome() {
			continue
		}
		sums[e.Category] = sums[e.Category].Add(e.Amount)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for name, value := range sums {
		out = append(out, CategoryTotal{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value.Cents != out[j].Value.Cents {
			return out[i].Value.Cents > out[j].Value.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// ByDay groups all entries by ISO date, keeping expense and income apart.
// The series is ascending by date.
func ByDay(entries []core.Entry) []DayFlow {
	days := make(map[string]*DayFlow)
	for _, e := range entries {
		key := e.Date.String()
		d, ok := days[key]
		if !ok {
			d = &DayFlow{Date: key}
			days[key] = d
		}
		if e.IsIncome() {
			d.Income = d.Income.Add(e.Amount)
		} else {
			d.Expense = d.Expense.Add(e.Amount)
		}
	}

	out := make([]DayFlow, 0, len(days))
	for _, d := range days {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// MonthsAvailable lists the distinct month keys of the entries, newest
// first. The month of now is always present.
func MonthsAvailable(entries []core.Entry, now time.Time) []string {
	current := core.CurrentMonth(now)
	seen := map[string]struct{}{current: {}}
	out := []string{current}
	for _, e := range entries {
		m := e.Month()
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// FilterMonth returns the entries whose date falls in month, preserving order.
func FilterMonth(entries []core.Entry, month string) []core.Entry {
	out := make([]core.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Month() == month {
			out = append(out, e)
		}
	}
	return out
}

// Summarize computes every view for month. MonthsAvailable is computed over
// all entries, the rest over the month only.
func Summarize(entries []core.Entry, month string, now time.Time) MonthSummary {
	filtered := FilterMonth(entries, month)
	return MonthSummary{
		Month:           month,
		Totals:          TotalsOf(filtered),
		ByCategory:      ByCategory(filtered),
		ByDay:           ByDay(filtered),
		MonthsAvailable: MonthsAvailable(entries, now),
		Count:           len(filtered),
	}
}
