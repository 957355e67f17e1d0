package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myy/internal/core"
)

func entry(id string, typ core.EntryType, units int64, category string, date core.Date) core.Entry {
	return core.Entry{ID: id, Type: typ, Amount: core.FromUnits(units), Category: category, Date: date}
}

func TestTotalsEmpty(t *testing.T) {
	got := TotalsOf(nil)
	assert.Equal(t, Totals{}, got)
	assert.Empty(t, ByCategory(nil))
	assert.Empty(t, ByDay([]core.Entry{}))
}

func TestTotalsAndByCategory(t *testing.T) {
	d := core.NewDate(2024, 1, 10)
	entries := []core.Entry{
		entry("1", core.Income, 1000, "Salary", d),
		entry("2", core.Expense, 300, "Food", d),
	}

	got := TotalsOf(entries)
	assert.Equal(t, core.FromUnits(1000), got.SumIncome)
	assert.Equal(t, core.FromUnits(300), got.SumExpense)
	assert.Equal(t, core.FromUnits(700), got.Net)

	assert.Equal(t, []CategoryTotal{{Name: "Food", Value: core.FromUnits(300)}}, ByCategory(entries))
}

func TestTotalsNegativeNet(t *testing.T) {
	d := core.NewDate(2024, 1, 10)
	got := TotalsOf([]core.Entry{entry("1", core.Expense, 50, "Bills", d)})
	assert.Negative(t, got.Net.Cents)
	assert.Equal(t, int64(-5000), got.Net.Cents)
}

func TestTotalsSaturateInsteadOfWrapping(t *testing.T) {
	d := core.NewDate(2024, 1, 10)
	huge := core.Money{Cents: math.MaxInt64 - 10}
	entries := []core.Entry{
		{ID: "1", Type: core.Expense, Amount: huge, Category: "Bills", Date: d},
		{ID: "2", Type: core.Expense, Amount: core.FromUnits(1), Category: "Bills", Date: d},
	}

	got := TotalsOf(entries)
	assert.Equal(t, int64(math.MaxInt64), got.SumExpense.Cents)
	assert.Equal(t, int64(-math.MaxInt64), got.Net.Cents)
	assert.Equal(t, int64(math.MaxInt64), ByCategory(entries)[0].Value.Cents)
	assert.Equal(t, int64(math.MaxInt64), ByDay(entries)[0].Expense.Cents)
}

func TestByCategoryOrdering(t *testing.T) {
	d := core.NewDate(2024, 2, 1)
	entries := []core.Entry{
		entry("1", core.Expense, 10, "Transport", d),
		entry("2", core.Expense, 40, "Food", d),
		entry("3", core.Expense, 15, "Transport", d),
		entry("4", core.Expense, 25, "Bills", d),
		entry("5", core.Income, 500, "Salary", d),
	}
	got := ByCategory(entries)
	require.Len(t, got, 3)
	assert.Equal(t, "Food", got[0].Name)
	// Bills and Transport tie at 25; name breaks the tie.
	assert.Equal(t, "Bills", got[1].Name)
	assert.Equal(t, "Transport", got[2].Name)
	assert.Equal(t, core.FromUnits(25), got[2].Value)
}

func TestByDayGroupsAndSorts(t *testing.T) {
	entries := []core.Entry{
		entry("1", core.Expense, 20, "Food", core.NewDate(2024, 1, 15)),
		entry("2", core.Income, 100, "Gift", core.NewDate(2024, 1, 3)),
		entry("3", core.Expense, 5, "Food", core.NewDate(2024, 1, 3)),
		entry("4", core.Expense, 7, "Other", core.NewDate(2024, 1, 3)),
	}
	got := ByDay(entries)
	require.Len(t, got, 2)
	assert.Equal(t, DayFlow{Date: "2024-01-03", Expense: core.FromUnits(12), Income: core.FromUnits(100)}, got[0])
	assert.Equal(t, DayFlow{Date: "2024-01-15", Expense: core.FromUnits(20)}, got[1])
}

func TestMonthsAvailable(t *testing.T) {
	now := time.Date(2024, 3, 20, 12, 0, 0, 0, time.Local)

	assert.Equal(t, []string{"2024-03"}, MonthsAvailable(nil, now))

	entries := []core.Entry{
		entry("1", core.Expense, 1, "Food", core.NewDate(2023, 12, 1)),
		entry("2", core.Expense, 1, "Food", core.NewDate(2024, 1, 5)),
		entry("3", core.Expense, 1, "Food", core.NewDate(2024, 1, 9)),
	}
	assert.Equal(t, []string{"2024-03", "2024-01", "2023-12"}, MonthsAvailable(entries, now))
}

func TestPureFunctionsDoNotMutate(t *testing.T) {
	entries := []core.Entry{
		entry("1", core.Expense, 20, "Food", core.NewDate(2024, 1, 15)),
		entry("2", core.Income, 100, "Gift", core.NewDate(2024, 1, 3)),
	}
	before := append([]core.Entry(nil), entries...)

	_ = Summarize(entries, "2024-01", time.Now())
	assert.Equal(t, before, entries)
}

func TestSummarize(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.Local)
	entries := []core.Entry{
		entry("1", core.Expense, 20, "Food", core.NewDate(2024, 1, 15)),
		entry("2", core.Income, 100, "Gift", core.NewDate(2024, 1, 3)),
		entry("3", core.Expense, 8, "Food", core.NewDate(2023, 12, 3)),
	}
	s := Summarize(entries, "2024-01", now)
	assert.Equal(t, "2024-01", s.Month)
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, core.FromUnits(80), s.Totals.Net)
	assert.Equal(t, []string{"2024-02", "2024-01", "2023-12"}, s.MonthsAvailable)
	assert.Len(t, s.ByDay, 2)
}
