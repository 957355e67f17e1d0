package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"myy/internal/core"
	"myy/internal/kv/memory"
	"myy/internal/services"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local)

type harness struct {
	tracker *services.Tracker
	out     *bytes.Buffer
	errOut  *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tr, err := services.Open(context.Background(), memory.New(), services.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })
	return &harness{tracker: tr, out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
}

// exec runs one command with stdin as the terminal input.
func (h *harness) exec(stdin string, args ...string) int {
	h.out.Reset()
	h.errOut.Reset()
	a := &app{
		tracker: h.tracker,
		in:      strings.NewReader(stdin),
		out:     h.out,
		errOut:  h.errOut,
		now:     func() time.Time { return testNow },
	}
	return a.run(context.Background(), args)
}

func TestAddAndListEntries(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.exec("", "add-expense", "-category", "Bills", "-note", "power", "12,50"))
	assert.Contains(t, h.out.String(), "Added expense 12.50 Bills on 2024-03-15")

	require.Equal(t, 0, h.exec("", "add-income", "-date", "2024-02-01", "1000"))
	assert.Contains(t, h.out.String(), "Salary on 2024-02-01")

	require.Equal(t, 0, h.exec("", "entries"))
	assert.Contains(t, h.out.String(), "power")
	assert.NotContains(t, h.out.String(), "Salary")

	require.Equal(t, 0, h.exec("", "entries", "-month", "2024-02"))
	assert.Contains(t, h.out.String(), "Salary")
}

func TestInvalidInput(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, 2},
		{"unknown command", []string{"frobnicate"}, 2},
		{"missing amount", []string{"add-expense"}, 2},
		{"zero amount", []string{"add-expense", "0"}, 1},
		{"amount out of range", []string{"add-expense", "184467440737095516.17"}, 1},
		{"bad date", []string{"add-expense", "-date", "soon", "5"}, 1},
		{"bad month", []string{"summary", "-month", "2024-13"}, 1},
		{"bad kind", []string{"restore", "note", "x"}, 1},
		{"empty task", []string{"add-task"}, 1},
		{"bad status", []string{"tasks", "-status", "later"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, h.exec("", tt.args...))
		})
	}
	assert.Empty(t, h.tracker.Entries())
}

func TestSummary(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.exec("", "add-expense", "-category", "Food", "30"))
	require.Equal(t, 0, h.exec("", "add-income", "100"))

	require.Equal(t, 0, h.exec("", "summary"))
	out := h.out.String()
	assert.Contains(t, out, "Month:    2024-03 (2 entries)")
	assert.Contains(t, out, "Expenses: 30.00")
	assert.Contains(t, out, "Net:      70.00")
	assert.Contains(t, out, "Food")
}

func TestDestructiveCommandsPrompt(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, 0, h.exec("", "add-expense", "5"))

	t.Run("declined", func(t *testing.T) {
		require.Equal(t, 0, h.exec("n\n", "trash-month"))
		assert.Contains(t, h.out.String(), "[y/N]")
		assert.Contains(t, h.out.String(), "Cancelled")
		assert.Len(t, h.tracker.Entries(), 1)
	})

	t.Run("no input cancels", func(t *testing.T) {
		require.Equal(t, 0, h.exec("", "trash-month"))
		assert.Len(t, h.tracker.Entries(), 1)
	})

	t.Run("accepted", func(t *testing.T) {
		require.Equal(t, 0, h.exec("y\n", "trash-month"))
		assert.Contains(t, h.out.String(), "Moved 1 entr(ies) of 2024-03 to trash")
		assert.Empty(t, h.tracker.Entries())
	})

	t.Run("yes flag skips the prompt", func(t *testing.T) {
		require.Equal(t, 0, h.exec("", "-yes", "purge"))
		assert.NotContains(t, h.out.String(), "[y/N]")
		assert.Contains(t, h.out.String(), "Permanently deleted 1 record(s)")
		assert.Zero(t, h.tracker.TrashLen())
	})
}

func TestTaskLifecycle(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.exec("", "add-task", "-due", "2024-03-01", "pay", "rent"))
	tasks := h.tracker.Tasks()
	require.Len(t, tasks, 1)
	id := tasks[0].ID

	require.Equal(t, 0, h.exec("", "tasks", "-status", "pending"))
	assert.Contains(t, h.out.String(), "pay rent")
	assert.Contains(t, h.out.String(), "(overdue)")

	require.Equal(t, 0, h.exec("", "toggle", id))
	assert.Contains(t, h.out.String(), "is done")

	require.Equal(t, 0, h.exec("", "tasks", "-status", "pending"))
	assert.Contains(t, h.out.String(), "No tasks")

	require.Equal(t, 0, h.exec("", "-yes", "trash-done"))
	assert.Contains(t, h.out.String(), "Moved 1 completed task(s)")

	require.Equal(t, 0, h.exec("", "trash"))
	assert.Contains(t, h.out.String(), "pay rent")

	require.Equal(t, 0, h.exec("", "restore", "task", id))
	assert.Len(t, h.tracker.Tasks(), 1)
	assert.Zero(t, h.tracker.TrashLen())

	assert.Equal(t, 1, h.exec("", "toggle", "missing"))
}

func TestDeleteRestoreAndRemove(t *testing.T) {
	h := newHarness(t)
	e, err := h.tracker.AddEntry(context.Background(), services.NewEntry{
		Type:   core.Expense,
		Amount: core.FromUnits(7),
		Date:   core.NewDate(2024, 3, 2),
	})
	require.NoError(t, err)

	require.Equal(t, 0, h.exec("y\n", "delete-entry", e.ID))
	assert.Empty(t, h.tracker.Entries())
	require.Len(t, h.tracker.TrashedEntries(), 1)

	require.Equal(t, 0, h.exec("", "restore", "expense", e.ID))
	assert.Len(t, h.tracker.Entries(), 1)

	assert.Equal(t, 1, h.exec("", "restore", "expense", e.ID))

	require.Equal(t, 0, h.exec("", "-yes", "delete-entry", e.ID))
	require.Equal(t, 0, h.exec("", "remove", "expenses", e.ID))
	assert.Zero(t, h.tracker.TrashLen())
	assert.Empty(t, h.tracker.Entries())
}

func TestDarkMode(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, 0, h.exec("", "dark-mode"))
	assert.Equal(t, "Dark mode off\n", h.out.String())

	require.Equal(t, 0, h.exec("", "dark-mode", "on"))
	assert.True(t, h.tracker.DarkMode())

	assert.Equal(t, 2, h.exec("", "dark-mode", "maybe"))
}
