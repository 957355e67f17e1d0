package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Expense EntryType = "expense"
	Income  EntryType = "income"
)

const (
	KindExpense Kind = "expense"
	KindTask    Kind = "task"
)

type (
	// EntryType distinguishes money going out from money coming in.
	EntryType string

	// Kind names one of the two trash lists.
	Kind string

	// Entry is a single expense or income record. Entries are never updated
	// in place; they only move between the live collection and the trash.
	Entry struct {
		ID       string    `json:"id"`
		Type     EntryType `json:"type"`
		Amount   Money     `json:"amount"`
		Category string    `json:"category"`
		Note     string    `json:"note"`
		Date     Date      `json:"date"`
	}

	// Task is a checklist item. Done is the only mutable field.
	Task struct {
		ID        string    `json:"id"`
		Text      string    `json:"text"`
		Due       *Date     `json:"due"`
		Done      bool      `json:"done"`
		CreatedAt time.Time `json:"createdAt"`
	}

	// TrashedEntry is an Entry tagged with the time it was soft-deleted.
	TrashedEntry struct {
		Entry
		DeletedAt time.Time `json:"deletedAt"`
	}

	// TrashedTask is a Task tagged with the time it was soft-deleted.
	TrashedTask struct {
		Task
		DeletedAt time.Time `json:"deletedAt"`
	}

	// Trash is the persisted shape of both trash lists.
	Trash struct {
		Expenses []TrashedEntry `json:"expenses"`
		Tasks    []TrashedTask  `json:"tasks"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid entry type")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidKind   = errors.New("invalid trash kind")
	ErrEmptyText     = errors.New("empty task text")
	ErrEmptyID       = errors.New("empty id")
)

// ExpensePresets and IncomePresets are the categories offered for each entry type.
var (
	ExpensePresets = []string{"Food", "Transport", "Groceries", "Bills", "Shopping", "Health", "Entertainment", "Education", "Other"}
	IncomePresets  = []string{"Salary", "Freelance", "Business", "Gift", "Interest", "Investment", "Refund", "Other Income"}
)

// ParseEntryType accepts "expense" or "income" in any case.
func ParseEntryType(s string) (EntryType, error) {
	switch EntryType(strings.ToLower(strings.TrimSpace(s))) {
	case Expense:
		return Expense, nil
	case Income:
		return Income, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

func (t EntryType) IsValid() bool {
	return t == Expense || t == Income
}

func (t EntryType) String() string {
	return string(t)
}

// Presets returns the category presets for the entry type.
func (t EntryType) Presets() []string {
	if t == Income {
		return append([]string(nil), IncomePresets...)
	}
	return append([]string(nil), ExpensePresets...)
}

// DefaultCategory is the first preset of the entry type.
func (t EntryType) DefaultCategory() string {
	if t == Income {
		return IncomePresets[0]
	}
	return ExpensePresets[0]
}

// ParseKind accepts singular and plural spellings of the trash lists.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense", "expenses", "entry", "entries":
		return KindExpense, nil
	case "task", "tasks":
		return KindTask, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

func (k Kind) String() string {
	return string(k)
}

// IsIncome reports whether the entry counts towards income.
// Anything that is not income is treated as an expense by the aggregations.
func (e Entry) IsIncome() bool {
	return e.Type == Income
}

// Month returns the YEAR-MONTH key the entry belongs to.
func (e Entry) Month() string {
	return MonthKey(e.Date)
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if !e.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, e.Type)
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (t Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(t.Text) == "" {
		return ErrEmptyText
	}
	return nil
}

// Overdue reports whether the task is pending past its due date.
func (t Task) Overdue(today Date) bool {
	return !t.Done && t.Due != nil && t.Due.Before(today.Time)
}

// Normalize replaces nil lists with empty ones so the persisted shape
// always carries both keys.
func (t Trash) Normalize() Trash {
	if t.Expenses == nil {
		t.Expenses = []TrashedEntry{}
	}
	if t.Tasks == nil {
		t.Tasks = []TrashedTask{}
	}
	return t
}

// Len is the number of records across both lists.
func (t Trash) Len() int {
	return len(t.Expenses) + len(t.Tasks)
}
