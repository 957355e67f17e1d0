package services

import (
	"context"

	"myy/internal/core"
)

// Outcome is the answer to a confirmation prompt.
type Outcome int

const (
	Cancelled Outcome = iota
	Confirmed
)

func (o Outcome) String() string {
	if o == Confirmed {
		return "confirmed"
	}
	return "cancelled"
}

// Prompt describes a destructive action awaiting confirmation.
type Prompt struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	ConfirmText string `json:"confirmText"`
}

// Confirmer asks the user to approve a Prompt.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) Outcome
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, p Prompt) Outcome

func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) Outcome {
	return f(ctx, p)
}

var (
	AlwaysConfirm Confirmer = ConfirmFunc(func(context.Context, Prompt) Outcome { return Confirmed })
	NeverConfirm  Confirmer = ConfirmFunc(func(context.Context, Prompt) Outcome { return Cancelled })
)

// Prompts shown before each destructive operation.
var (
	PromptDeleteEntry = Prompt{
		Title:       "Delete entry?",
		Message:     "This will move the entry to Restore.",
		ConfirmText: "Delete",
	}
	PromptDeleteTask = Prompt{
		Title:       "Delete task?",
		Message:     "This will move the task to Restore.",
		ConfirmText: "Delete",
	}
	PromptMoveMonth = Prompt{
		Title:       "Move all this month entries to Restore?",
		Message:     "You can restore them later from the Restore tab.",
		ConfirmText: "Move",
	}
	PromptMoveCompleted = Prompt{
		Title:       "Move all completed tasks to Restore?",
		Message:     "You can restore them later from the Restore tab.",
		ConfirmText: "Move",
	}
	PromptPurgeAll = Prompt{
		Title:       "Permanently delete everything in Restore?",
		Message:     "This cannot be undone.",
		ConfirmText: "Delete all",
	}
)

// ConfirmMoveMonthToTrash asks c before moving month's entries to the trash.
// Nothing changes when the prompt is cancelled.
func (t *Tracker) ConfirmMoveMonthToTrash(ctx context.Context, c Confirmer, month string) (int, Outcome) {
	if c.Confirm(ctx, PromptMoveMonth) != Confirmed {
		return 0, Cancelled
	}
	return t.MoveMonthToTrash(ctx, month), Confirmed
}

func (t *Tracker) ConfirmMoveCompletedToTrash(ctx context.Context, c Confirmer) (int, Outcome) {
	if c.Confirm(ctx, PromptMoveCompleted) != Confirmed {
		return 0, Cancelled
	}
	return t.MoveCompletedToTrash(ctx), Confirmed
}

func (t *Tracker) ConfirmPurgeAll(ctx context.Context, c Confirmer) (int, Outcome) {
	if c.Confirm(ctx, PromptPurgeAll) != Confirmed {
		return 0, Cancelled
	}
	return t.PurgeAll(ctx), Confirmed
}

// ConfirmSoftDelete asks c before moving a single item to the trash. An
// unknown kind is never prompted for and reports (false, Cancelled).
func (t *Tracker) ConfirmSoftDelete(ctx context.Context, c Confirmer, kind core.Kind, id string) (bool, Outcome) {
	var p Prompt
	switch kind {
	case core.KindExpense:
		p = PromptDeleteEntry
	case core.KindTask:
		p = PromptDeleteTask
	default:
		return false, Cancelled
	}
	if c.Confirm(ctx, p) != Confirmed {
		return false, Cancelled
	}
	if kind == core.KindTask {
		return t.SoftDeleteTask(ctx, id), Confirmed
	}
	return t.SoftDeleteEntry(ctx, id), Confirmed
}
