package services

import (
	"context"
	"strings"

	"myy/internal/core"
	"myy/internal/kv"
	applog "myy/internal/log"
)

// AddTask prepends a pending task. Text is trimmed and must not be empty.
func (t *Tracker) AddTask(ctx context.Context, text string, due *core.Date) (core.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return core.Task{}, core.ErrEmptyText
	}
	if due != nil && due.IsZero() {
		due = nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	task := core.Task{
		ID:        t.newID(),
		Text:      text,
		Due:       due,
		CreatedAt: t.now(),
	}
	t.tasks = prepend(t.tasks, task)
	t.persist(ctx, kv.KeyTasks, t.tasks)

	t.log.InfoContext(ctx, "Task added",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldTaskID, task.ID)
	return task, nil
}

// Tasks returns every live task, newest first.
func (t *Tracker) Tasks() []core.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]core.Task{}, t.tasks...)
}

func (t *Tracker) PendingTasks() []core.Task {
	return t.filterTasks(false)
}

func (t *Tracker) CompletedTasks() []core.Task {
	return t.filterTasks(true)
}

func (t *Tracker) filterTasks(done bool) []core.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := []core.Task{}
	for _, task := range t.tasks {
		if task.Done == done {
			out = append(out, task)
		}
	}
	return out
}

// ToggleTask flips Done on the task with id and returns the updated task.
func (t *Tracker) ToggleTask(ctx context.Context, id string) (core.Task, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := indexOf(t.tasks, func(x core.Task) bool { return x.ID == id })
	if i < 0 {
		return core.Task{}, false
	}
	tasks := append([]core.Task{}, t.tasks...)
	tasks[i].Done = !tasks[i].Done
	t.tasks = tasks
	t.persist(ctx, kv.KeyTasks, t.tasks)

	t.log.DebugContext(ctx, "Task toggled",
		applog.FieldOperation, applog.OpToggle,
		applog.FieldTaskID, id,
		"done", tasks[i].Done)
	return tasks[i], true
}

// SoftDeleteTask moves the task with id to the trash.
func (t *Tracker) SoftDeleteTask(ctx context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := indexOf(t.tasks, func(x core.Task) bool { return x.ID == id })
	if i < 0 {
		return false
	}
	task := t.tasks[i]
	t.tasks = without(t.tasks, i)
	t.pushTasks(core.TrashedTask{Task: task, DeletedAt: t.now()})
	t.persistMany(ctx, map[string]any{kv.KeyTasks: t.tasks, kv.KeyTrash: t.trash})

	t.log.InfoContext(ctx, "Task moved to trash", applog.NewFields().
		WithOperation(applog.OpTrash).
		WithTrash(core.KindTask.String(), id).
		ToSlice()...)
	return true
}

// MoveCompletedToTrash trashes every done task and returns how many moved.
func (t *Tracker) MoveCompletedToTrash(ctx context.Context) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	keep := []core.Task{}
	var moved []core.TrashedTask
	now := t.now()
	for _, task := range t.tasks {
		if task.Done {
			moved = append(moved, core.TrashedTask{Task: task, DeletedAt: now})
			continue
		}
		keep = append(keep, task)
	}
	if len(moved) == 0 {
		return 0
	}
	t.tasks = keep
	t.pushTasks(moved...)
	t.persistMany(ctx, map[string]any{kv.KeyTasks: t.tasks, kv.KeyTrash: t.trash})

	t.log.InfoContext(ctx, "Completed tasks moved to trash",
		applog.FieldOperation, applog.OpTrash,
		applog.FieldKind, core.KindTask,
		applog.FieldCount, len(moved))
	return len(moved)
}
