package services

import (
	"context"
	"fmt"

	"myy/internal/core"
	"myy/internal/kv"
	applog "myy/internal/log"
)

// pushEntries prepends records whose id is not already in the expense trash.
func (t *Tracker) pushEntries(recs ...core.TrashedEntry) {
	var add []core.TrashedEntry
	for _, r := range recs {
		if indexOf(t.trash.Expenses, func(x core.TrashedEntry) bool { return x.ID == r.ID }) >= 0 ||
			indexOf(add, func(x core.TrashedEntry) bool { return x.ID == r.ID }) >= 0 {
			continue
		}
		add = append(add, r)
	}
	t.trash.Expenses = prepend(t.trash.Expenses, add...)
}

func (t *Tracker) pushTasks(recs ...core.TrashedTask) {
	var add []core.TrashedTask
	for _, r := range recs {
		if indexOf(t.trash.Tasks, func(x core.TrashedTask) bool { return x.ID == r.ID }) >= 0 ||
			indexOf(add, func(x core.TrashedTask) bool { return x.ID == r.ID }) >= 0 {
			continue
		}
		add = append(add, r)
	}
	t.trash.Tasks = prepend(t.trash.Tasks, add...)
}

// TrashedEntries lists the expense trash newest first, one record per id.
func (t *Tracker) TrashedEntries() []core.TrashedEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return dedupe(t.trash.Expenses, func(r core.TrashedEntry) string { return r.ID })
}

// TrashedTasks lists the task trash newest first, one record per id.
func (t *Tracker) TrashedTasks() []core.TrashedTask {
	t.mu.Lock()
	defer t.mu.Unlock()
	return dedupe(t.trash.Tasks, func(r core.TrashedTask) string { return r.ID })
}

// TrashLen is the number of records across both trash lists.
func (t *Tracker) TrashLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.trash.Len()
}

// RemoveFromTrash permanently deletes the record with id from the kind's list.
func (t *Tracker) RemoveFromTrash(ctx context.Context, kind core.Kind, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	var removed bool
	switch kind {
	case core.KindExpense:
		t.trash.Expenses, removed = removeAll(t.trash.Expenses, func(r core.TrashedEntry) bool { return r.ID == id })
	case core.KindTask:
		t.trash.Tasks, removed = removeAll(t.trash.Tasks, func(r core.TrashedTask) bool { return r.ID == id })
	default:
		return false
	}
	if !removed {
		return false
	}
	t.persist(ctx, kv.KeyTrash, t.trash)

	t.log.InfoContext(ctx, "Trash record removed", applog.NewFields().
		WithOperation(applog.OpPurge).
		WithTrash(kind.String(), id).
		ToSlice()...)
	return true
}

// PurgeAll empties both trash lists and returns how many records were dropped.
func (t *Tracker) PurgeAll(ctx context.Context) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.trash.Len()
	t.trash = core.Trash{}.Normalize()
	t.persist(ctx, kv.KeyTrash, t.trash)

	t.log.InfoContext(ctx, "Trash purged",
		applog.FieldOperation, applog.OpPurge,
		applog.FieldCount, n)
	return n
}

// RestoreEntry moves the trashed entry with id back to the front of the
// live collection. The live collection and the trash are written in one
// batch; if that write fails nothing changes in memory and the returned
// error wraps ErrRestoreFailed. An unknown id returns found == false and
// no error.
func (t *Tracker) RestoreEntry(ctx context.Context, id string) (core.Entry, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := indexOf(t.trash.Expenses, func(r core.TrashedEntry) bool { return r.ID == id })
	if i < 0 {
		return core.Entry{}, false, nil
	}
	e := t.trash.Expenses[i].Entry

	entries := t.entries
	if indexOf(entries, func(x core.Entry) bool { return x.ID == id }) < 0 {
		entries = prepend(entries, e)
	}
	trash := t.trash
	trash.Expenses, _ = removeAll(trash.Expenses, func(r core.TrashedEntry) bool { return r.ID == id })

	if err := kv.SaveMany(ctx, t.store, map[string]any{kv.KeyEntries: entries, kv.KeyTrash: trash}); err != nil {
		t.log.ErrorContext(ctx, "Restore not persisted", applog.NewFields().
			WithOperation(applog.OpRestore).
			WithTrash(core.KindExpense.String(), id).
			WithError(err).
			ToSlice()...)
		return core.Entry{}, true, fmt.Errorf("%w: entry %s: %w", ErrRestoreFailed, id, err)
	}
	t.entries = entries
	t.trash = trash
	t.entriesChanged()

	t.log.InfoContext(ctx, "Entry restored", applog.NewFields().
		WithOperation(applog.OpRestore).
		WithTrash(core.KindExpense.String(), id).
		ToSlice()...)
	return e, true, nil
}

// RestoreTask is RestoreEntry for the task trash.
func (t *Tracker) RestoreTask(ctx context.Context, id string) (core.Task, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := indexOf(t.trash.Tasks, func(r core.TrashedTask) bool { return r.ID == id })
	if i < 0 {
		return core.Task{}, false, nil
	}
	task := t.trash.Tasks[i].Task

	tasks := t.tasks
	if indexOf(tasks, func(x core.Task) bool { return x.ID == id }) < 0 {
		tasks = prepend(tasks, task)
	}
	trash := t.trash
	trash.Tasks, _ = removeAll(trash.Tasks, func(r core.TrashedTask) bool { return r.ID == id })

	if err := kv.SaveMany(ctx, t.store, map[string]any{kv.KeyTasks: tasks, kv.KeyTrash: trash}); err != nil {
		t.log.ErrorContext(ctx, "Restore not persisted", applog.NewFields().
			WithOperation(applog.OpRestore).
			WithTrash(core.KindTask.String(), id).
			WithError(err).
			ToSlice()...)
		return core.Task{}, true, fmt.Errorf("%w: task %s: %w", ErrRestoreFailed, id, err)
	}
	t.tasks = tasks
	t.trash = trash

	t.log.InfoContext(ctx, "Task restored", applog.NewFields().
		WithOperation(applog.OpRestore).
		WithTrash(core.KindTask.String(), id).
		ToSlice()...)
	return task, true, nil
}

// Restore dispatches to RestoreEntry or RestoreTask.
func (t *Tracker) Restore(ctx context.Context, kind core.Kind, id string) (bool, error) {
	switch kind {
	case core.KindExpense:
		_, found, err := t.RestoreEntry(ctx, id)
		return found, err
	case core.KindTask:
		_, found, err := t.RestoreTask(ctx, id)
		return found, err
	}
	return false, fmt.Errorf("%w: %q", core.ErrInvalidKind, kind)
}

// removeAll returns a new slice without the matching items.
func removeAll[T any](items []T, match func(T) bool) ([]T, bool) {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !match(it) {
			out = append(out, it)
		}
	}
	return out, len(out) != len(items)
}
