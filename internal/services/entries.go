package services

import (
	"context"
	"strings"

	"myy/internal/aggregate"
	"myy/internal/core"
	"myy/internal/kv"
	applog "myy/internal/log"
)

// NewEntry is the user input for AddEntry. A zero Date means today and an
// empty Category falls back to the type's first preset.
type NewEntry struct {
	Type     core.EntryType
	Amount   core.Money
	Category string
	Note     string
	Date     core.Date
}

// AddEntry validates in and prepends the new entry to the live collection.
func (t *Tracker) AddEntry(ctx context.Context, in NewEntry) (core.Entry, error) {
	if !in.Type.IsValid() {
		return core.Entry{}, core.ErrInvalidType
	}
	if err := in.Amount.Validate(); err != nil {
		return core.Entry{}, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	e := core.Entry{
		ID:       t.newID(),
		Type:     in.Type,
		Amount:   in.Amount,
		Category: strings.TrimSpace(in.Category),
		Note:     strings.TrimSpace(in.Note),
		Date:     in.Date,
	}
	if e.Category == "" {
		e.Category = in.Type.DefaultCategory()
	}
	if e.Date.IsZero() {
		e.Date = t.today()
	}

	t.entries = prepend(t.entries, e)
	t.entriesChanged()
	t.persist(ctx, kv.KeyEntries, t.entries)

	t.log.InfoContext(ctx, "Entry added", applog.NewFields().
		WithOperation(applog.OpCreate).
		WithEntry(e.ID, e.Type.String(), e.Amount.Cents, e.Category).
		ToSlice()...)
	return e, nil
}

// Entries returns the live entries, newest first.
func (t *Tracker) Entries() []core.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]core.Entry{}, t.entries...)
}

func (t *Tracker) EntriesForMonth(month string) []core.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return aggregate.FilterMonth(t.entries, month)
}

// SoftDeleteEntry moves the entry with id to the trash. It reports false
// when no live entry has that id.
func (t *Tracker) SoftDeleteEntry(ctx context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	i := indexOf(t.entries, func(e core.Entry) bool { return e.ID == id })
	if i < 0 {
		return false
	}
	e := t.entries[i]
	t.entries = without(t.entries, i)
	t.pushEntries(core.TrashedEntry{Entry: e, DeletedAt: t.now()})
	t.entriesChanged()
	t.persistMany(ctx, map[string]any{kv.KeyEntries: t.entries, kv.KeyTrash: t.trash})

	t.log.InfoContext(ctx, "Entry moved to trash", applog.NewFields().
		WithOperation(applog.OpTrash).
		WithTrash(core.KindExpense.String(), id).
		ToSlice()...)
	return true
}

// MoveMonthToTrash trashes every live entry dated in month and returns how
// many were moved.
func (t *Tracker) MoveMonthToTrash(ctx context.Context, month string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	var keep []core.Entry
	var moved []core.TrashedEntry
	now := t.now()
	for _, e := range t.entries {
		if e.Month() == month {
			moved = append(moved, core.TrashedEntry{Entry: e, DeletedAt: now})
			continue
		}
		keep = append(keep, e)
	}
	if len(moved) == 0 {
		return 0
	}
	if keep == nil {
		keep = []core.Entry{}
	}
	t.entries = keep
	t.pushEntries(moved...)
	t.entriesChanged()
	t.persistMany(ctx, map[string]any{kv.KeyEntries: t.entries, kv.KeyTrash: t.trash})

	t.log.InfoContext(ctx, "Month moved to trash",
		applog.FieldOperation, applog.OpTrash,
		applog.FieldMonth, month,
		applog.FieldCount, len(moved))
	return len(moved)
}
