// Package services holds the Tracker, the single state container behind
// both the CLI and the HTTP API.
//
// The Tracker owns the live entry and task collections, the trash and the
// dark mode preference. State is read from the store once in Open; every
// mutation is applied in memory first and then written back.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"myy/internal/aggregate"
	"myy/internal/cache"
	"myy/internal/core"
	"myy/internal/kv"
	applog "myy/internal/log"
)

// ErrRestoreFailed is returned when a restore could not be persisted. The
// record is left in the trash.
var ErrRestoreFailed = errors.New("restore failed")

const (
	defaultViewCacheSize = 24
	defaultViewCacheTTL  = 10 * time.Minute
)

// Tracker is safe for concurrent use; operations are serialised.
type Tracker struct {
	mu    sync.Mutex
	store kv.Store
	now   func() time.Time
	newID func() string
	log   *applog.Logger
	views cache.Cache[aggregate.MonthSummary]

	// version changes on every entry mutation and keys the view cache.
	version uint64

	entries  []core.Entry
	tasks    []core.Task
	trash    core.Trash
	darkMode bool
}

type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDGenerator replaces the random UUID generator.
func WithIDGenerator(gen func() string) Option {
	return func(t *Tracker) { t.newID = gen }
}

// WithLogger sets the logger; the tracker tags it with its component.
func WithLogger(l *applog.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

// WithViewCache sets the cache used to memoise month summaries.
func WithViewCache(c cache.Cache[aggregate.MonthSummary]) Option {
	return func(t *Tracker) { t.views = c }
}

// Open loads the persisted state from store. Unreadable or corrupt keys
// start empty. Open does not take ownership of store.
func Open(ctx context.Context, store kv.Store, opts ...Option) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("open tracker: nil store")
	}
	t := &Tracker{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.views == nil {
		t.views = cache.NewLRUCache[aggregate.MonthSummary](defaultViewCacheSize, defaultViewCacheTTL)
	}
	if t.log == nil {
		t.log = applog.FromContext(ctx)
	}
	t.log = t.log.WithComponent(applog.ComponentTracker)

	t.entries = dedupe(load(ctx, t, kv.KeyEntries, []core.Entry{}), func(e core.Entry) string { return e.ID })
	t.tasks = dedupe(load(ctx, t, kv.KeyTasks, []core.Task{}), func(x core.Task) string { return x.ID })
	t.trash = normalizeTrash(load(ctx, t, kv.KeyTrash, core.Trash{}))
	t.darkMode = load(ctx, t, kv.KeyDarkMode, false)

	t.log.DebugContext(ctx, "Tracker state loaded",
		"entries", len(t.entries),
		"tasks", len(t.tasks),
		"trash", t.trash.Len())
	return t, nil
}

// Close releases the Tracker's caches. The store stays open.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.views.Purge()
	return nil
}

// DarkMode reports the persisted UI theme preference.
func (t *Tracker) DarkMode() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.darkMode
}

func (t *Tracker) SetDarkMode(ctx context.Context, on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.darkMode = on
	t.persist(ctx, kv.KeyDarkMode, on)
}

// Summary returns the aggregated view of month, memoised until the next
// entry mutation.
func (t *Tracker) Summary(month string) aggregate.MonthSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	key := fmt.Sprintf("%d|%s|%s", t.version, core.CurrentMonth(now), month)
	if s, ok := t.views.Get(key); ok {
		return s
	}
	s := aggregate.Summarize(t.entries, month, now)
	t.views.Set(key, s)

	t.log.Debug("Month summary computed",
		applog.FieldOperation, applog.OpSummary,
		applog.FieldMonth, month,
		applog.FieldCount, s.Count)
	return s
}

// load reads key for Open. Unreadable or corrupt values start from def.
func load[T any](ctx context.Context, t *Tracker, key string, def T) T {
	v, err := kv.Load(ctx, t.store, key, def)
	if err != nil {
		t.log.WarnContext(ctx, "Stored value unusable, starting empty",
			applog.FieldKey, key,
			applog.FieldError, err)
	}
	return v
}

// persist writes a single key. Failures are logged and swallowed; the
// in-memory state stays authoritative.
func (t *Tracker) persist(ctx context.Context, key string, v any) {
	if err := kv.Save(ctx, t.store, key, v); err != nil {
		t.log.WarnContext(ctx, "Persist failed, keeping in-memory state",
			applog.FieldKey, key,
			applog.FieldError, err)
	}
}

// persistMany writes several keys as one batch with the same policy as persist.
func (t *Tracker) persistMany(ctx context.Context, values map[string]any) {
	if err := kv.SaveMany(ctx, t.store, values); err != nil {
		t.log.WarnContext(ctx, "Persist failed, keeping in-memory state",
			applog.FieldCount, len(values),
			applog.FieldError, err)
	}
}

func (t *Tracker) entriesChanged() {
	t.version++
}

func (t *Tracker) today() core.Date {
	return core.DateOf(t.now())
}

// dedupe keeps the first occurrence of each id and never returns nil.
func dedupe[T any](items []T, id func(T) string) []T {
	out := make([]T, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		k := id(it)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

func normalizeTrash(tr core.Trash) core.Trash {
	return core.Trash{
		Expenses: dedupe(tr.Expenses, func(r core.TrashedEntry) string { return r.ID }),
		Tasks:    dedupe(tr.Tasks, func(r core.TrashedTask) string { return r.ID }),
	}
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, it := range items {
		if match(it) {
			return i
		}
	}
	return -1
}

func without[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

func prepend[T any](items []T, v ...T) []T {
	out := make([]T, 0, len(items)+len(v))
	out = append(out, v...)
	return append(out, items...)
}
