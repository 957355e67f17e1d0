package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt marks a stored value that is not valid JSON for its key.
var ErrCorrupt = errors.New("corrupt value")

// Load decodes the JSON value under key into a T. A missing key yields def
// and no error. A read failure or an unparseable value also yields def,
// together with the error so the caller can report it.
func Load[T any](ctx context.Context, r Reader, key string, def T) (T, error) {
	raw, found, err := r.Get(ctx, key)
	if err != nil {
		return def, fmt.Errorf("load %s: %w", key, err)
	}
	if !found || len(raw) == 0 {
		return def, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return def, fmt.Errorf("load %s: %w: %v", key, ErrCorrupt, err)
	}
	return v, nil
}

// Encode marshals v into a Write for key.
func Encode(key string, v any) (Write, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Write{}, fmt.Errorf("encode %s: %w", key, err)
	}
	return Write{Key: key, Value: b}, nil
}

// Save encodes v as JSON and stores it under key.
func Save(ctx context.Context, w Writer, key string, v any) error {
	wr, err := Encode(key, v)
	if err != nil {
		return err
	}
	if err := w.Put(ctx, wr.Key, wr.Value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SaveMany encodes several values and stores them as one batch.
func SaveMany(ctx context.Context, w Writer, values map[string]any) error {
	writes := make([]Write, 0, len(values))
	for _, key := range sortedKeys(values) {
		wr, err := Encode(key, values[key])
		if err != nil {
			return err
		}
		writes = append(writes, wr)
	}
	if err := w.PutMany(ctx, writes); err != nil {
		return fmt.Errorf("save batch: %w", err)
	}
	return nil
}
