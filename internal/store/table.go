package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/five82/hireboard/internal/domain"
)

// ErrCorrupt wraps records whose stored bytes no longer decode.
var ErrCorrupt = errors.New("corrupt record")

const sep = "\x00"

// Schema declares a table: its name, ordered scan key, secondary indexes and
// the write hook that stamps timestamps.
type Schema[T domain.Record] struct {
	Name    string
	SortKey func(T) string
	Indexes map[string]func(T) string

	// Stamp runs on every write. created is the creation time already on
	// disk (zero on insert) and now is the write time.
	Stamp func(rec T, created, now time.Time) T

	// Created reads the creation time back for update stamping.
	Created func(T) time.Time
}

// Table is a typed view over one table of a DB.
type Table[T domain.Record] struct {
	schema Schema[T]
	now    func() time.Time
}

// NewTable declares a table from schema.
func NewTable[T domain.Record](schema Schema[T]) *Table[T] {
	return &Table[T]{schema: schema, now: time.Now}
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.schema.Name }

func (t *Table[T]) recordKey(id string) []byte {
	return []byte(joinKey("r", t.schema.Name, id))
}

func (t *Table[T]) sortKey(rec T) []byte {
	var sk string
	if t.schema.SortKey != nil {
		sk = t.schema.SortKey(rec)
	}
	return []byte(joinKey("s", t.schema.Name, sk, rec.Key()))
}

func (t *Table[T]) indexKey(index, value, id string) []byte {
	return []byte(joinKey("x", t.schema.Name, index, value, id))
}

// Get returns the record with id or ErrNotFound.
func (t *Table[T]) Get(tx *Tx, id string) (T, error) {
	var zero T
	raw, err := tx.get(t.recordKey(id))
	if err != nil {
		return zero, err
	}
	return t.decode(id, raw)
}

// Scan returns every record ordered by the declared sort key.
func (t *Table[T]) Scan(tx *Tx) ([]T, error) {
	ids, err := t.idsUnder(tx, joinKey("s", t.schema.Name)+sep)
	if err != nil {
		return nil, err
	}
	return t.getAll(tx, ids)
}

// ScanIndex returns records whose index value equals value, ordered by id.
func (t *Table[T]) ScanIndex(tx *Tx, index, value string) ([]T, error) {
	if _, ok := t.schema.Indexes[index]; !ok {
		return nil, fmt.Errorf("table %s has no index %q", t.schema.Name, index)
	}
	ids, err := t.idsUnder(tx, joinKey("x", t.schema.Name, index, value)+sep)
	if err != nil {
		return nil, err
	}
	return t.getAll(tx, ids)
}

// Count returns the number of stored records.
func (t *Table[T]) Count(tx *Tx) (int, error) {
	n := 0
	err := tx.scanPrefix([]byte(joinKey("r", t.schema.Name)+sep), true, func(_, _ []byte) error {
		n++
		return nil
	})
	return n, err
}

// IDs returns every stored id in key order.
func (t *Table[T]) IDs(tx *Tx) ([]string, error) {
	prefix := []byte(joinKey("r", t.schema.Name) + sep)
	var ids []string
	err := tx.scanPrefix(prefix, true, func(key, _ []byte) error {
		ids = append(ids, string(key[len(prefix):]))
		return nil
	})
	return ids, err
}

// PutAll upserts recs, running the stamp hook, and returns the stamped records.
func (t *Table[T]) PutAll(tx *Tx, recs ...T) ([]T, error) {
	now := t.now()
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		id := rec.Key()
		if id == "" {
			return nil, fmt.Errorf("put %s: empty id", t.schema.Name)
		}
		var created time.Time
		prev, err := t.Get(tx, id)
		switch {
		case err == nil:
			if t.schema.Created != nil {
				created = t.schema.Created(prev)
			}
			if err := t.dropKeys(tx, prev); err != nil {
				return nil, err
			}
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrCorrupt):
		default:
			return nil, err
		}
		if t.schema.Stamp != nil {
			rec = t.schema.Stamp(rec, created, now)
		}
		if err := t.write(tx, rec); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// DeleteAll removes ids; missing ids are ignored.
func (t *Table[T]) DeleteAll(tx *Tx, ids ...string) error {
	for _, id := range ids {
		prev, err := t.Get(tx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil && !errors.Is(err, ErrCorrupt) {
			return err
		}
		if err == nil {
			if err := t.dropKeys(tx, prev); err != nil {
				return err
			}
		}
		if err := tx.del(t.recordKey(id)); err != nil {
			return fmt.Errorf("delete %s/%s: %w", t.schema.Name, id, err)
		}
	}
	return nil
}

// Replace makes the table hold exactly recs: stale ids are deleted and the
// rest upserted.
func (t *Table[T]) Replace(tx *Tx, recs []T) error {
	keep := make(map[string]bool, len(recs))
	for _, rec := range recs {
		keep[rec.Key()] = true
	}
	ids, err := t.IDs(tx)
	if err != nil {
		return err
	}
	var stale []string
	for _, id := range ids {
		if !keep[id] {
			stale = append(stale, id)
		}
	}
	if err := t.DeleteAll(tx, stale...); err != nil {
		return err
	}
	_, err = t.PutAll(tx, recs...)
	return err
}

func (t *Table[T]) write(tx *Tx, rec T) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", t.schema.Name, rec.Key(), err)
	}
	id := []byte(rec.Key())
	if err := tx.set(t.recordKey(rec.Key()), raw); err != nil {
		return fmt.Errorf("write %s/%s: %w", t.schema.Name, rec.Key(), err)
	}
	if err := tx.set(t.sortKey(rec), id); err != nil {
		return err
	}
	for name, fn := range t.schema.Indexes {
		if err := tx.set(t.indexKey(name, fn(rec), rec.Key()), id); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table[T]) dropKeys(tx *Tx, rec T) error {
	if err := tx.del(t.sortKey(rec)); err != nil {
		return err
	}
	for name, fn := range t.schema.Indexes {
		if err := tx.del(t.indexKey(name, fn(rec), rec.Key())); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table[T]) decode(id string, raw []byte) (T, error) {
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, fmt.Errorf("%w: %s/%s: %v", ErrCorrupt, t.schema.Name, id, err)
	}
	return rec, nil
}

func (t *Table[T]) idsUnder(tx *Tx, prefix string) ([]string, error) {
	var ids []string
	err := tx.scanPrefix([]byte(prefix), false, func(_, value []byte) error {
		ids = append(ids, string(value))
		return nil
	})
	return ids, err
}

func (t *Table[T]) getAll(tx *Tx, ids []string) ([]T, error) {
	out := make([]T, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		rec, err := t.Get(tx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func joinKey(parts ...string) string {
	return strings.Join(parts, sep)
}
