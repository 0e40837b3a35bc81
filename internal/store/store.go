// Package store owns the flat-file record collections: one directory per
// collection under the data root, one tabular sheet file per collection.
// Every mutation is a full-file read-modify-write executed under the
// collection's write lock.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/wardroom/messbook/internal/codec"
	"github.com/wardroom/messbook/internal/model"
)

// sheetFile is the fixed on-disk name of a collection's data file.
const sheetFile = "sheet.csv"

// Store reads and writes named record collections below a single data root.
type Store struct {
	root  string
	locks *LockManager
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data root: %w", err)
	}
	return &Store{root: dir, locks: NewLockManager()}, nil
}

// Root returns the data root directory.
func (s *Store) Root() string { return s.root }

func (s *Store) path(name string) string {
	return filepath.Join(s.root, name, sheetFile)
}

// NewID returns a fresh record id: unix milliseconds plus a random suffix,
// so ids sort roughly by creation time and cannot collide within one
// clock tick.
func NewID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// List returns the collection's records in file order, or an empty slice if
// the collection has never been written.
func (s *Store) List(name string) ([]codec.Record, error) {
	unlock := s.locks.RLock(name)
	defer unlock()
	_, records, err := s.read(name)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []codec.Record{}
	}
	return records, nil
}

// Append assigns a fresh id, stamps a creation timestamp (unless the caller
// supplied one), recomputes the union header and rewrites the file. The
// stored record is returned.
func (s *Store) Append(name string, fields codec.Record) (codec.Record, error) {
	var out codec.Record
	err := s.Mutate(name, func(tx *Tx) error {
		out = tx.Append(fields)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateByID shallow-merges fields over the record with the given id. The
// id is preserved regardless of what is passed. Returns the merged record,
// or RecordNotFound if the id is unknown (in which case the file is not
// rewritten).
func (s *Store) UpdateByID(name, id string, fields codec.Record) (codec.Record, error) {
	var out codec.Record
	err := s.Mutate(name, func(tx *Tx) error {
		rec, ok := tx.Find(model.FieldID, id)
		if !ok {
			return model.RecordNotFound(name, id)
		}
		for k, v := range fields {
			rec[k] = v
		}
		rec[model.FieldID] = codec.String(id)
		tx.MarkDirty()
		out = rec.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByID removes the record with the given id. Deleting the last record
// leaves the file holding only the header frozen at its pre-deletion state.
// An unknown id returns RecordNotFound without rewriting the file.
func (s *Store) DeleteByID(name, id string) error {
	return s.Mutate(name, func(tx *Tx) error {
		idx := -1
		for i, rec := range tx.records {
			if rec[model.FieldID].AsString() == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return model.RecordNotFound(name, id)
		}
		tx.records = append(tx.records[:idx], tx.records[idx+1:]...)
		tx.MarkDirty()
		return nil
	})
}

// Mutate runs fn as one read-modify-write cycle under the collection's
// write lock. The file is rewritten only when fn marks the transaction
// dirty; any error from fn aborts the write and is returned unchanged.
func (s *Store) Mutate(name string, fn func(tx *Tx) error) error {
	unlock := s.locks.Lock(name)
	defer unlock()

	header, records, err := s.read(name)
	if err != nil {
		return err
	}
	tx := &Tx{collection: name, header: header, records: records}
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.dirty {
		return nil
	}
	return s.write(name, tx.flushHeader(), tx.records)
}

func (s *Store) read(name string) ([]string, []codec.Record, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, model.StorageIO("read", name, err)
	}
	header, records, err := codec.Decode(data)
	if err != nil {
		return nil, nil, model.StorageIO("decode", name, err)
	}
	return header, records, nil
}

// write replaces the sheet file via a temp file and rename so a concurrent
// reader in another process never observes a torn file.
func (s *Store) write(name string, header []string, records []codec.Record) error {
	dir := filepath.Dir(s.path(name))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.StorageIO("write", name, err)
	}
	tmp, err := os.CreateTemp(dir, sheetFile+".*")
	if err != nil {
		return model.StorageIO("write", name, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(codec.Encode(header, records)); err != nil {
		_ = tmp.Close()
		return model.StorageIO("write", name, err)
	}
	if err := tmp.Close(); err != nil {
		return model.StorageIO("write", name, err)
	}
	if err := os.Rename(tmp.Name(), s.path(name)); err != nil {
		return model.StorageIO("write", name, err)
	}
	return nil
}

// Tx is the in-memory state of one read-modify-write cycle.
type Tx struct {
	collection string
	header     []string
	records    []codec.Record
	dirty      bool
}

// Records exposes the live record slice; mutations through the returned
// records are persisted when the transaction is marked dirty.
func (t *Tx) Records() []codec.Record { return t.records }

// Find returns the first record whose field matches value as text.
func (t *Tx) Find(field, value string) (codec.Record, bool) {
	for _, rec := range t.records {
		if rec[field].AsString() == value {
			return rec, true
		}
	}
	return nil, false
}

// Append stamps id and timestamp (keeping a caller-supplied timestamp) and
// adds the record to the transaction.
func (t *Tx) Append(fields codec.Record) codec.Record {
	rec := fields.Clone()
	rec[model.FieldID] = codec.String(NewID())
	if rec[model.FieldTimestamp].IsEmpty() {
		rec[model.FieldTimestamp] = codec.String(time.Now().UTC().Format(time.RFC3339))
	}
	t.records = append(t.records, rec)
	t.dirty = true
	return rec
}

// MarkDirty flags the transaction so the file is rewritten on return.
func (t *Tx) MarkDirty() { t.dirty = true }

// flushHeader recomputes the union header over the live records. Surviving
// fields keep the stored header's order; fields introduced by this write are
// appended in sorted order so the union is deterministic. An emptied
// collection keeps its pre-deletion header.
//
// Empty cells do not keep a field alive: decoding materializes every header
// field on every record, so a field counts as live only where some record
// holds a non-empty value. The codec already makes "" and absent
// indistinguishable.
func (t *Tx) flushHeader() []string {
	if len(t.records) == 0 {
		return t.header
	}
	live := make(map[string]bool)
	for _, rec := range t.records {
		for k, v := range rec {
			if v.IsEmpty() {
				continue
			}
			live[k] = true
		}
	}
	header := make([]string, 0, len(live))
	seen := make(map[string]bool, len(live))
	for _, h := range t.header {
		if live[h] && !seen[h] {
			header = append(header, h)
			seen[h] = true
		}
	}
	var fresh []string
	for k := range live {
		if !seen[k] {
			fresh = append(fresh, k)
		}
	}
	sort.Strings(fresh)
	return append(header, fresh...)
}
