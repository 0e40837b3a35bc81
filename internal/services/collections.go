// Package services exposes the data-access contract the UI layer calls.
// CollectionService is the only surface above the store and the ledger.
package services

import (
	"context"

	"github.com/wardroom/messbook/internal/codec"
	"github.com/wardroom/messbook/internal/ledger"
	"github.com/wardroom/messbook/internal/model"
	"github.com/wardroom/messbook/internal/store"
)

// Filter narrows a listing: Equals matches fields by their canonical cell
// text; From/To bound the record's date field lexicographically (ISO dates
// order correctly as strings).
type Filter struct {
	Equals map[string]string
	From   string
	To     string
}

func (f Filter) empty() bool {
	return len(f.Equals) == 0 && f.From == "" && f.To == ""
}

func (f Filter) matches(rec codec.Record) bool {
	for field, want := range f.Equals {
		if rec[field].Cell() != want {
			return false
		}
	}
	if f.From != "" || f.To != "" {
		date := rec[model.FieldDate].AsString()
		if f.From != "" && date < f.From {
			return false
		}
		if f.To != "" && date > f.To {
			return false
		}
	}
	return true
}

// CollectionService routes inserts into ledger-linked collections through
// the ledger coordinator and everything else straight to the store.
type CollectionService struct {
	store  *store.Store
	ledger *ledger.Coordinator
}

func NewCollectionService(st *store.Store, lc *ledger.Coordinator) *CollectionService {
	return &CollectionService{store: st, ledger: lc}
}

// List returns the collection's records, filtered.
func (s *CollectionService) List(ctx context.Context, collection string, filter Filter) ([]codec.Record, error) {
	records, err := s.store.List(collection)
	if err != nil {
		return nil, err
	}
	if filter.empty() {
		return records, nil
	}
	out := make([]codec.Record, 0, len(records))
	for _, rec := range records {
		if filter.matches(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Add inserts a record. Ledger-linked collections validate and mutate stock
// first; the returned record carries the captured cost figures.
func (s *CollectionService) Add(ctx context.Context, collection string, fields codec.Record) (codec.Record, error) {
	if model.IsLedgerLinked(collection) {
		return s.ledger.RecordEvent(ctx, collection, fields)
	}
	return s.store.Append(collection, fields)
}

// Update shallow-merges fields over the record with the given id.
func (s *CollectionService) Update(ctx context.Context, collection, id string, fields codec.Record) (codec.Record, error) {
	return s.store.UpdateByID(collection, id, fields)
}

// Remove deletes the record with the given id.
func (s *CollectionService) Remove(ctx context.Context, collection, id string) error {
	return s.store.DeleteByID(collection, id)
}
