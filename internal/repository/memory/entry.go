// Package memory is an in-process EntryStore used for tests and single-node development.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dtroode/gophkeeper-vault/internal/model"
)

var _ model.EntryStore = (*EntryRepository)(nil)

type entryKey struct {
	owner  uuid.UUID
	record uuid.UUID
}

// EntryRepository keeps entries in a map. Values are copied on the way in and out.
type EntryRepository struct {
	mu      sync.RWMutex
	entries map[entryKey]model.Entry
}

func NewEntryRepository() *EntryRepository {
	return &EntryRepository{
		entries: make(map[entryKey]model.Entry),
	}
}

func (r *EntryRepository) Create(ctx context.Context, entry model.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := entryKey{owner: entry.OwnerID, record: entry.ID}
	if _, ok := r.entries[k]; ok {
		return model.ErrConflict
	}
	r.entries[k] = entry.Clone()
	return nil
}

func (r *EntryRepository) Replace(ctx context.Context, entry model.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := entryKey{owner: entry.OwnerID, record: entry.ID}
	current, ok := r.entries[k]
	if !ok {
		return model.ErrNotFound
	}
	entry = entry.Clone()
	entry.CreatedAt = current.CreatedAt
	r.entries[k] = entry
	return nil
}

func (r *EntryRepository) Get(ctx context.Context, ownerID, recordID uuid.UUID) (model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return model.Entry{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[entryKey{owner: ownerID, record: recordID}]
	if !ok {
		return model.Entry{}, model.ErrNotFound
	}
	return e.Clone(), nil
}

func (r *EntryRepository) Delete(ctx context.Context, ownerID, recordID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	k := entryKey{owner: ownerID, record: recordID}
	if _, ok := r.entries[k]; !ok {
		return model.ErrNotFound
	}
	delete(r.entries, k)
	return nil
}

func (r *EntryRepository) Scan(ctx context.Context, ownerID uuid.UUID) ([]model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Entry
	for k, e := range r.entries {
		if k.owner == ownerID {
			out = append(out, e.Clone())
		}
	}
	return out, nil
}

// Len reports the number of stored entries across all owners.
func (r *EntryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
