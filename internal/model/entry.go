package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Field bounds, measured in runes except MaxSecretBytes.
const (
	MaxLabelLength       = 128
	MaxLocationLength    = 256
	MaxAccountNameLength = 128
	MaxNotesLength       = 4096
	MaxSecretBytes       = 4096
)

// EntryStore persists vault entries keyed by (owner id, record id).
// Implementations store SecretCiphertext as an opaque blob.
type EntryStore interface {
	// Create inserts a new entry. Returns ErrConflict if the key already exists.
	Create(ctx context.Context, entry Entry) error
	// Replace overwrites an existing entry. Returns ErrNotFound if the key is absent.
	Replace(ctx context.Context, entry Entry) error
	Get(ctx context.Context, ownerID, recordID uuid.UUID) (Entry, error)
	Delete(ctx context.Context, ownerID, recordID uuid.UUID) error
	// Scan returns every entry of the owner in no particular order.
	Scan(ctx context.Context, ownerID uuid.UUID) ([]Entry, error)
}

// Entry is a single stored secret record.
type Entry struct {
	OwnerID          uuid.UUID
	ID               uuid.UUID
	Label            string
	Location         string
	AccountName      string
	SecretCiphertext []byte
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Summary is an entry without its secret. It is the only shape returned to callers
// by read and write operations.
type Summary struct {
	ID          uuid.UUID
	Label       string
	Location    string
	AccountName string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Summary strips the secret and owner from the entry.
func (e Entry) Summary() Summary {
	return Summary{
		ID:          e.ID,
		Label:       e.Label,
		Location:    e.Location,
		AccountName: e.AccountName,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// Clone returns a deep copy of the entry.
func (e Entry) Clone() Entry {
	if e.SecretCiphertext != nil {
		e.SecretCiphertext = append([]byte(nil), e.SecretCiphertext...)
	}
	return e
}

// CreateEntryParams contains parameters to create an entry.
type CreateEntryParams struct {
	OwnerID     uuid.UUID
	Label       string
	Location    string
	AccountName string
	Secret      string
	Notes       string
	// RequestID makes Create idempotent: retries with the same value resolve to
	// the same record. Zero means no idempotency.
	RequestID uuid.UUID
}

// UpdateEntryParams contains parameters to update an entry. Nil fields are left unchanged.
type UpdateEntryParams struct {
	OwnerID     uuid.UUID
	ID          uuid.UUID
	Label       *string
	Location    *string
	AccountName *string
	Notes       *string
	Secret      *string
}
