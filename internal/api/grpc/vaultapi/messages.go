package vaultapi

import "time"

// Entry is the public view of a vault entry. It never carries the secret.
type Entry struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Location    string    `json:"location,omitempty"`
	AccountName string    `json:"account_name"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateEntryRequest struct {
	Label       string `json:"label"`
	Location    string `json:"location,omitempty"`
	AccountName string `json:"account_name"`
	Secret      string `json:"secret"`
	Notes       string `json:"notes,omitempty"`
	// RequestID makes retries of the same create resolve to one entry.
	RequestID string `json:"request_id,omitempty"`
}

type EntryResponse struct {
	Entry Entry `json:"entry"`
}

type ListEntriesRequest struct{}

type ListEntriesResponse struct {
	Entries []Entry `json:"entries"`
}

type GetEntryRequest struct {
	RecordID string `json:"record_id"`
}

type RevealEntryRequest struct {
	RecordID string `json:"record_id"`
}

type RevealEntryResponse struct {
	Secret string `json:"secret"`
}

// UpdateEntryRequest changes only the fields that are present.
type UpdateEntryRequest struct {
	RecordID    string  `json:"record_id"`
	Label       *string `json:"label,omitempty"`
	Location    *string `json:"location,omitempty"`
	AccountName *string `json:"account_name,omitempty"`
	Notes       *string `json:"notes,omitempty"`
	Secret      *string `json:"secret,omitempty"`
}

type DeleteEntryRequest struct {
	RecordID string `json:"record_id"`
}

type DeleteEntryResponse struct {
	Deleted bool `json:"deleted"`
}
