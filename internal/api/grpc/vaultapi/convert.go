package vaultapi

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dtroode/gophkeeper-vault/internal/model"
)

// EntryFromSummary converts a service summary to its wire form.
func EntryFromSummary(s model.Summary) Entry {
	return Entry{
		ID:          s.ID.String(),
		Label:       s.Label,
		Location:    s.Location,
		AccountName: s.AccountName,
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// EntriesFromSummaries keeps the order of summaries and never returns nil.
func EntriesFromSummaries(summaries []model.Summary) []Entry {
	entries := make([]Entry, 0, len(summaries))
	for _, s := range summaries {
		entries = append(entries, EntryFromSummary(s))
	}
	return entries
}

// Summary converts a wire entry back to a service summary.
func (e Entry) Summary() (model.Summary, error) {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return model.Summary{}, fmt.Errorf("parse entry id: %w", err)
	}
	return model.Summary{
		ID:          id,
		Label:       e.Label,
		Location:    e.Location,
		AccountName: e.AccountName,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}, nil
}
