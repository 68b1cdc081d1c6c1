package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dtroode/gophkeeper-vault/internal/api/grpc/vaultapi"
	"github.com/dtroode/gophkeeper-vault/internal/model"
)

func (rt *Router) createEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := rt.owner(w, r)
	if !ok {
		return
	}

	var req vaultapi.CreateEntryRequest
	if !rt.decode(w, r, &req) {
		return
	}

	var requestID uuid.UUID
	if req.RequestID != "" {
		var err error
		requestID, err = uuid.Parse(req.RequestID)
		if err != nil {
			writeError(w, &model.ValidationError{Field: "request_id", Reason: "must be a UUID"})
			return
		}
	}

	summary, err := rt.vaultService.Create(r.Context(), model.CreateEntryParams{
		OwnerID:     ownerID,
		Label:       req.Label,
		Location:    req.Location,
		AccountName: req.AccountName,
		Secret:      req.Secret,
		Notes:       req.Notes,
		RequestID:   requestID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, vaultapi.EntryResponse{Entry: vaultapi.EntryFromSummary(summary)})
}

func (rt *Router) listEntries(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := rt.owner(w, r)
	if !ok {
		return
	}

	summaries, err := rt.vaultService.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vaultapi.ListEntriesResponse{Entries: vaultapi.EntriesFromSummaries(summaries)})
}

func (rt *Router) getEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, recordID, ok := rt.target(w, r)
	if !ok {
		return
	}

	summary, err := rt.vaultService.Get(r.Context(), ownerID, recordID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vaultapi.EntryResponse{Entry: vaultapi.EntryFromSummary(summary)})
}

func (rt *Router) revealEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, recordID, ok := rt.target(w, r)
	if !ok {
		return
	}

	secret, err := rt.vaultService.Reveal(r.Context(), ownerID, recordID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vaultapi.RevealEntryResponse{Secret: secret})
}

func (rt *Router) updateEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, recordID, ok := rt.target(w, r)
	if !ok {
		return
	}

	var req vaultapi.UpdateEntryRequest
	if !rt.decode(w, r, &req) {
		return
	}

	summary, err := rt.vaultService.Update(r.Context(), model.UpdateEntryParams{
		OwnerID:     ownerID,
		ID:          recordID,
		Label:       req.Label,
		Location:    req.Location,
		AccountName: req.AccountName,
		Notes:       req.Notes,
		Secret:      req.Secret,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, vaultapi.EntryResponse{Entry: vaultapi.EntryFromSummary(summary)})
}

func (rt *Router) deleteEntry(w http.ResponseWriter, r *http.Request) {
	ownerID, recordID, ok := rt.target(w, r)
	if !ok {
		return
	}

	if err := rt.vaultService.Delete(r.Context(), ownerID, recordID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (rt *Router) owner(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	ownerID, ok := rt.contextManager.GetOwnerIDFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthenticated)
		return uuid.Nil, false
	}
	return ownerID, true
}

func (rt *Router) target(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	ownerID, ok := rt.owner(w, r)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}

	recordID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, &model.ValidationError{Field: "id", Reason: "must be a UUID"})
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, recordID, true
}

// decode reads a JSON body into v. Unknown fields, owner ids included, are ignored.
func (rt *Router) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		rt.logger.DebugContext(r.Context(), "HTTP router: malformed request body",
			"error", err.Error())
		writeError(w, fmt.Errorf("decode body: %w", model.ErrInvalidInput))
		return false
	}
	return true
}
