package handler

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/gophkeeper-vault/internal/api/grpc/vaultapi"
	"github.com/dtroode/gophkeeper-vault/internal/logger"
	"github.com/dtroode/gophkeeper-vault/internal/model"
)

// VaultService defines business operations on vault entries.
type VaultService interface {
	Create(ctx context.Context, params model.CreateEntryParams) (model.Summary, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Summary, error)
	Get(ctx context.Context, ownerID, recordID uuid.UUID) (model.Summary, error)
	Reveal(ctx context.Context, ownerID, recordID uuid.UUID) (string, error)
	Update(ctx context.Context, params model.UpdateEntryParams) (model.Summary, error)
	Delete(ctx context.Context, ownerID, recordID uuid.UUID) error
}

// Vault handles gRPC endpoints for vault entries.
type Vault struct {
	vaultapi.UnimplementedVaultServer
	vaultService   VaultService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewVault creates a new Vault handler.
func NewVault(vaultService VaultService, contextManager model.ContextManager, logger *logger.Logger) *Vault {
	return &Vault{
		vaultService:   vaultService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// CreateEntry stores a new entry for the caller.
func (h *Vault) CreateEntry(ctx context.Context, req *vaultapi.CreateEntryRequest) (*vaultapi.EntryResponse, error) {
	h.logger.DebugContext(ctx, "Vault handler: processing create entry request",
		"has_request_id", req.RequestID != "")

	ownerID, err := h.extractOwnerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var requestID uuid.UUID
	if req.RequestID != "" {
		requestID, err = uuid.Parse(req.RequestID)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "invalid request_id: must be a UUID")
		}
	}

	summary, err := h.vaultService.Create(ctx, model.CreateEntryParams{
		OwnerID:     ownerID,
		Label:       req.Label,
		Location:    req.Location,
		AccountName: req.AccountName,
		Secret:      req.Secret,
		Notes:       req.Notes,
		RequestID:   requestID,
	})
	if err != nil {
		return nil, handleError(err)
	}

	return &vaultapi.EntryResponse{Entry: vaultapi.EntryFromSummary(summary)}, nil
}

// ListEntries returns summaries of every entry the caller owns.
func (h *Vault) ListEntries(ctx context.Context, _ *vaultapi.ListEntriesRequest) (*vaultapi.ListEntriesResponse, error) {
	ownerID, err := h.extractOwnerIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	summaries, err := h.vaultService.List(ctx, ownerID)
	if err != nil {
		return nil, handleError(err)
	}

	return &vaultapi.ListEntriesResponse{Entries: vaultapi.EntriesFromSummaries(summaries)}, nil
}

func (h *Vault) GetEntry(ctx context.Context, req *vaultapi.GetEntryRequest) (*vaultapi.EntryResponse, error) {
	ownerID, recordID, err := h.target(ctx, req.RecordID)
	if err != nil {
		return nil, err
	}

	summary, err := h.vaultService.Get(ctx, ownerID, recordID)
	if err != nil {
		return nil, handleError(err)
	}

	return &vaultapi.EntryResponse{Entry: vaultapi.EntryFromSummary(summary)}, nil
}

// RevealEntry returns the plaintext secret of one entry.
func (h *Vault) RevealEntry(ctx context.Context, req *vaultapi.RevealEntryRequest) (*vaultapi.RevealEntryResponse, error) {
	ownerID, recordID, err := h.target(ctx, req.RecordID)
	if err != nil {
		return nil, err
	}

	secret, err := h.vaultService.Reveal(ctx, ownerID, recordID)
	if err != nil {
		return nil, handleError(err)
	}

	return &vaultapi.RevealEntryResponse{Secret: secret}, nil
}

func (h *Vault) UpdateEntry(ctx context.Context, req *vaultapi.UpdateEntryRequest) (*vaultapi.EntryResponse, error) {
	ownerID, recordID, err := h.target(ctx, req.RecordID)
	if err != nil {
		return nil, err
	}

	summary, err := h.vaultService.Update(ctx, model.UpdateEntryParams{
		OwnerID:     ownerID,
		ID:          recordID,
		Label:       req.Label,
		Location:    req.Location,
		AccountName: req.AccountName,
		Notes:       req.Notes,
		Secret:      req.Secret,
	})
	if err != nil {
		return nil, handleError(err)
	}

	return &vaultapi.EntryResponse{Entry: vaultapi.EntryFromSummary(summary)}, nil
}

func (h *Vault) DeleteEntry(ctx context.Context, req *vaultapi.DeleteEntryRequest) (*vaultapi.DeleteEntryResponse, error) {
	ownerID, recordID, err := h.target(ctx, req.RecordID)
	if err != nil {
		return nil, err
	}

	if err := h.vaultService.Delete(ctx, ownerID, recordID); err != nil {
		return nil, handleError(err)
	}

	return &vaultapi.DeleteEntryResponse{Deleted: true}, nil
}

func (h *Vault) target(ctx context.Context, rawRecordID string) (uuid.UUID, uuid.UUID, error) {
	ownerID, err := h.extractOwnerIDFromContext(ctx)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	recordID, err := uuid.Parse(rawRecordID)
	if err != nil {
		h.logger.DebugContext(ctx, "Vault handler: malformed record id")
		return uuid.Nil, uuid.Nil, status.Error(codes.InvalidArgument, "invalid record_id: must be a UUID")
	}

	return ownerID, recordID, nil
}

func (h *Vault) extractOwnerIDFromContext(ctx context.Context) (uuid.UUID, error) {
	ownerID, ok := h.contextManager.GetOwnerIDFromContext(ctx)
	if !ok {
		return uuid.Nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return ownerID, nil
}
