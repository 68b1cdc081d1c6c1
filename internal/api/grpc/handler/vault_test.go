package handler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	apicontext "github.com/dtroode/gophkeeper-vault/internal/api/context"
	"github.com/dtroode/gophkeeper-vault/internal/api/grpc/vaultapi"
	"github.com/dtroode/gophkeeper-vault/internal/model"
	"github.com/dtroode/gophkeeper-vault/internal/testutil"
)

type mockVaultService struct {
	mock.Mock
}

func (m *mockVaultService) Create(ctx context.Context, params model.CreateEntryParams) (model.Summary, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Summary), args.Error(1)
}

func (m *mockVaultService) List(ctx context.Context, ownerID uuid.UUID) ([]model.Summary, error) {
	args := m.Called(ctx, ownerID)
	summaries, _ := args.Get(0).([]model.Summary)
	return summaries, args.Error(1)
}

func (m *mockVaultService) Get(ctx context.Context, ownerID, recordID uuid.UUID) (model.Summary, error) {
	args := m.Called(ctx, ownerID, recordID)
	return args.Get(0).(model.Summary), args.Error(1)
}

func (m *mockVaultService) Reveal(ctx context.Context, ownerID, recordID uuid.UUID) (string, error) {
	args := m.Called(ctx, ownerID, recordID)
	return args.String(0), args.Error(1)
}

func (m *mockVaultService) Update(ctx context.Context, params model.UpdateEntryParams) (model.Summary, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.Summary), args.Error(1)
}

func (m *mockVaultService) Delete(ctx context.Context, ownerID, recordID uuid.UUID) error {
	return m.Called(ctx, ownerID, recordID).Error(0)
}

func newTestHandler(t *testing.T) (*Vault, *mockVaultService, context.Context, uuid.UUID) {
	t.Helper()
	svc := &mockVaultService{}
	t.Cleanup(func() { svc.AssertExpectations(t) })

	cm := apicontext.NewManager()
	ownerID := uuid.New()
	ctx := cm.SetOwnerIDToContext(context.Background(), ownerID)

	return NewVault(svc, cm, testutil.MakeNoopLogger()), svc, ctx, ownerID
}

func assertCode(t *testing.T, err error, want codes.Code) {
	t.Helper()
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, want, st.Code())
}

func sampleSummary() model.Summary {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return model.Summary{ID: uuid.New(), Label: "GitHub", AccountName: "octo", CreatedAt: now, UpdatedAt: now}
}

func TestVault_CreateEntry(t *testing.T) {
	t.Parallel()

	h, svc, ctx, ownerID := newTestHandler(t)
	requestID := uuid.New()
	summary := sampleSummary()

	svc.On("Create", mock.Anything, model.CreateEntryParams{
		OwnerID:     ownerID,
		Label:       "GitHub",
		AccountName: "octo",
		Secret:      "hunter2",
		RequestID:   requestID,
	}).Return(summary, nil)

	resp, err := h.CreateEntry(ctx, &vaultapi.CreateEntryRequest{
		Label:       "GitHub",
		AccountName: "octo",
		Secret:      "hunter2",
		RequestID:   requestID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, summary.ID.String(), resp.Entry.ID)
}

func TestVault_CreateEntry_BadRequestID(t *testing.T) {
	t.Parallel()

	h, _, ctx, _ := newTestHandler(t)
	_, err := h.CreateEntry(ctx, &vaultapi.CreateEntryRequest{Label: "a", AccountName: "b", Secret: "c", RequestID: "nope"})
	assertCode(t, err, codes.InvalidArgument)
}

func TestVault_RequiresOwnerInContext(t *testing.T) {
	t.Parallel()

	svc := &mockVaultService{}
	h := NewVault(svc, apicontext.NewManager(), testutil.MakeNoopLogger())
	ctx := context.Background()

	_, err := h.CreateEntry(ctx, &vaultapi.CreateEntryRequest{})
	assertCode(t, err, codes.Unauthenticated)
	_, err = h.ListEntries(ctx, &vaultapi.ListEntriesRequest{})
	assertCode(t, err, codes.Unauthenticated)
	_, err = h.RevealEntry(ctx, &vaultapi.RevealEntryRequest{RecordID: uuid.NewString()})
	assertCode(t, err, codes.Unauthenticated)

	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "Reveal", mock.Anything, mock.Anything, mock.Anything)
}

func TestVault_ListEntries(t *testing.T) {
	t.Parallel()

	h, svc, ctx, ownerID := newTestHandler(t)
	first, second := sampleSummary(), sampleSummary()
	svc.On("List", mock.Anything, ownerID).Return([]model.Summary{first, second}, nil)

	resp, err := h.ListEntries(ctx, &vaultapi.ListEntriesRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Entries, 2)
	assert.Equal(t, first.ID.String(), resp.Entries[0].ID)
	assert.Equal(t, second.ID.String(), resp.Entries[1].ID)
}

func TestVault_ListEntries_Empty(t *testing.T) {
	t.Parallel()

	h, svc, ctx, ownerID := newTestHandler(t)
	svc.On("List", mock.Anything, ownerID).Return([]model.Summary{}, nil)

	resp, err := h.ListEntries(ctx, &vaultapi.ListEntriesRequest{})
	require.NoError(t, err)
	assert.NotNil(t, resp.Entries)
	assert.Empty(t, resp.Entries)
}

func TestVault_GetEntry(t *testing.T) {
	t.Parallel()

	h, svc, ctx, ownerID := newTestHandler(t)
	summary := sampleSummary()
	svc.On("Get", mock.Anything, ownerID, summary.ID).Return(summary, nil)

	resp, err := h.GetEntry(ctx, &vaultapi.GetEntryRequest{RecordID: summary.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "GitHub", resp.Entry.Label)
}

func TestVault_MalformedRecordID(t *testing.T) {
	t.Parallel()

	h, _, ctx, _ := newTestHandler(t)

	_, err := h.GetEntry(ctx, &vaultapi.GetEntryRequest{RecordID: "not-a-uuid"})
	assertCode(t, err, codes.InvalidArgument)
	_, err = h.RevealEntry(ctx, &vaultapi.RevealEntryRequest{RecordID: ""})
	assertCode(t, err, codes.InvalidArgument)
	_, err = h.UpdateEntry(ctx, &vaultapi.UpdateEntryRequest{RecordID: "x"})
	assertCode(t, err, codes.InvalidArgument)
	_, err = h.DeleteEntry(ctx, &vaultapi.DeleteEntryRequest{RecordID: "x"})
	assertCode(t, err, codes.InvalidArgument)
}

func TestVault_RevealEntry(t *testing.T) {
	t.Parallel()

	h, svc, ctx, ownerID := newTestHandler(t)
	recordID := uuid.New()
	svc.On("Reveal", mock.Anything, ownerID, recordID).Return("hunter2", nil)

	resp, err := h.RevealEntry(ctx, &vaultapi.RevealEntryRequest{RecordID: recordID.String()})
	require.NoError(t, err)
	assert.Equal(t, "hunter2", resp.Secret)
}

func TestVault_RevealEntry_DecryptionFailed(t *testing.T) {
	t.Parallel()

	h, svc, ctx, ownerID := newTestHandler(t)
	recordID := uuid.New()
	svc.On("Reveal", mock.Anything, ownerID, recordID).
		Return("", fmt.Errorf("reveal entry: %w", model.ErrDecryptionFailed))

	_, err := h.RevealEntry(ctx, &vaultapi.RevealEntryRequest{RecordID: recordID.String()})
	assertCode(t, err, codes.DataLoss)
}

func TestVault_UpdateEntry_PassesOnlyPresentFields(t *testing.T) {
	t.Parallel()

	h, svc, ctx, ownerID := newTestHandler(t)
	summary := sampleSummary()
	label := "GitLab"

	svc.On("Update", mock.Anything, mock.MatchedBy(func(p model.UpdateEntryParams) bool {
		return p.OwnerID == ownerID && p.ID == summary.ID &&
			p.Label != nil && *p.Label == label &&
			p.Secret == nil && p.Notes == nil && p.Location == nil && p.AccountName == nil
	})).Return(summary, nil)

	_, err := h.UpdateEntry(ctx, &vaultapi.UpdateEntryRequest{RecordID: summary.ID.String(), Label: &label})
	require.NoError(t, err)
}

func TestVault_DeleteEntry(t *testing.T) {
	t.Parallel()

	h, svc, ctx, ownerID := newTestHandler(t)
	recordID := uuid.New()
	svc.On("Delete", mock.Anything, ownerID, recordID).Return(nil).Once()
	svc.On("Delete", mock.Anything, ownerID, recordID).Return(fmt.Errorf("delete entry: %w", model.ErrNotFound)).Once()

	resp, err := h.DeleteEntry(ctx, &vaultapi.DeleteEntryRequest{RecordID: recordID.String()})
	require.NoError(t, err)
	assert.True(t, resp.Deleted)

	_, err = h.DeleteEntry(ctx, &vaultapi.DeleteEntryRequest{RecordID: recordID.String()})
	assertCode(t, err, codes.NotFound)
}
