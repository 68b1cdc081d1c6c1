package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/gophkeeper-vault/internal/model"
)

// MockEntryStore mocks the EntryStore interface
type MockEntryStore struct {
	mock.Mock
}

func (m *MockEntryStore) Create(ctx context.Context, entry model.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryStore) Replace(ctx context.Context, entry model.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryStore) Get(ctx context.Context, ownerID, recordID uuid.UUID) (model.Entry, error) {
	args := m.Called(ctx, ownerID, recordID)
	return args.Get(0).(model.Entry), args.Error(1)
}

func (m *MockEntryStore) Delete(ctx context.Context, ownerID, recordID uuid.UUID) error {
	args := m.Called(ctx, ownerID, recordID)
	return args.Error(0)
}

func (m *MockEntryStore) Scan(ctx context.Context, ownerID uuid.UUID) ([]model.Entry, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.Entry), args.Error(1)
}

// MockCipher mocks the Cipher interface
type MockCipher struct {
	mock.Mock
}

func (m *MockCipher) Seal(ctx context.Context, ownerID uuid.UUID, plaintext []byte) ([]byte, error) {
	args := m.Called(ctx, ownerID, plaintext)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *MockCipher) Open(ctx context.Context, ownerID uuid.UUID, blob []byte) ([]byte, error) {
	args := m.Called(ctx, ownerID, blob)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

// MockTokenManager mocks the TokenManager interface
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateAccessToken(ownerID uuid.UUID) (string, error) {
	args := m.Called(ownerID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) ParseAccessToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
