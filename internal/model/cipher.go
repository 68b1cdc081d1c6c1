package model

import (
	"context"

	"github.com/google/uuid"
)

// Cipher seals and opens secret values bound to an owner.
type Cipher interface {
	Seal(ctx context.Context, ownerID uuid.UUID, plaintext []byte) ([]byte, error)
	Open(ctx context.Context, ownerID uuid.UUID, blob []byte) ([]byte, error)
}

// KeyService wraps and unwraps data keys without exposing key material.
// The encryption context is authenticated: Decrypt must fail with
// ErrDecryptionFailed when it differs from the one used by Encrypt.
// Decrypt takes the key id recorded at wrap time, so data wrapped under an
// earlier KeyID stays readable after the configured id changes.
type KeyService interface {
	KeyID() string
	Encrypt(ctx context.Context, plaintext []byte, encryptionContext map[string]string) ([]byte, error)
	Decrypt(ctx context.Context, keyID string, ciphertext []byte, encryptionContext map[string]string) ([]byte, error)
}
