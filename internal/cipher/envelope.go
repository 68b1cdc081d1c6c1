// Package cipher implements envelope encryption of secret values.
//
// Every Seal generates a fresh data key, encrypts the plaintext with
// XChaCha20-Poly1305 and wraps the data key through a model.KeyService. The
// result is encoded as a small protobuf-wire message:
//
//	1: format version (varint)
//	2: key id (bytes)
//	3: wrapped data key (bytes)
//	4: nonce (bytes)
//	5: ciphertext with tag (bytes)
package cipher

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/awnumar/memguard"
	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/dtroode/gophkeeper-vault/internal/model"
)

const defaultKMSTimeout = 5 * time.Second

var _ model.Cipher = (*Envelope)(nil)

// Envelope seals and opens secret values bound to an owner.
type Envelope struct {
	keys       model.KeyService
	kmsTimeout time.Duration
}

// Option configures Envelope.
type Option func(*Envelope)

// WithKMSTimeout bounds each key service call.
func WithKMSTimeout(d time.Duration) Option {
	return func(e *Envelope) {
		if d > 0 {
			e.kmsTimeout = d
		}
	}
}

// NewEnvelope creates an envelope cipher over the key service.
func NewEnvelope(keys model.KeyService, opts ...Option) *Envelope {
	e := &Envelope{keys: keys, kmsTimeout: defaultKMSTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Seal encrypts plaintext for ownerID.
func (e *Envelope) Seal(ctx context.Context, ownerID uuid.UUID, plaintext []byte) ([]byte, error) {
	dek := make([]byte, chacha20poly1305.KeySize)
	defer memguard.WipeBytes(dek)
	if _, err := rand.Read(dek); err != nil {
		return nil, fmt.Errorf("%w: generate data key: %w", model.ErrDependencyUnavailable, err)
	}

	aead, err := chacha20poly1305.NewX(dek)
	if err != nil {
		return nil, fmt.Errorf("%w: init aead: %w", model.ErrDependencyUnavailable, err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: generate nonce: %w", model.ErrDependencyUnavailable, err)
	}
	keyID := e.keys.KeyID()
	ciphertext := aead.Seal(nil, nonce, plaintext, associatedData(ownerID, keyID))

	kmsCtx, cancel := context.WithTimeout(ctx, e.kmsTimeout)
	defer cancel()
	wrapped, err := e.keys.Encrypt(kmsCtx, dek, encryptionContext(ownerID))
	if err != nil {
		return nil, keyServiceError("wrap data key", err)
	}

	return envelope{
		version:    formatVersion,
		keyID:      keyID,
		wrappedDEK: wrapped,
		nonce:      nonce,
		ciphertext: ciphertext,
	}.marshal(), nil
}

// Open decrypts a blob produced by Seal for the same owner. It never returns
// partial plaintext.
func (e *Envelope) Open(ctx context.Context, ownerID uuid.UUID, blob []byte) ([]byte, error) {
	env, err := unmarshalEnvelope(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrDecryptionFailed, err)
	}

	kmsCtx, cancel := context.WithTimeout(ctx, e.kmsTimeout)
	defer cancel()
	dek, err := e.keys.Decrypt(kmsCtx, env.keyID, env.wrappedDEK, encryptionContext(ownerID))
	if err != nil {
		return nil, keyServiceError("unwrap data key", err)
	}
	defer memguard.WipeBytes(dek)

	if len(dek) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: data key has %d bytes", model.ErrDecryptionFailed, len(dek))
	}
	aead, err := chacha20poly1305.NewX(dek)
	if err != nil {
		return nil, fmt.Errorf("%w: init aead: %w", model.ErrDecryptionFailed, err)
	}
	plaintext, err := aead.Open(nil, env.nonce, env.ciphertext, associatedData(ownerID, env.keyID))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// associatedData binds the ciphertext to its owner and to the key id recorded in the blob.
func associatedData(ownerID uuid.UUID, keyID string) []byte {
	return []byte("gophkeeper-vault:v1:owner:" + ownerID.String() + ":key:" + keyID)
}

func encryptionContext(ownerID uuid.UUID) map[string]string {
	return map[string]string{"owner_id": ownerID.String()}
}

// keyServiceError keeps DecryptionFailed from the key service and treats
// everything else as an unavailable dependency.
func keyServiceError(op string, err error) error {
	if errors.Is(err, model.ErrDecryptionFailed) || errors.Is(err, model.ErrDependencyUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %w", model.ErrDependencyUnavailable, op, err)
}
