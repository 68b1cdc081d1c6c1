// Package kms provides key services that wrap data keys for the envelope cipher.
package kms

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/awnumar/memguard"
	"golang.org/x/crypto/hkdf"

	"github.com/dtroode/gophkeeper-vault/internal/model"
)

const masterKeySize = 32

var _ model.KeyService = (*Local)(nil)

// Local is an in-process key service. The master key lives in a memguard
// enclave and is only decrypted for the duration of a single operation.
type Local struct {
	keyID  string
	master *memguard.Enclave
}

// NewLocal creates a Local key service. masterKey is wiped after it is sealed
// into the enclave. A nil masterKey generates a random ephemeral key.
func NewLocal(keyID string, masterKey []byte) (*Local, error) {
	if keyID == "" {
		return nil, fmt.Errorf("key id is required")
	}
	if masterKey == nil {
		return &Local{keyID: keyID, master: memguard.NewEnclaveRandom(masterKeySize)}, nil
	}
	if len(masterKey) != masterKeySize {
		return nil, fmt.Errorf("master key must be %d bytes, got %d", masterKeySize, len(masterKey))
	}
	return &Local{keyID: keyID, master: memguard.NewEnclave(masterKey)}, nil
}

// KeyID returns the identifier of the wrapping key.
func (l *Local) KeyID() string {
	return l.keyID
}

// Encrypt wraps plaintext under the derived key, authenticating encryptionContext.
func (l *Local) Encrypt(ctx context.Context, plaintext []byte, encryptionContext map[string]string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrDependencyUnavailable, err)
	}

	aead, err := l.aead(l.keyID)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return aead.Seal(nonce, nonce, plaintext, canonicalContext(encryptionContext)), nil
}

// Decrypt unwraps ciphertext with the key derived for keyID, or for the
// configured id when keyID is empty. A tampered ciphertext or a different
// context fails with ErrDecryptionFailed.
func (l *Local) Decrypt(ctx context.Context, keyID string, ciphertext []byte, encryptionContext map[string]string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrDependencyUnavailable, err)
	}
	if keyID == "" {
		keyID = l.keyID
	}

	aead, err := l.aead(keyID)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < aead.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext too short", model.ErrDecryptionFailed)
	}
	nonce, ct := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ct, canonicalContext(encryptionContext))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

func (l *Local) aead(keyID string) (cipher.AEAD, error) {
	master, err := l.master.Open()
	if err != nil {
		return nil, fmt.Errorf("open master key: %w", err)
	}
	defer master.Destroy()

	kek := make([]byte, masterKeySize)
	defer memguard.WipeBytes(kek)
	if _, err := io.ReadFull(hkdf.New(sha256.New, master.Bytes(), nil, []byte("gophkeeper-vault/kek/"+keyID)), kek); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	block, err := aes.NewCipher(kek)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return aead, nil
}

// canonicalContext encodes the context as sorted key=value lines.
func canonicalContext(encryptionContext map[string]string) []byte {
	var b strings.Builder
	for _, k := range slices.Sorted(maps.Keys(encryptionContext)) {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(encryptionContext[k])
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
