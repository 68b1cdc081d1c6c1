package kms

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/gophkeeper-vault/internal/model"
)

func testMasterKey() []byte {
	return bytes.Repeat([]byte{0x42}, masterKeySize)
}

func TestLocal_RoundTrip(t *testing.T) {
	t.Parallel()

	l, err := NewLocal("local-v1", testMasterKey())
	require.NoError(t, err)
	assert.Equal(t, "local-v1", l.KeyID())

	encCtx := map[string]string{"owner_id": "a", "purpose": "dek"}
	wrapped, err := l.Encrypt(context.Background(), []byte("data-key"), encCtx)
	require.NoError(t, err)
	assert.NotContains(t, string(wrapped), "data-key")

	plain, err := l.Decrypt(context.Background(), "local-v1", wrapped, map[string]string{"purpose": "dek", "owner_id": "a"})
	require.NoError(t, err)
	assert.Equal(t, []byte("data-key"), plain)
}

func TestLocal_Decrypt_Failures(t *testing.T) {
	t.Parallel()

	l, err := NewLocal("local-v1", testMasterKey())
	require.NoError(t, err)
	wrapped, err := l.Encrypt(context.Background(), []byte("data-key"), map[string]string{"owner_id": "a"})
	require.NoError(t, err)

	tampered := append([]byte(nil), wrapped...)
	tampered[len(tampered)-1] ^= 0x01

	tests := []struct {
		name string
		svc  *Local
		ct   []byte
		ctx  map[string]string
	}{
		{name: "context mismatch", svc: l, ct: wrapped, ctx: map[string]string{"owner_id": "b"}},
		{name: "missing context", svc: l, ct: wrapped, ctx: nil},
		{name: "tampered", svc: l, ct: tampered, ctx: map[string]string{"owner_id": "a"}},
		{name: "too short", svc: l, ct: []byte{1, 2, 3}, ctx: map[string]string{"owner_id": "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.Decrypt(context.Background(), "local-v1", tt.ct, tt.ctx)
			assert.ErrorIs(t, err, model.ErrDecryptionFailed)
		})
	}
}

func TestLocal_DecryptUsesRecordedKeyID(t *testing.T) {
	t.Parallel()

	v1, err := NewLocal("local-v1", testMasterKey())
	require.NoError(t, err)
	encCtx := map[string]string{"owner_id": "a"}
	wrapped, err := v1.Encrypt(context.Background(), []byte("data-key"), encCtx)
	require.NoError(t, err)

	v2, err := NewLocal("local-v2", testMasterKey())
	require.NoError(t, err)

	plain, err := v2.Decrypt(context.Background(), "local-v1", wrapped, encCtx)
	require.NoError(t, err)
	assert.Equal(t, []byte("data-key"), plain)

	_, err = v2.Decrypt(context.Background(), "local-v2", wrapped, encCtx)
	assert.ErrorIs(t, err, model.ErrDecryptionFailed)

	_, err = v2.Decrypt(context.Background(), "", wrapped, encCtx)
	assert.ErrorIs(t, err, model.ErrDecryptionFailed)
}

func TestLocal_RandomKeyWhenUnset(t *testing.T) {
	t.Parallel()

	a, err := NewLocal("local-v1", nil)
	require.NoError(t, err)
	b, err := NewLocal("local-v1", nil)
	require.NoError(t, err)

	wrapped, err := a.Encrypt(context.Background(), []byte("k"), nil)
	require.NoError(t, err)
	_, err = b.Decrypt(context.Background(), "local-v1", wrapped, nil)
	assert.ErrorIs(t, err, model.ErrDecryptionFailed)
}

func TestNewLocal_Invalid(t *testing.T) {
	t.Parallel()

	_, err := NewLocal("", testMasterKey())
	assert.Error(t, err)

	_, err = NewLocal("local-v1", []byte("short"))
	assert.Error(t, err)
}

func TestLocal_CanceledContext(t *testing.T) {
	t.Parallel()

	l, err := NewLocal("local-v1", testMasterKey())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = l.Encrypt(ctx, []byte("k"), nil)
	assert.ErrorIs(t, err, model.ErrDependencyUnavailable)
	_, err = l.Decrypt(ctx, "local-v1", []byte("k"), nil)
	assert.ErrorIs(t, err, model.ErrDependencyUnavailable)
}

func TestCanonicalContext(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a=1\nb=2\n", string(canonicalContext(map[string]string{"b": "2", "a": "1"})))
	assert.Empty(t, canonicalContext(nil))
}
