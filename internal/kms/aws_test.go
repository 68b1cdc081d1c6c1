package kms

import (
	"context"
	"errors"
	"testing"

	awskms "github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/gophkeeper-vault/internal/model"
)

type fakeKMS struct {
	encryptIn  *awskms.EncryptInput
	decryptIn  *awskms.DecryptInput
	encryptErr error
	decryptErr error
}

func (f *fakeKMS) Encrypt(ctx context.Context, params *awskms.EncryptInput, _ ...func(*awskms.Options)) (*awskms.EncryptOutput, error) {
	f.encryptIn = params
	if f.encryptErr != nil {
		return nil, f.encryptErr
	}
	return &awskms.EncryptOutput{CiphertextBlob: append([]byte("wrapped:"), params.Plaintext...)}, nil
}

func (f *fakeKMS) Decrypt(ctx context.Context, params *awskms.DecryptInput, _ ...func(*awskms.Options)) (*awskms.DecryptOutput, error) {
	f.decryptIn = params
	if f.decryptErr != nil {
		return nil, f.decryptErr
	}
	return &awskms.DecryptOutput{Plaintext: params.CiphertextBlob[len("wrapped:"):]}, nil
}

func TestAWS_PassesKeyAndContext(t *testing.T) {
	t.Parallel()

	api := &fakeKMS{}
	svc := NewAWSWithAPI(api, "alias/vault")
	encCtx := map[string]string{"owner_id": "o1"}

	wrapped, err := svc.Encrypt(context.Background(), []byte("dek"), encCtx)
	require.NoError(t, err)
	require.NotNil(t, api.encryptIn)
	assert.Equal(t, "alias/vault", *api.encryptIn.KeyId)
	assert.Equal(t, encCtx, api.encryptIn.EncryptionContext)

	plain, err := svc.Decrypt(context.Background(), "alias/vault-old", wrapped, encCtx)
	require.NoError(t, err)
	assert.Equal(t, []byte("dek"), plain)
	assert.Equal(t, encCtx, api.decryptIn.EncryptionContext)
	require.NotNil(t, api.decryptIn.KeyId)
	assert.Equal(t, "alias/vault-old", *api.decryptIn.KeyId)

	_, err = svc.Decrypt(context.Background(), "", wrapped, encCtx)
	require.NoError(t, err)
	assert.Nil(t, api.decryptIn.KeyId)
	assert.Equal(t, "alias/vault", svc.KeyID())
}

func TestAWS_ErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "invalid ciphertext", err: &types.InvalidCiphertextException{}, want: model.ErrDecryptionFailed},
		{name: "incorrect key", err: &types.IncorrectKeyException{}, want: model.ErrDecryptionFailed},
		{name: "invalid key usage", err: &types.InvalidKeyUsageException{}, want: model.ErrDecryptionFailed},
		{name: "kms internal", err: &types.KMSInternalException{}, want: model.ErrDependencyUnavailable},
		{name: "timeout", err: context.DeadlineExceeded, want: model.ErrDependencyUnavailable},
		{name: "network", err: errors.New("connection reset"), want: model.ErrDependencyUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewAWSWithAPI(&fakeKMS{decryptErr: tt.err, encryptErr: tt.err}, "k")

			_, err := svc.Decrypt(context.Background(), "k", []byte("x"), nil)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.err)

			_, err = svc.Encrypt(context.Background(), []byte("x"), nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
