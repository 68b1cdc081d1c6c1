package kms

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awskms "github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"

	"github.com/dtroode/gophkeeper-vault/internal/model"
)

// Internal adapter interface to enable mocking without AWS.
type kmsAPI interface {
	Encrypt(ctx context.Context, params *awskms.EncryptInput, optFns ...func(*awskms.Options)) (*awskms.EncryptOutput, error)
	Decrypt(ctx context.Context, params *awskms.DecryptInput, optFns ...func(*awskms.Options)) (*awskms.DecryptOutput, error)
}

var _ model.KeyService = (*AWS)(nil)

// AWS wraps data keys with an AWS KMS key, passing the encryption context to KMS.
type AWS struct {
	api   kmsAPI
	keyID string
}

// NewAWSClient builds a KMS client from cfg. A non-empty endpoint overrides the
// service endpoint (e.g. LocalStack).
func NewAWSClient(cfg aws.Config, endpoint string) *awskms.Client {
	return awskms.NewFromConfig(cfg, func(o *awskms.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// NewAWS creates a key service using a real KMS client.
func NewAWS(client *awskms.Client, keyID string) *AWS {
	return NewAWSWithAPI(client, keyID)
}

// NewAWSWithAPI allows injecting a mockable API (used in tests).
func NewAWSWithAPI(api kmsAPI, keyID string) *AWS {
	return &AWS{api: api, keyID: keyID}
}

// KeyID returns the configured KMS key id or alias.
func (a *AWS) KeyID() string {
	return a.keyID
}

// Encrypt calls KMS Encrypt with the encryption context.
func (a *AWS) Encrypt(ctx context.Context, plaintext []byte, encryptionContext map[string]string) ([]byte, error) {
	out, err := a.api.Encrypt(ctx, &awskms.EncryptInput{
		KeyId:             aws.String(a.keyID),
		Plaintext:         plaintext,
		EncryptionContext: encryptionContext,
	})
	if err != nil {
		return nil, classify("encrypt", err)
	}
	return out.CiphertextBlob, nil
}

// Decrypt calls KMS Decrypt with the key recorded at wrap time. KMS rejects a
// context that differs from the one used at encryption.
func (a *AWS) Decrypt(ctx context.Context, keyID string, ciphertext []byte, encryptionContext map[string]string) ([]byte, error) {
	input := &awskms.DecryptInput{
		CiphertextBlob:    ciphertext,
		EncryptionContext: encryptionContext,
	}
	if keyID != "" {
		input.KeyId = aws.String(keyID)
	}
	out, err := a.api.Decrypt(ctx, input)
	if err != nil {
		return nil, classify("decrypt", err)
	}
	return out.Plaintext, nil
}

func classify(op string, err error) error {
	var (
		invalidCiphertext *types.InvalidCiphertextException
		incorrectKey      *types.IncorrectKeyException
		invalidKeyUsage   *types.InvalidKeyUsageException
	)
	if errors.As(err, &invalidCiphertext) || errors.As(err, &incorrectKey) || errors.As(err, &invalidKeyUsage) {
		return fmt.Errorf("%w: kms %s: %w", model.ErrDecryptionFailed, op, err)
	}
	return fmt.Errorf("%w: kms %s: %w", model.ErrDependencyUnavailable, op, err)
}
