// Package client is a Go client for the vault gRPC service.
package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/dtroode/gophkeeper-vault/internal/api/grpc/vaultapi"
	"github.com/dtroode/gophkeeper-vault/internal/model"
)

const (
	defaultMaxRetries   = 3
	defaultRetryBackoff = 100 * time.Millisecond
)

// Options configures a Vault client.
type Options struct {
	Address string
	// Token is sent as a bearer token with every call.
	Token string
	// TLS enables transport security. A nil value dials in plaintext.
	TLS          *tls.Config
	MaxRetries   uint
	RetryBackoff time.Duration
	DialOptions  []grpc.DialOption
}

// Vault calls the vault service. Calls that are safe to repeat are retried on
// codes.Unavailable with exponential backoff.
type Vault struct {
	conn *grpc.ClientConn
	api  vaultapi.VaultClient
}

// New creates a client. No connection is made until the first call.
func New(opts Options) (*Vault, error) {
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaultRetryBackoff
	}

	transport := insecure.NewCredentials()
	if opts.TLS != nil {
		transport = credentials.NewTLS(opts.TLS)
	}

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(transport),
		grpc.WithChainUnaryInterceptor(retry.UnaryClientInterceptor(
			retry.WithCodes(codes.Unavailable),
			retry.WithMax(opts.MaxRetries),
			retry.WithBackoff(retry.BackoffExponential(opts.RetryBackoff)),
		)),
	}
	if opts.Token != "" {
		dialOpts = append(dialOpts, grpc.WithPerRPCCredentials(bearer{token: opts.Token, secure: opts.TLS != nil}))
	}
	dialOpts = append(dialOpts, opts.DialOptions...)

	conn, err := grpc.NewClient(opts.Address, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client: %w", err)
	}

	return &Vault{conn: conn, api: vaultapi.NewVaultClient(conn)}, nil
}

func (c *Vault) Close() error {
	return c.conn.Close()
}

// Create stores a new entry. Without a RequestID a retry could store the entry
// twice, so the call is only retried when req.RequestID is set.
func (c *Vault) Create(ctx context.Context, req *vaultapi.CreateEntryRequest) (model.Summary, error) {
	var opts []grpc.CallOption
	if req.RequestID == "" {
		opts = append(opts, retry.Disable())
	}

	resp, err := c.api.CreateEntry(ctx, req, opts...)
	if err != nil {
		return model.Summary{}, fromStatus("create entry", err)
	}
	return summary(resp.Entry)
}

func (c *Vault) List(ctx context.Context) ([]model.Summary, error) {
	resp, err := c.api.ListEntries(ctx, &vaultapi.ListEntriesRequest{})
	if err != nil {
		return nil, fromStatus("list entries", err)
	}

	summaries := make([]model.Summary, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		s, err := summary(e)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (c *Vault) Get(ctx context.Context, recordID uuid.UUID) (model.Summary, error) {
	resp, err := c.api.GetEntry(ctx, &vaultapi.GetEntryRequest{RecordID: recordID.String()})
	if err != nil {
		return model.Summary{}, fromStatus("get entry", err)
	}
	return summary(resp.Entry)
}

func (c *Vault) Reveal(ctx context.Context, recordID uuid.UUID) (string, error) {
	resp, err := c.api.RevealEntry(ctx, &vaultapi.RevealEntryRequest{RecordID: recordID.String()})
	if err != nil {
		return "", fromStatus("reveal entry", err)
	}
	return resp.Secret, nil
}

// Update is never retried: a retry after a lost response could overwrite a
// concurrent change.
func (c *Vault) Update(ctx context.Context, req *vaultapi.UpdateEntryRequest) (model.Summary, error) {
	resp, err := c.api.UpdateEntry(ctx, req, retry.Disable())
	if err != nil {
		return model.Summary{}, fromStatus("update entry", err)
	}
	return summary(resp.Entry)
}

// Delete removes an entry. A retry after a lost response reports ErrNotFound.
func (c *Vault) Delete(ctx context.Context, recordID uuid.UUID) error {
	if _, err := c.api.DeleteEntry(ctx, &vaultapi.DeleteEntryRequest{RecordID: recordID.String()}); err != nil {
		return fromStatus("delete entry", err)
	}
	return nil
}

func summary(e vaultapi.Entry) (model.Summary, error) {
	s, err := e.Summary()
	if err != nil {
		return model.Summary{}, fmt.Errorf("malformed response: %w", err)
	}
	return s, nil
}

// fromStatus maps a call error back to the service error kinds.
func fromStatus(op string, err error) error {
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%s: %w", op, model.ErrUnauthenticated)
	case codes.InvalidArgument:
		return fmt.Errorf("%s: %w: %s", op, model.ErrInvalidInput, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	case codes.DataLoss:
		return fmt.Errorf("%s: %w", op, model.ErrDecryptionFailed)
	default:
		return fmt.Errorf("%s: %w: %s", op, model.ErrDependencyUnavailable, st.Message())
	}
}

type bearer struct {
	token  string
	secure bool
}

func (b bearer) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}

func (b bearer) RequireTransportSecurity() bool {
	return b.secure
}
