package middleware

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/dtroode/gophkeeper-vault/internal/logger"
	"github.com/dtroode/gophkeeper-vault/internal/model"
)

const bearerPrefix = "bearer "

// Authenticator resolves an owner id from a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticate validates bearer tokens and injects the owner id into context.
type Authenticate struct {
	access         Authenticator
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(access Authenticator, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{access: access, contextManager: contextManager, logger: logger}
}

// AuthFunc reads the authorization metadata, verifies the token and returns a
// context carrying the owner id. It is meant for the go-grpc-middleware auth interceptor.
func (m *Authenticate) AuthFunc(ctx context.Context) (context.Context, error) {
	ownerID, err := m.access.Authenticate(ctx, bearerToken(ctx))
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	return m.contextManager.SetOwnerIDToContext(ctx, ownerID), nil
}

// bearerToken returns the token of the first authorization value, or "" when the
// value is absent or uses another scheme.
func bearerToken(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("authorization")
	if len(values) == 0 {
		return ""
	}
	header := values[0]
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}

	return strings.TrimSpace(header[len(bearerPrefix):])
}
