package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/gophkeeper-vault/internal/logger"
	"github.com/dtroode/gophkeeper-vault/internal/model"
)

// Access turns bearer tokens into verified owner ids.
type Access struct {
	tokens model.TokenManager
	logger *logger.Logger
}

func NewAccess(tokens model.TokenManager, logger *logger.Logger) *Access {
	return &Access{
		tokens: tokens,
		logger: logger,
	}
}

// Authenticate verifies the token. Every failure is ErrUnauthenticated; the
// cause is only logged.
func (a *Access) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		a.logger.DebugContext(ctx, "Access gateway: empty token")
		return uuid.Nil, model.ErrUnauthenticated
	}

	ownerID, err := a.tokens.ParseAccessToken(token)
	if err != nil {
		a.logger.DebugContext(ctx, "Access gateway: token rejected",
			"error", err.Error())
		return uuid.Nil, model.ErrUnauthenticated
	}
	if ownerID == uuid.Nil {
		a.logger.DebugContext(ctx, "Access gateway: token has no owner")
		return uuid.Nil, model.ErrUnauthenticated
	}

	return ownerID, nil
}
