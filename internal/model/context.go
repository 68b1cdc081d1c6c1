package model

import (
	"context"

	"github.com/google/uuid"
)

// ContextManager carries the verified owner id through a request context.
type ContextManager interface {
	SetOwnerIDToContext(ctx context.Context, ownerID uuid.UUID) context.Context
	GetOwnerIDFromContext(ctx context.Context) (uuid.UUID, bool)
}
