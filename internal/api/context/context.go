// Package context carries the authenticated owner id through request contexts.
package context

import (
	"context"

	"github.com/google/uuid"
)

type ownerIDKey struct{}

// Manager stores the owner id under a private context key. Request metadata and
// headers are never consulted, so a caller cannot inject an owner id.
type Manager struct{}

// NewManager creates a new context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetOwnerIDToContext returns a copy of ctx carrying ownerID.
func (m *Manager) SetOwnerIDToContext(ctx context.Context, ownerID uuid.UUID) context.Context {
	return context.WithValue(ctx, ownerIDKey{}, ownerID)
}

// GetOwnerIDFromContext returns the owner id set by the authentication middleware.
// A missing or nil id reports false.
func (m *Manager) GetOwnerIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	ownerID, ok := ctx.Value(ownerIDKey{}).(uuid.UUID)
	if !ok || ownerID == uuid.Nil {
		return uuid.Nil, false
	}

	return ownerID, true
}
