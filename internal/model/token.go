package model

import "github.com/google/uuid"

// TokenManager generates and validates access tokens.
type TokenManager interface {
	GenerateAccessToken(ownerID uuid.UUID) (string, error)
	ParseAccessToken(token string) (uuid.UUID, error)
}
