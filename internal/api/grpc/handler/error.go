package handler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/gophkeeper-vault/internal/model"
)

// handleError maps a service error to a status. Messages are fixed per kind, except
// for validation errors, which name the rejected field.
func handleError(err error) error {
	switch model.Kind(err) {
	case model.ErrUnauthenticated:
		return status.Error(codes.Unauthenticated, "unauthenticated")
	case model.ErrInvalidInput:
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			return status.Error(codes.InvalidArgument, verr.Error())
		}
		return status.Error(codes.InvalidArgument, "invalid input")
	case model.ErrNotFound:
		return status.Error(codes.NotFound, "entry not found")
	case model.ErrDecryptionFailed:
		return status.Error(codes.DataLoss, "secret cannot be decrypted")
	default:
		return status.Error(codes.Unavailable, "service temporarily unavailable")
	}
}
