package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/gophkeeper-vault/internal/logger"
)

func TestLogging_HandleGRPC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		handler  grpc.UnaryHandler
		wantCode codes.Code
		wantLog  string
		wantLvl  string
	}{
		{
			name: "success path",
			handler: func(ctx context.Context, req any) (any, error) {
				return "ok", nil
			},
			wantCode: codes.OK,
			wantLog:  "gRPC request completed",
			wantLvl:  "level=INFO",
		},
		{
			name: "caller error is a warning",
			handler: func(ctx context.Context, req any) (any, error) {
				return nil, status.Error(codes.InvalidArgument, "bad input")
			},
			wantCode: codes.InvalidArgument,
			wantLog:  "gRPC request rejected",
			wantLvl:  "level=WARN",
		},
		{
			name: "non-grpc error becomes Internal",
			handler: func(ctx context.Context, req any) (any, error) {
				return nil, errors.New("boom")
			},
			wantCode: codes.Internal,
			wantLog:  "gRPC request failed",
			wantLvl:  "level=ERROR",
		},
		{
			name: "dependency failure is an error",
			handler: func(ctx context.Context, req any) (any, error) {
				return nil, status.Error(codes.Unavailable, "unavailable")
			},
			wantCode: codes.Unavailable,
			wantLog:  "gRPC request failed",
			wantLvl:  "level=ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			lg := NewLogging(logger.NewWithWriter(&buf, int(slog.LevelInfo)))

			info := &grpc.UnaryServerInfo{FullMethod: "/vault.v1.Vault/GetEntry"}
			resp, err := lg.HandleGRPC(context.Background(), struct{}{}, info, tt.handler)

			assert.Equal(t, tt.wantCode, codeOf(err))
			if tt.wantCode == codes.OK {
				assert.NoError(t, err)
				assert.Equal(t, "ok", resp)
			}

			out := buf.String()
			assert.Contains(t, out, tt.wantLog)
			assert.Contains(t, out, tt.wantLvl)
			assert.Contains(t, out, "status="+tt.wantCode.String())
			assert.NotContains(t, out, "gRPC request started")
		})
	}
}
