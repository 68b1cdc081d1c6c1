package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/dtroode/gophkeeper-vault/internal/api/grpc/handler"
	"github.com/dtroode/gophkeeper-vault/internal/api/grpc/middleware"
	"github.com/dtroode/gophkeeper-vault/internal/api/grpc/vaultapi"
	"github.com/dtroode/gophkeeper-vault/internal/logger"
	"github.com/dtroode/gophkeeper-vault/internal/model"
)

// Router wires the vault service, authentication and health checking into a gRPC server.
type Router struct {
	vaultService   handler.VaultService
	access         middleware.Authenticator
	contextManager model.ContextManager
	logger         *logger.Logger
	health         *health.Server
}

// New creates new gRPC Router instance.
func New(
	vaultService handler.VaultService,
	access middleware.Authenticator,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		vaultService:   vaultService,
		access:         access,
		contextManager: contextManager,
		logger:         logger,
		health:         health.NewServer(),
	}
}

// requiresAuth reports whether a call must carry a bearer token. Only health
// checks are anonymous.
func requiresAuth(_ context.Context, c interceptors.CallMeta) bool {
	return !strings.HasPrefix(c.FullMethod(), "/"+healthpb.Health_ServiceDesc.ServiceName+"/")
}

// Register builds the gRPC server with recovery, logging and authentication
// interceptors and registers the vault and health services.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.access, r.contextManager, r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(recovery.WithRecoveryHandlerContext(r.recoverPanic)),
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recovery.WithRecoveryHandlerContext(r.recoverPanic)),
			selector.StreamServerInterceptor(
				auth.StreamServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
		),
	)
	r.registerVaultRoutes(s)
	r.registerHealthRoutes(s)

	return s
}

// Shutdown reports every service as not serving so health checks fail while
// in-flight calls drain.
func (r *Router) Shutdown() {
	r.health.Shutdown()
}

func (r *Router) recoverPanic(ctx context.Context, p any) error {
	r.logger.ErrorContext(ctx, "gRPC router: recovered from panic",
		"panic", fmt.Sprint(p))
	return status.Error(codes.Internal, "internal error")
}

func (r *Router) registerVaultRoutes(server *grpc.Server) {
	vaultHandler := handler.NewVault(r.vaultService, r.contextManager, r.logger)
	vaultapi.RegisterVaultServer(server, vaultHandler)
}

func (r *Router) registerHealthRoutes(server *grpc.Server) {
	healthpb.RegisterHealthServer(server, r.health)
	r.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	r.health.SetServingStatus(vaultapi.ServiceName, healthpb.HealthCheckResponse_SERVING)
}
