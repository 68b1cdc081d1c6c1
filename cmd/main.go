package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	apicontext "github.com/dtroode/gophkeeper-vault/internal/api/context"
	"github.com/dtroode/gophkeeper-vault/internal/api/grpc/router"
	grpcServer "github.com/dtroode/gophkeeper-vault/internal/api/grpc/server"
	"github.com/dtroode/gophkeeper-vault/internal/api/rest"
	"github.com/dtroode/gophkeeper-vault/internal/cipher"
	"github.com/dtroode/gophkeeper-vault/internal/config"
	"github.com/dtroode/gophkeeper-vault/internal/logger"
	"github.com/dtroode/gophkeeper-vault/internal/model"
	"github.com/dtroode/gophkeeper-vault/internal/server"
	"github.com/dtroode/gophkeeper-vault/internal/service"
	"github.com/dtroode/gophkeeper-vault/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := newLogger(cfg)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize entry store", "backend", cfg.Store.Backend, "error", err)
	}
	defer closeStore()

	keys, err := newKeyService(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize key service", "provider", cfg.KMS.Provider, "error", err)
	}
	logger.Info("key service ready", "provider", cfg.KMS.Provider, "key_id", keys.KeyID())

	envelope := cipher.NewEnvelope(keys, cipher.WithKMSTimeout(cfg.KMS.Timeout))
	vaultService := service.NewVault(store, envelope, logger)
	access := service.NewAccess(token.NewJWT(cfg.JWT.Secret), logger)
	ctxMgr := apicontext.NewManager()

	grpcRouter := router.New(vaultService, access, ctxMgr, logger)
	servers := []model.Server{registerGRPCServer(grpcRouter, fmt.Sprintf(":%s", cfg.GRPC.Port))}
	if cfg.HTTP.Enabled {
		restRouter := rest.New(vaultService, access, ctxMgr, logger, rest.WithCORS(cfg.HTTP.CORSAllowedOrigins))
		servers = append(servers, rest.NewHTTPServer(restRouter.Handler(), fmt.Sprintf(":%s", cfg.HTTP.Port)))
	}

	var sl model.SecurityLayer
	if cfg.GRPC.EnableHTTPS {
		sl = server.NewTLSListener(cfg.GRPC.CertFileName, cfg.GRPC.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	for _, s := range servers {
		wg.Add(1)
		go func(s model.Server) {
			defer wg.Done()
			logger.Info("Starting server on", "address", s.Address())
			if err := s.Start(sl); err != nil {
				logger.Error("failed to start server", "error", err, "address", s.Address())
				stop()
			}
		}(s)
	}

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")
	grpcRouter.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	for _, s := range servers {
		if err := s.Stop(shutdownCtx); err != nil {
			logger.Error("error during server shutdown", "error", err, "address", s.Address())
		}
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func newLogger(cfg *config.Config) *logger.Logger {
	if cfg.Log.File == "" {
		return logger.New(cfg.LogLevel)
	}
	return logger.NewWithFile(cfg.LogLevel, logger.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

func registerGRPCServer(r *router.Router, addr string) *grpcServer.GRPCServer {
	return grpcServer.NewGRPCServer(r.Register(), addr)
}
