package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dtroode/gophkeeper-vault/internal/awsconf"
	"github.com/dtroode/gophkeeper-vault/internal/config"
	"github.com/dtroode/gophkeeper-vault/internal/kms"
	"github.com/dtroode/gophkeeper-vault/internal/logger"
	"github.com/dtroode/gophkeeper-vault/internal/model"
	"github.com/dtroode/gophkeeper-vault/internal/repository/dynamo"
	"github.com/dtroode/gophkeeper-vault/internal/repository/memory"
	"github.com/dtroode/gophkeeper-vault/internal/repository/postgres"
	storage "github.com/dtroode/gophkeeper-vault/internal/storage/minio"
)

// openStore connects the configured entry store. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config, logger *logger.Logger) (model.EntryStore, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.StorePostgres:
		conn, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, noop, err
		}
		closeConn := func() {
			if err := conn.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}
		return postgres.NewEntryRepository(conn.DB), closeConn, nil

	case config.StoreDynamoDB:
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		repo := dynamo.NewEntryRepository(dynamo.NewClient(awsCfg, cfg.DynamoDB.Endpoint), cfg.DynamoDB.Table)
		if err := repo.EnsureTable(ctx); err != nil {
			return nil, noop, err
		}
		return repo, noop, nil

	case config.StoreMinio:
		minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create minio client: %w", err)
		}
		client, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
		if err != nil {
			return nil, noop, err
		}
		return client, noop, nil

	case config.StoreMemory:
		logger.Warn("using in-memory entry store, entries are lost on restart")
		return memory.NewEntryRepository(), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// newKeyService builds the key service that wraps per-entry data keys.
func newKeyService(ctx context.Context, cfg *config.Config, logger *logger.Logger) (model.KeyService, error) {
	switch cfg.KMS.Provider {
	case config.KMSLocal:
		masterKey, err := cfg.KMS.MasterKeyBytes()
		if err != nil {
			return nil, err
		}
		if masterKey == nil {
			logger.Warn("using ephemeral master key, secrets cannot be revealed after restart", "key_id", cfg.KMS.KeyID)
		}
		local, err := kms.NewLocal(cfg.KMS.KeyID, masterKey)
		if err != nil {
			return nil, err
		}
		return local, nil

	case config.KMSAWS:
		awsCfg, err := loadAWSConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return kms.NewAWS(kms.NewAWSClient(awsCfg, cfg.KMS.Endpoint), cfg.KMS.KeyID), nil

	default:
		return nil, fmt.Errorf("unknown kms provider %q", cfg.KMS.Provider)
	}
}

func loadAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconf.Load(ctx, awsconf.Options{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
	})
}
