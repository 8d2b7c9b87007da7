package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/hiretrack/internal/config"
	"github.com/hitoshi/hiretrack/internal/database"
	"github.com/hitoshi/hiretrack/internal/repository"
)

// recordStore はヘルスチェック可能な候補者レコードリポジトリ。
type recordStore interface {
	repository.RecordRepository
	repository.Pinger
}

// stores は選択したバックエンドのリポジトリと、その接続の後始末をまとめる。
type stores struct {
	credentials repository.CredentialRepository
	records     recordStore
	close       func() error
}

// openStores は設定されたバックエンドに接続し、リポジトリを生成する。
// 接続はプロセス起動時に1回だけ開き、終了時にcloseで閉じる。
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		slog.Info("database connection established")
		return &stores{
			credentials: repository.NewPostgresCredentialRepo(db),
			records:     repository.NewPostgresRecordRepo(db),
			close:       db.Close,
		}, nil

	case config.StoreRedis:
		client, err := database.OpenRedis(ctx, database.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		slog.Info("redis connection established", slog.String("addr", cfg.RedisAddr))
		return &stores{
			credentials: repository.NewRedisCredentialRepo(client, cfg.RedisKeyPrefix),
			records:     repository.NewRedisRecordRepo(client, cfg.RedisKeyPrefix),
			close:       client.Close,
		}, nil

	case config.StoreFile:
		records := repository.NewFileRecordRepo(cfg.DataDir)
		if err := records.Ping(ctx); err != nil {
			return nil, err
		}
		slog.Info("file store ready", slog.String("data_dir", cfg.DataDir))
		return &stores{
			credentials: repository.NewFileCredentialRepo(cfg.DataDir),
			records:     records,
			close:       func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.StoreBackend)
	}
}
