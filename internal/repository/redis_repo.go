package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hitoshi/hiretrack/internal/model"
	"github.com/redis/go-redis/v9"
)

// redisMaxTxRetries はWATCHが競合で失敗した場合の再試行回数の上限。
const redisMaxTxRetries = 10

// ErrTooManyConflicts はRedisの楽観的トランザクションが上限回数まで競合したことを表す。
var ErrTooManyConflicts = errors.New("too many concurrent updates")

// redisKeys はRedisのキー命名規則。
type redisKeys struct {
	prefix string
}

func (k redisKeys) credential(email string) string {
	return k.prefix + ":credential:" + email
}

func (k redisKeys) record(email string) string {
	return k.prefix + ":record:" + email
}

// RedisCredentialRepo はRedisを使用した資格情報リポジトリ。
// 資格情報1件をJSON文字列として1キーに保存する。
type RedisCredentialRepo struct {
	client redis.UniversalClient
	keys   redisKeys
}

// NewRedisCredentialRepo はRedisCredentialRepoを生成する。
func NewRedisCredentialRepo(client redis.UniversalClient, prefix string) *RedisCredentialRepo {
	return &RedisCredentialRepo{client: client, keys: redisKeys{prefix: prefix}}
}

// FindByEmail は指定メールアドレスの資格情報を取得する。見つからない場合はnilを返す。
func (r *RedisCredentialRepo) FindByEmail(ctx context.Context, email string) (*model.Credential, error) {
	data, err := r.client.Get(ctx, r.keys.credential(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	c := &model.Credential{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to decode credential: %w", err)
	}
	return c, nil
}

// Create はSETNXで資格情報を作成する。既に存在する場合はErrConflictを返す。
func (r *RedisCredentialRepo) Create(ctx context.Context, c *model.Credential) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.keys.credential(c.Email), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set credential: %w", err)
	}
	if !ok {
		return fmt.Errorf("credential %s: %w", c.Email, ErrConflict)
	}
	return nil
}

// RedisRecordRepo はRedisを使用した候補者レコードリポジトリ。
type RedisRecordRepo struct {
	client redis.UniversalClient
	keys   redisKeys
}

// NewRedisRecordRepo はRedisRecordRepoを生成する。
func NewRedisRecordRepo(client redis.UniversalClient, prefix string) *RedisRecordRepo {
	return &RedisRecordRepo{client: client, keys: redisKeys{prefix: prefix}}
}

// FindByEmail は指定メールアドレスのレコードを取得する。見つからない場合はnilを返す。
func (r *RedisRecordRepo) FindByEmail(ctx context.Context, email string) (*model.Record, error) {
	data, err := r.client.Get(ctx, r.keys.record(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	record := &model.Record{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return record, nil
}

// Create はSETNXでレコードを作成する。既に存在する場合はErrConflictを返す。
func (r *RedisRecordRepo) Create(ctx context.Context, record *model.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.keys.record(record.Email), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to set record: %w", err)
	}
	if !ok {
		return fmt.Errorf("record %s: %w", record.Email, ErrConflict)
	}
	return nil
}

// Update はWATCH/MULTIによる楽観的トランザクションでレコードを変更する。
// 他のクライアントが途中でキーを書き換えた場合は読み取りからやり直す。
func (r *RedisRecordRepo) Update(ctx context.Context, email string, mutate RecordMutator) (*model.Record, error) {
	key := r.keys.record(email)
	var updated *model.Record

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return fmt.Errorf("record %s: %w", email, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to get record: %w", err)
		}

		record := &model.Record{}
		if err := json.Unmarshal(data, record); err != nil {
			return fmt.Errorf("failed to decode record: %w", err)
		}
		if err := mutate(record); err != nil {
			return err
		}

		encoded, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to encode record: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = record
		return nil
	}

	for i := 0; i < redisMaxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("record %s: %w", email, ErrTooManyConflicts)
}

// Ping はRedisへの疎通を確認する。
func (r *RedisRecordRepo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// compile-time interface check
var (
	_ CredentialRepository = (*RedisCredentialRepo)(nil)
	_ RecordRepository     = (*RedisRecordRepo)(nil)
	_ Pinger               = (*RedisRecordRepo)(nil)
)
