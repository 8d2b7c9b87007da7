package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hitoshi/hiretrack/internal/model"
)

// PostgresRecordRepo はPostgreSQLを使用した候補者レコードリポジトリ。
// レコード本体はJSONBカラムにドキュメントとして保存する。
type PostgresRecordRepo struct {
	db *sql.DB
}

// NewPostgresRecordRepo はPostgresRecordRepoを生成する。
func NewPostgresRecordRepo(db *sql.DB) *PostgresRecordRepo {
	return &PostgresRecordRepo{db: db}
}

// FindByEmail は指定メールアドレスのレコードを取得する。見つからない場合はnilを返す。
func (r *PostgresRecordRepo) FindByEmail(ctx context.Context, email string) (*model.Record, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM candidate_records WHERE email = $1`,
		email,
	).Scan(&data)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find record by email: %w", err)
	}

	record := &model.Record{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return record, nil
}

// Create はレコードを作成する。既に存在する場合はErrConflictを返す。
func (r *PostgresRecordRepo) Create(ctx context.Context, record *model.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO candidate_records (id, email, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (email) DO NOTHING`,
		uuid.New().String(), record.Email, data, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("record %s: %w", record.Email, ErrConflict)
	}

	return nil
}

// Update はSELECT ... FOR UPDATEで行ロックを取得したトランザクション内で
// レコードを変更・保存する。同一レコードへの並行更新は直列化される。
func (r *PostgresRecordRepo) Update(ctx context.Context, email string, mutate RecordMutator) (*model.Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var data []byte
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM candidate_records WHERE email = $1 FOR UPDATE`,
		email,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("record %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock record: %w", err)
	}

	record := &model.Record{}
	if err := json.Unmarshal(data, record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}

	if err := mutate(record); err != nil {
		return nil, err
	}

	updated, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE candidate_records SET data = $2, updated_at = $3 WHERE email = $1`,
		email, updated, record.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return record, nil
}

// compile-time interface check
var _ RecordRepository = (*PostgresRecordRepo)(nil)

// Ping はデータベースへの疎通を確認する。
func (r *PostgresRecordRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

var _ Pinger = (*PostgresRecordRepo)(nil)
