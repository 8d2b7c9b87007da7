// Package repository はデータ永続化のインターフェースと実装を定義する。
// PostgreSQL、JSONファイル、Redisの3種類のバックエンドを提供する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/hiretrack/internal/model"
)

var (
	// ErrNotFound は更新対象のレコードが存在しないことを表す。
	ErrNotFound = errors.New("record not found")
	// ErrConflict は同じメールアドレスのエントリが既に存在することを表す。
	ErrConflict = errors.New("entry already exists")
)

// CredentialRepository はログイン資格情報の永続化インターフェース。
// emailは正規化済みの値を渡すこと。
type CredentialRepository interface {
	// FindByEmail は指定メールアドレスの資格情報を取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Credential, error)

	// Create は資格情報を作成する。既に存在する場合はErrConflictを返す。
	Create(ctx context.Context, credential *model.Credential) error
}

// RecordMutator は保存済みレコードを受け取り、その場で変更する関数。
// エラーを返した場合は何も保存されない。
type RecordMutator func(record *model.Record) error

// RecordRepository は候補者レコードの永続化インターフェース。
// emailは正規化済みの値を渡すこと。
type RecordRepository interface {
	// FindByEmail は指定メールアドレスのレコードを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Record, error)

	// Create はレコードを作成する。既に存在する場合はErrConflictを返す。
	Create(ctx context.Context, record *model.Record) error

	// Update は読み取り・変更・書き込みを1レコード単位でアトミックに実行し、
	// 保存後のレコードを返す。存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, email string, mutate RecordMutator) (*model.Record, error)
}

// Pinger はストアへの疎通確認インターフェース。ヘルスチェックで使用する。
type Pinger interface {
	Ping(ctx context.Context) error
}
