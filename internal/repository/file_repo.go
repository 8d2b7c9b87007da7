package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hitoshi/hiretrack/internal/model"
)

const (
	// CredentialsFileName は資格情報を保存するファイル名。
	CredentialsFileName = "users.json"
	// RecordsFileName は候補者レコードを保存するファイル名。
	RecordsFileName = "records.json"
)

// FileCredentialRepo はJSONファイルを使用した資格情報リポジトリ。
type FileCredentialRepo struct {
	file *jsonArrayFile[model.Credential]
}

// NewFileCredentialRepo はdataDir配下のusers.jsonを使用するFileCredentialRepoを生成する。
func NewFileCredentialRepo(dataDir string) *FileCredentialRepo {
	return &FileCredentialRepo{
		file: newJSONArrayFile[model.Credential](filepath.Join(dataDir, CredentialsFileName)),
	}
}

// FindByEmail は指定メールアドレスの資格情報を取得する。見つからない場合はnilを返す。
// 既存ファイルに大文字を含むメールアドレスが残っていても一致するよう、比較時にも正規化する。
func (r *FileCredentialRepo) FindByEmail(_ context.Context, email string) (*model.Credential, error) {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	items, err := r.file.read()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if model.NormalizeEmail(items[i].Email) == email {
			c := items[i]
			return &c, nil
		}
	}
	return nil, nil
}

// Create は資格情報を追加する。既に存在する場合はErrConflictを返す。
func (r *FileCredentialRepo) Create(_ context.Context, c *model.Credential) error {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	items, err := r.file.read()
	if err != nil {
		return err
	}
	for i := range items {
		if model.NormalizeEmail(items[i].Email) == c.Email {
			return fmt.Errorf("credential %s: %w", c.Email, ErrConflict)
		}
	}

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return r.file.write(append(items, *c))
}

// FileRecordRepo はJSONファイルを使用した候補者レコードリポジトリ。
type FileRecordRepo struct {
	dataDir string
	file    *jsonArrayFile[model.Record]
}

// NewFileRecordRepo はdataDir配下のrecords.jsonを使用するFileRecordRepoを生成する。
func NewFileRecordRepo(dataDir string) *FileRecordRepo {
	return &FileRecordRepo{
		dataDir: dataDir,
		file:    newJSONArrayFile[model.Record](filepath.Join(dataDir, RecordsFileName)),
	}
}

// FindByEmail は指定メールアドレスのレコードを取得する。見つからない場合はnilを返す。
func (r *FileRecordRepo) FindByEmail(_ context.Context, email string) (*model.Record, error) {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	items, err := r.file.read()
	if err != nil {
		return nil, err
	}
	if i := indexOfRecord(items, email); i >= 0 {
		rec := items[i]
		return &rec, nil
	}
	return nil, nil
}

// Create はレコードを追加する。既に存在する場合はErrConflictを返す。
func (r *FileRecordRepo) Create(_ context.Context, record *model.Record) error {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	items, err := r.file.read()
	if err != nil {
		return err
	}
	if indexOfRecord(items, record.Email) >= 0 {
		return fmt.Errorf("record %s: %w", record.Email, ErrConflict)
	}
	return r.file.write(append(items, *record))
}

// Update はファイルロックを保持したままレコードを変更し、ファイル全体を書き換える。
func (r *FileRecordRepo) Update(_ context.Context, email string, mutate RecordMutator) (*model.Record, error) {
	r.file.mu.Lock()
	defer r.file.mu.Unlock()

	items, err := r.file.read()
	if err != nil {
		return nil, err
	}
	i := indexOfRecord(items, email)
	if i < 0 {
		return nil, fmt.Errorf("record %s: %w", email, ErrNotFound)
	}

	rec := items[i]
	if err := mutate(&rec); err != nil {
		return nil, err
	}
	items[i] = rec

	if err := r.file.write(items); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Ping はデータディレクトリが利用可能かを確認する。
func (r *FileRecordRepo) Ping(_ context.Context) error {
	if err := os.MkdirAll(r.dataDir, 0o755); err != nil {
		return fmt.Errorf("data directory unavailable: %w", err)
	}
	return nil
}

func indexOfRecord(items []model.Record, email string) int {
	for i := range items {
		if model.NormalizeEmail(items[i].Email) == email {
			return i
		}
	}
	return -1
}

// compile-time interface check
var (
	_ CredentialRepository = (*FileCredentialRepo)(nil)
	_ RecordRepository     = (*FileRecordRepo)(nil)
	_ Pinger               = (*FileRecordRepo)(nil)
)
