package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// jsonArrayFile は要素ごとに1エントリを持つJSON配列ファイル。
// 書き込みは一時ファイルへの書き出し、fsync、renameの順で行い、
// 書き込み途中のクラッシュでファイルが壊れないようにする。
// 同一プロセス内の読み取り・変更・書き込みはmuで直列化する。
type jsonArrayFile[T any] struct {
	path string
	mu   sync.Mutex
}

func newJSONArrayFile[T any](path string) *jsonArrayFile[T] {
	return &jsonArrayFile[T]{path: path}
}

// read はファイル全体を読み込む。ファイルが存在しない、または空の場合は空配列を返す。
// 呼び出し側でmuを保持していること。
func (f *jsonArrayFile[T]) read() ([]T, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", f.path, err)
	}
	return items, nil
}

// write は配列全体をアトミックに書き込む。呼び出し側でmuを保持していること。
func (f *jsonArrayFile[T]) write(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", f.path, err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}
