// Package catalog はフォームの選択肢カタログを提供する。
// 選択肢が定義されたフィールドは、保存前に値が選択肢に含まれるかを検証する。
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/hitoshi/hiretrack/internal/model"
	"github.com/hitoshi/hiretrack/internal/status"
)

//go:embed options.yaml
var defaultOptions []byte

// stageFields はステータス導出に使用されるフィールド。
// 選択肢に必ず Scheduled、Shortlisted、Rejected を含める。
var stageFields = []string{"l1Status", "l2Status", "l3Status", "managerialStatus", "hrStatus"}

// Catalog はフィールド名から選択肢へのマッピング。イミュータブルとして扱う。
type Catalog struct {
	options map[string][]string
}

// Default は埋め込みの既定カタログを返す。
func Default() (*Catalog, error) {
	return Parse(defaultOptions)
}

// Load はpathのYAMLファイルからカタログを読み込む。pathが空の場合は既定カタログを返す。
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read options file: %w", err)
	}
	return Parse(data)
}

// Parse はYAMLからカタログを構築する。
func Parse(data []byte) (*Catalog, error) {
	options := make(map[string][]string)
	if err := yaml.Unmarshal(data, &options); err != nil {
		return nil, fmt.Errorf("failed to parse options: %w", err)
	}

	for _, field := range stageFields {
		values, ok := options[field]
		if !ok {
			continue
		}
		for _, required := range []string{status.Scheduled, status.Shortlisted, status.Rejected} {
			if !slices.Contains(values, required) {
				return nil, fmt.Errorf("options for %s must include %q", field, required)
			}
		}
	}

	return &Catalog{options: options}, nil
}

// Validate はフィールドの値が選択肢に含まれるかを検証する。
// 空の値と選択肢が定義されていないフィールドは常に許可する。
func (c *Catalog) Validate(field, value string) error {
	if value == "" {
		return nil
	}
	values, ok := c.options[field]
	if !ok {
		return nil
	}
	if slices.Contains(values, value) {
		return nil
	}
	return model.NewInvalidInputError(fmt.Sprintf("invalid value for %s: %q", field, value))
}

// Options はフィールドの選択肢のコピーを返す。
func (c *Catalog) Options(field string) []string {
	return slices.Clone(c.options[field])
}

// Fields は選択肢が定義されたフィールド名をソートして返す。
func (c *Catalog) Fields() []string {
	fields := make([]string, 0, len(c.options))
	for field := range c.options {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// All はカタログ全体のコピーを返す。APIレスポンス用。
func (c *Catalog) All() map[string][]string {
	out := make(map[string][]string, len(c.options))
	for field, values := range c.options {
		out[field] = slices.Clone(values)
	}
	return out
}
