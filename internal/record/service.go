// Package record は候補者レコードの参照・作成・更新を提供する。
// 作成と更新のたびに導出項目（month、week、offeredMonth、joiningMonth、finalStatus）を再計算する。
package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/hiretrack/internal/catalog"
	"github.com/hitoshi/hiretrack/internal/metrics"
	"github.com/hitoshi/hiretrack/internal/model"
	"github.com/hitoshi/hiretrack/internal/repository"
	"github.com/hitoshi/hiretrack/internal/security"
	"github.com/hitoshi/hiretrack/internal/status"
)

// Service は候補者レコードのビジネスロジックを提供する。
type Service struct {
	repo      repository.RecordRepository
	catalog   *catalog.Catalog
	sanitizer security.TextSanitizer
	metrics   metrics.MetricsCollector
	now       func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	repo repository.RecordRepository,
	cat *catalog.Catalog,
	sanitizer security.TextSanitizer,
	mc metrics.MetricsCollector,
) *Service {
	return &Service{
		repo:      repo,
		catalog:   cat,
		sanitizer: sanitizer,
		metrics:   mc,
		now:       time.Now,
	}
}

// Lookup はメールアドレスで候補者レコードを取得する。
func (s *Service) Lookup(ctx context.Context, email string) (rec *model.Record, err error) {
	defer func() { s.metrics.RecordRecordOperation(metrics.OpLookup, metrics.ResultOf(err)) }()

	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, model.NewRecordNotFoundError()
	}

	rec, err = s.repo.FindByEmail(ctx, email)
	if err != nil {
		slog.Error("failed to find record", slog.String("error", err.Error()))
		return nil, model.NewStoreUnavailableError()
	}
	if rec == nil {
		return nil, model.NewRecordNotFoundError()
	}
	return rec, nil
}

// Create は新しい候補者レコードを作成する。
// 同じメールアドレス（正規化後）のレコードが既に存在する場合はConflictを返す。
func (s *Service) Create(ctx context.Context, email string, patch model.RecordPatch) (rec *model.Record, err error) {
	defer func() { s.metrics.RecordRecordOperation(metrics.OpCreate, metrics.ResultOf(err)) }()

	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, model.NewInvalidInputError("Email is required")
	}
	if model.EmailTooLong(email) {
		return nil, model.NewInvalidInputError(fmt.Sprintf("Email must be at most %d characters", model.MaxEmailLength))
	}

	prepared, err := s.preparePatch(patch)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rec = &model.Record{Email: email, CreatedAt: now, UpdatedAt: now}
	if err := rec.Apply(prepared); err != nil {
		return nil, err
	}
	derive(rec)

	if err := s.repo.Create(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, model.NewRecordExistsError()
		}
		slog.Error("failed to create record", slog.String("error", err.Error()))
		return nil, model.NewStoreUnavailableError()
	}

	slog.Info("record created", slog.String("final_status", rec.FinalStatus))
	return rec, nil
}

// Update は保存済みレコードにパッチを浅くマージし、導出項目を再計算して保存する。
// 読み取りから書き込みまでをリポジトリ側で1レコード単位にアトミックに行う。
func (s *Service) Update(ctx context.Context, email string, patch model.RecordPatch) (rec *model.Record, err error) {
	defer func() { s.metrics.RecordRecordOperation(metrics.OpUpdate, metrics.ResultOf(err)) }()

	email = model.NormalizeEmail(email)
	if email == "" {
		return nil, model.NewRecordNotFoundError()
	}

	prepared, err := s.preparePatch(patch)
	if err != nil {
		return nil, err
	}

	rec, err = s.repo.Update(ctx, email, func(r *model.Record) error {
		if err := r.Apply(prepared); err != nil {
			return err
		}
		r.Email = email
		derive(r)
		r.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		var apiErr *model.APIError
		switch {
		case errors.As(err, &apiErr):
			return nil, apiErr
		case errors.Is(err, repository.ErrNotFound):
			return nil, model.NewRecordNotFoundError()
		}
		slog.Error("failed to update record", slog.String("error", err.Error()))
		return nil, model.NewStoreUnavailableError()
	}

	slog.Info("record updated", slog.String("final_status", rec.FinalStatus))
	return rec, nil
}

// preparePatch はパッチの値を検証し、自由記述項目をサニタイズした新しいパッチを返す。
// emailと読み取り専用項目は取り除く。未知のキーはApplyで拒否される。
func (s *Service) preparePatch(p model.RecordPatch) (model.RecordPatch, error) {
	out := make(model.RecordPatch, len(p))
	for field, raw := range p {
		if field == "email" {
			continue
		}
		if _, readOnly := model.ReadOnlyFields[field]; readOnly {
			continue
		}

		var value *string
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, model.NewInvalidInputError(fmt.Sprintf("%s must be a string", field))
		}
		if value == nil {
			out[field] = raw
			continue
		}

		v := *value
		if _, free := model.FreeTextFields[field]; free {
			v = s.sanitizer.Sanitize(v)
		}
		if err := s.catalog.Validate(field, v); err != nil {
			return nil, err
		}

		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", field, err)
		}
		out[field] = encoded
	}
	return out, nil
}

// derive は日付とステージステータスから導出項目を再計算する。
func derive(r *model.Record) {
	r.DeriveDates()
	r.FinalStatus = status.Derive(status.SignalsOf(r))
}
