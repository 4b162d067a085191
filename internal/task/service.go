// Package task は所有者スコープのタスク管理を提供する。
// すべての操作は呼び出し元のIdentityが所有するタスクだけを対象とする。
package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/hitoshi/tocook/internal/metrics"
	"github.com/hitoshi/tocook/internal/model"
	"github.com/hitoshi/tocook/internal/repository"
)

// Enricher はタスク説明文を拡充するインターフェース。
type Enricher interface {
	Enrich(ctx context.Context, description string) (string, error)
}

// 操作結果ラベル
const (
	outcomeSuccess  = "success"
	outcomeNotFound = "not_found"
	outcomeInvalid  = "invalid"
	outcomeError    = "error"
)

// Service はタスクのCRUDを提供するサービス層。
type Service struct {
	repo          repository.TaskRepository
	enricher      Enricher
	enrichTimeout time.Duration
	metrics       metrics.MetricsCollector
}

// ServiceOption はServiceのオプション設定。
type ServiceOption func(*Service)

// WithEnricher は作成時の説明文拡充を有効にする。
func WithEnricher(e Enricher, timeout time.Duration) ServiceOption {
	return func(s *Service) {
		s.enricher = e
		s.enrichTimeout = timeout
	}
}

// WithMetrics はメトリクス収集を設定する。
func WithMetrics(mc metrics.MetricsCollector) ServiceOption {
	return func(s *Service) {
		s.metrics = mc
	}
}

// NewService はServiceを生成する。
func NewService(repo repository.TaskRepository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List は所有者のタスク一覧を返す。
func (s *Service) List(ctx context.Context, identity model.Identity) ([]*model.Task, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListByOwner(ctx, identity.UserID)
	if err != nil {
		s.record("list", outcomeError)
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	s.record("list", outcomeSuccess)
	return tasks, nil
}

// Get は所有者のタスクを1件返す。他ユーザーのタスクは存在しないものとして扱う。
func (s *Service) Get(ctx context.Context, identity model.Identity, taskID int64) (*model.Task, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if err := validateTaskID(taskID); err != nil {
		s.record("get", outcomeInvalid)
		return nil, err
	}

	t, err := s.repo.FindByIDAndOwner(ctx, taskID, identity.UserID)
	if err != nil {
		s.record("get", outcomeError)
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if t == nil {
		s.record("get", outcomeNotFound)
		return nil, model.NewTaskNotFoundError(taskID)
	}
	s.record("get", outcomeSuccess)
	return t, nil
}

// Create はリクエストを検証し、説明文を拡充してからタスクを作成する。
func (s *Service) Create(ctx context.Context, identity model.Identity, req Request) (*model.Task, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if fields := req.Validate(); len(fields) > 0 {
		s.record("create", outcomeInvalid)
		return nil, model.NewValidationError(fields)
	}

	t := req.toTask(identity.UserID)
	t.Description = s.enrichDescription(ctx, t.Description)

	if err := s.repo.Create(ctx, t); err != nil {
		s.record("create", outcomeError)
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.record("create", outcomeSuccess)
	slog.Info("task created",
		slog.Int64("task_id", t.ID),
		slog.Int64("owner_id", t.OwnerID),
	)
	return t, nil
}

// Update はタスクの4項目を置き換える。所有者とIDが一致する行がなければTASK_NOT_FOUND。
func (s *Service) Update(ctx context.Context, identity model.Identity, taskID int64, req Request) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}
	if err := validateTaskID(taskID); err != nil {
		s.record("update", outcomeInvalid)
		return err
	}
	if fields := req.Validate(); len(fields) > 0 {
		s.record("update", outcomeInvalid)
		return model.NewValidationError(fields)
	}

	t := req.toTask(identity.UserID)
	t.ID = taskID

	updated, err := s.repo.UpdateByIDAndOwner(ctx, t)
	if err != nil {
		s.record("update", outcomeError)
		return fmt.Errorf("failed to update task: %w", err)
	}
	if !updated {
		s.record("update", outcomeNotFound)
		return model.NewTaskNotFoundError(taskID)
	}
	s.record("update", outcomeSuccess)
	return nil
}

// Delete は所有者のタスクを削除する。削除済みのタスクはTASK_NOT_FOUNDになる。
func (s *Service) Delete(ctx context.Context, identity model.Identity, taskID int64) error {
	if err := requireIdentity(identity); err != nil {
		return err
	}
	if err := validateTaskID(taskID); err != nil {
		s.record("delete", outcomeInvalid)
		return err
	}

	deleted, err := s.repo.DeleteByIDAndOwner(ctx, taskID, identity.UserID)
	if err != nil {
		s.record("delete", outcomeError)
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !deleted {
		s.record("delete", outcomeNotFound)
		return model.NewTaskNotFoundError(taskID)
	}

	s.record("delete", outcomeSuccess)
	slog.Info("task deleted",
		slog.Int64("task_id", taskID),
		slog.Int64("owner_id", identity.UserID),
	)
	return nil
}

// enrichDescription は説明文を拡充する。失敗時は元の説明文をそのまま返す。
func (s *Service) enrichDescription(ctx context.Context, description string) string {
	if s.enricher == nil {
		s.recordEnrichment(metrics.EnrichSkipped, 0)
		return description
	}

	if s.enrichTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.enrichTimeout)
		defer cancel()
	}

	start := time.Now()
	enriched, err := s.enricher.Enrich(ctx, description)
	elapsed := time.Since(start)
	if err == nil {
		enriched = truncateRunes(enriched, model.TaskDescriptionMaxLength)
		if utf8.RuneCountInString(enriched) < model.TaskDescriptionMinLength {
			err = errors.New("enriched description too short")
		}
	}
	if err != nil {
		s.recordEnrichment(metrics.EnrichFailed, elapsed)
		slog.Warn("description enrichment failed, keeping original",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", elapsed),
		)
		return description
	}

	s.recordEnrichment(metrics.EnrichSucceeded, elapsed)
	return enriched
}

func (s *Service) record(operation, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordTaskOperation(operation, outcome)
	}
}

func (s *Service) recordEnrichment(outcome string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordEnrichment(outcome, d)
	}
}

func requireIdentity(identity model.Identity) error {
	if identity.UserID <= 0 {
		return model.NewUnauthorizedError()
	}
	return nil
}

func validateTaskID(id int64) error {
	if id <= 0 {
		return model.NewValidationError([]model.FieldError{
			{Field: "id", Message: "must be greater than 0"},
		})
	}
	return nil
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
