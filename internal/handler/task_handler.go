package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tocook/internal/middleware"
	"github.com/hitoshi/tocook/internal/model"
	"github.com/hitoshi/tocook/internal/task"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	List(ctx context.Context, identity model.Identity) ([]*model.Task, error)
	Get(ctx context.Context, identity model.Identity, taskID int64) (*model.Task, error)
	Create(ctx context.Context, identity model.Identity, req task.Request) (*model.Task, error)
	Update(ctx context.Context, identity model.Identity, taskID int64, req task.Request) error
	Delete(ctx context.Context, identity model.Identity, taskID int64) error
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{service: service}
}

// taskResponse はタスクのAPIレスポンス。
type taskResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Completed   bool   `json:"complete"`
	OwnerID     int64  `json:"owner_id"`
}

func toTaskResponse(t *model.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		Completed:   t.Completed,
		OwnerID:     t.OwnerID,
	}
}

// List は呼び出し元が所有するタスク一覧を返す。
// GET /todo/
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	tasks, err := h.service.List(r.Context(), identity)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, toTaskResponse(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get はタスクを1件返す。
// GET /todo/todo/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	taskID, err := parseTaskID(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	t, err := h.service.Get(r.Context(), identity, taskID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(t))
}

// Create はタスクを作成する。
// POST /todo/todo
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req task.Request
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	t, err := h.service.Create(r.Context(), identity, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTaskResponse(t))
}

// Update はタスクの全項目を置き換える。
// PUT /todo/todo/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	taskID, err := parseTaskID(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	var req task.Request
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.service.Update(r.Context(), identity, taskID, req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete はタスクを削除する。
// DELETE /todo/todo/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	taskID, err := parseTaskID(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), identity, taskID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		middleware.WriteUnauthorized(w, model.NewUnauthorizedError())
		return model.Identity{}, false
	}
	return identity, true
}

// parseTaskID はパスパラメータのタスクIDを解析する。範囲の検証はサービス層で行う。
func parseTaskID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, model.NewValidationError([]model.FieldError{
			{Field: "id", Message: "must be an integer"},
		})
	}
	return id, nil
}
