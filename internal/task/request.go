package task

import (
	"fmt"
	"unicode/utf8"

	"github.com/hitoshi/tocook/internal/model"
)

// Request はタスクの作成・更新リクエストを表す。
// 未指定の必須フィールドを検出するためポインタで受ける。
type Request struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *int    `json:"priority"`
	Completed   *bool   `json:"complete"`
}

// Validate はフィールド制約を検証する。文字数はルーン単位で数える。
func (r *Request) Validate() []model.FieldError {
	var fields []model.FieldError

	fields = appendLengthError(fields, "title", r.Title, model.TaskTitleMinLength, model.TaskTitleMaxLength)
	fields = appendLengthError(fields, "description", r.Description, model.TaskDescriptionMinLength, model.TaskDescriptionMaxLength)

	switch {
	case r.Priority == nil:
		fields = append(fields, model.FieldError{Field: "priority", Message: "field required"})
	case *r.Priority < model.TaskPriorityMin || *r.Priority > model.TaskPriorityMax:
		fields = append(fields, model.FieldError{
			Field:   "priority",
			Message: fmt.Sprintf("must be between %d and %d", model.TaskPriorityMin, model.TaskPriorityMax),
		})
	}

	if r.Completed == nil {
		fields = append(fields, model.FieldError{Field: "complete", Message: "field required"})
	}
	return fields
}

func appendLengthError(fields []model.FieldError, name string, value *string, min, max int) []model.FieldError {
	if value == nil {
		return append(fields, model.FieldError{Field: name, Message: "field required"})
	}
	n := utf8.RuneCountInString(*value)
	if n < min || n > max {
		return append(fields, model.FieldError{
			Field:   name,
			Message: fmt.Sprintf("length must be between %d and %d characters", min, max),
		})
	}
	return fields
}

// toTask は検証済みのリクエストからTaskを組み立てる。
func (r *Request) toTask(ownerID int64) *model.Task {
	return &model.Task{
		Title:       *r.Title,
		Description: *r.Description,
		Priority:    *r.Priority,
		Completed:   *r.Completed,
		OwnerID:     ownerID,
	}
}
