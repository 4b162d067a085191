package model

// タスクの入力制約。
const (
	TaskTitleMinLength       = 3
	TaskTitleMaxLength       = 50
	TaskDescriptionMinLength = 3
	TaskDescriptionMaxLength = 1500
	TaskPriorityMin          = 1
	TaskPriorityMax          = 5
)

// Task はユーザーが所有するToCookタスクを表す。
type Task struct {
	ID          int64
	Title       string
	Description string
	Priority    int
	Completed   bool
	OwnerID     int64
}
