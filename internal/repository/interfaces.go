// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/tocook/internal/model"
)

// ErrDuplicateUsername はユーザー名の一意制約違反を表す。
var ErrDuplicateUsername = errors.New("username already exists")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成し、採番されたIDと作成日時をuserに設定する。
	// ユーザー名が重複する場合はErrDuplicateUsernameを返す。
	Create(ctx context.Context, user *model.User) error
	// FindByUsername はユーザー名でユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// TaskRepository はタスクデータの永続化インターフェース。
// すべての読み書きは所有者IDで絞り込まれる。所有者条件を持たない操作は提供しない。
type TaskRepository interface {
	// ListByOwner は所有者のタスク一覧を返す。
	ListByOwner(ctx context.Context, ownerID int64) ([]*model.Task, error)
	// FindByIDAndOwner はIDと所有者が一致するタスクを取得する。見つからない場合はnilを返す。
	FindByIDAndOwner(ctx context.Context, id, ownerID int64) (*model.Task, error)
	// Create はタスクを作成し、採番されたIDをtaskに設定する。
	Create(ctx context.Context, task *model.Task) error
	// UpdateByIDAndOwner はIDと所有者が一致するタスクの4項目を置き換える。
	// 対象行が存在しない場合はfalseを返す。
	UpdateByIDAndOwner(ctx context.Context, task *model.Task) (bool, error)
	// DeleteByIDAndOwner はIDと所有者が一致するタスクを削除する。
	// 対象行が存在しない場合はfalseを返す。
	DeleteByIDAndOwner(ctx context.Context, id, ownerID int64) (bool, error)
}
