// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュで、平文パスワードは保持しない。
type User struct {
	ID           int64
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PhoneNumber  *string // 任意項目。未設定はNULL
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Identity はアクセストークンから復元した呼び出し元の識別情報を表す。
// タスク操作にはこの値を明示的に渡す。
type Identity struct {
	Username string
	UserID   int64
	Role     string
}
