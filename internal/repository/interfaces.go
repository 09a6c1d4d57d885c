// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/aqar/internal/model"
)

// AccountRepository は認証アカウントの永続化インターフェース。
type AccountRepository interface {
	// FindByEmail は指定メールアドレスのアカウントを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Account, error)

	// FindByConfirmToken は確認トークンでアカウントを検索する。見つからない場合はnilを返す。
	FindByConfirmToken(ctx context.Context, token string) (*model.Account, error)

	// CreateWithProfile はアカウントとプロフィールを同一トランザクションで作成する。
	CreateWithProfile(ctx context.Context, account *model.Account, profile *model.Profile) error

	// MarkConfirmed はアカウントを確認済みに更新し、確認トークンを無効化する。
	MarkConfirmed(ctx context.Context, id string) error
}

// ProfileRepository はプロフィールの永続化インターフェース。
type ProfileRepository interface {
	// FindByID は指定ID（= セッションのユーザーID）のプロフィールを取得する。
	// 見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Profile, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	// サインイン時の既存セッション失効に使用する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// PropertyRepository は物件データの永続化インターフェース。
// 更新・削除操作は提供しない。物件は作成されるのみ。
type PropertyRepository interface {
	// ListAll は全物件をcreated_at降順（新着順）で取得する。
	ListAll(ctx context.Context) ([]*model.Property, error)

	// Create は物件を作成する。
	Create(ctx context.Context, property *model.Property) error
}
