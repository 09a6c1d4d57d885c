// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの役割を表す。
type Role string

const (
	// RoleBuyer は物件を探す購入希望者。
	RoleBuyer Role = "buyer"
	// RoleOwner は物件を掲載するオーナー。
	RoleOwner Role = "owner"
)

// ParseRole は文字列をRoleに変換する。
// buyer/owner以外の値はRoleErrorを返す。
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleBuyer:
		return RoleBuyer, nil
	case RoleOwner:
		return RoleOwner, nil
	default:
		return "", NewUnknownRoleError(s)
	}
}

// Account は認証アカウントを表す。
// メール確認が完了するまでサインインできない。
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Confirmed    bool
	ConfirmToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile はユーザーのプロフィールを表す。
// 登録時にサーバー側で作成され、クライアントからは読み取り専用。
// IDはアカウントIDと同一。
type Profile struct {
	ID        string
	FullName  string
	Role      Role
	CreatedAt time.Time
}

// Session はユーザーのログインセッションを表す。
// クライアントあたり同時に有効なセッションは最大1つ。
type Session struct {
	ID        string
	UserID    string
	Email     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// CurrentUser はSessionとProfileを結合したクライアント側の投影。
// 両方が揃っている場合にのみ存在し、セッション消失時に即座に破棄される。
type CurrentUser struct {
	ID       string
	Email    string
	FullName string
	Role     Role
}

// DeriveCurrentUser はSessionとProfileからCurrentUserを導出する。
// 同じ入力からは常に同じ結果が得られる（冪等な投影）。
// どちらかが欠けている場合はnilを返す。
func DeriveCurrentUser(session *Session, profile *Profile) *CurrentUser {
	if session == nil || profile == nil {
		return nil
	}
	return &CurrentUser{
		ID:       session.UserID,
		Email:    session.Email,
		FullName: profile.FullName,
		Role:     profile.Role,
	}
}
