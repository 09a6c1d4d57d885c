package client

import (
	"testing"

	"github.com/hitoshi/aqar/internal/model"
)

// TestResolve は(loading, session, currentUser, roleErr)からの画面決定を検証する。
func TestResolve(t *testing.T) {
	session := &model.Session{ID: "s", UserID: "u"}
	buyer := &model.CurrentUser{ID: "u", Role: model.RoleBuyer}
	owner := &model.CurrentUser{ID: "u", Role: model.RoleOwner}
	roleErr := model.NewUnknownRoleError("admin")

	tests := []struct {
		name    string
		loading bool
		session *model.Session
		current *model.CurrentUser
		roleErr error
		want    Screen
	}{
		{name: "初回解決中", loading: true, want: ScreenLoading},
		{name: "解決中はセッションがあってもローディング", loading: true, session: session, current: buyer, want: ScreenLoading},
		{name: "セッション不在", want: ScreenUnauthenticated},
		{name: "セッションのみ（プロフィール解決前）", session: session, want: ScreenUnauthenticated},
		{name: "購入希望者", session: session, current: buyer, want: ScreenBuyer},
		{name: "オーナー", session: session, current: owner, want: ScreenOwner},
		{name: "役割不明はエラー画面", session: session, roleErr: roleErr, want: ScreenError},
		{name: "セッションなしのroleErrは無視", roleErr: roleErr, want: ScreenUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.loading, tt.session, tt.current, tt.roleErr)
			if got != tt.want {
				t.Errorf("Resolve() = %s, want %s", got, tt.want)
			}
		})
	}
}

// TestResolve_Transitions は典型的な画面遷移の系列を検証する。
func TestResolve_Transitions(t *testing.T) {
	session := &model.Session{ID: "s", UserID: "u"}
	owner := &model.CurrentUser{ID: "u", Role: model.RoleOwner}

	// Loading → Unauthenticated → Owner → Unauthenticated
	if got := Resolve(true, nil, nil, nil); got != ScreenLoading {
		t.Errorf("起動直後 = %s, want %s", got, ScreenLoading)
	}
	if got := Resolve(false, nil, nil, nil); got != ScreenUnauthenticated {
		t.Errorf("初回解決完了・未認証 = %s, want %s", got, ScreenUnauthenticated)
	}
	if got := Resolve(false, session, owner, nil); got != ScreenOwner {
		t.Errorf("サインイン後 = %s, want %s", got, ScreenOwner)
	}
	if got := Resolve(false, nil, nil, nil); got != ScreenUnauthenticated {
		t.Errorf("サインアウト後 = %s, want %s", got, ScreenUnauthenticated)
	}
}
