package client

import "github.com/hitoshi/aqar/internal/model"

// Screen は表示すべき画面を表す。
type Screen string

const (
	// ScreenLoading は初回セッション解決中の画面。
	ScreenLoading Screen = "loading"
	// ScreenUnauthenticated は未認証画面。
	ScreenUnauthenticated Screen = "unauthenticated"
	// ScreenBuyer は購入希望者向けダッシュボード。
	ScreenBuyer Screen = "buyer"
	// ScreenOwner はオーナー向けダッシュボード。
	ScreenOwner Screen = "owner"
	// ScreenError は役割が解釈できない場合のエラー画面。
	// 空白画面を出さないための明示的な状態。
	ScreenError Screen = "error"
)

// Resolve は(loading, session, currentUser, roleErr)から画面を決定する純粋関数。
//
// 状態遷移:
//   - Loading → Unauthenticated: 初回解決が完了しセッション不在
//   - Loading → Buyer|Owner: セッションとプロフィールの両方が解決
//   - Unauthenticated → Buyer|Owner: サインイン/登録成功後のプロフィール解決
//   - Buyer|Owner → Unauthenticated: サインアウト
func Resolve(loading bool, session *model.Session, current *model.CurrentUser, roleErr error) Screen {
	if loading {
		return ScreenLoading
	}
	if session != nil && roleErr != nil {
		return ScreenError
	}
	if current == nil {
		return ScreenUnauthenticated
	}
	switch current.Role {
	case model.RoleBuyer:
		return ScreenBuyer
	case model.RoleOwner:
		return ScreenOwner
	default:
		return ScreenError
	}
}
