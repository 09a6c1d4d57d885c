// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hitoshi/aqar/internal/client"
	"github.com/hitoshi/aqar/internal/middleware"
	"github.com/hitoshi/aqar/internal/model"
)

const sessionCookieName = "session_id"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	SignUp(ctx context.Context, email, password, fullName string, role string) (string, error)
	ConfirmEmail(ctx context.Context, token string) error
	SignIn(ctx context.Context, email, password string) (*model.Session, error)
	SignOut(ctx context.Context, sessionID string) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
}

// ProfileFinder はプロフィール取得のインターフェース。
type ProfileFinder interface {
	FindByID(ctx context.Context, id string) (*model.Profile, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はメール/パスワード認証関連のHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	profiles ProfileFinder
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, profiles ProfileFinder, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		profiles: profiles,
		config:   config,
	}
}

// signUpRequest は登録リクエストのボディ。
type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// SignUp は新規登録を処理する。
// メール確認が完了するまでセッションは発行されない。
// POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		http.Error(w, "email, password and full_name are required", http.StatusBadRequest)
		return
	}

	confirmToken, err := h.service.SignUp(r.Context(), req.Email, req.Password, req.FullName, req.Role)
	if err != nil {
		slog.Warn("sign up failed", slog.String("error", err.Error()))
		middleware.WriteError(w, err)
		return
	}

	// 確認トークンはメール送信基盤経由で届く想定。レスポンスには含めない。
	slog.Info("confirmation email queued", slog.String("token", confirmToken))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"confirmation_required": true,
	})
}

// ConfirmEmail はメール確認を処理する。
// POST /auth/confirm
func (h *AuthHandler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	if err := h.service.ConfirmEmail(r.Context(), req.Token); err != nil {
		middleware.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// signInRequest はサインインリクエストのボディ。
type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn は認証情報を検証しセッションCookieを設定する。
// 認証エラーは統一フォーマットでインラインに返す。
// POST /auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	session, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	h.setSessionCookie(w, session.ID, h.config.SessionMaxAge)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"user_id": session.UserID,
		"email":   session.Email,
	})
}

// SignOut はセッションを破棄しCookieをクリアする。
// POST /auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		if signOutErr := h.service.SignOut(r.Context(), cookie.Value); signOutErr != nil {
			slog.Error("failed to sign out", slog.String("error", signOutErr.Error()))
			// サインアウト失敗してもCookieはクリアする
		}
	}

	h.setSessionCookie(w, "", -1)
	w.WriteHeader(http.StatusNoContent)
}

// meResponse は現在の状態レスポンス。
type meResponse struct {
	Screen string          `json:"screen"`
	User   *currentUserDTO `json:"user,omitempty"`
}

// currentUserDTO はCurrentUserのAPI表現。
type currentUserDTO struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// Me は現在のセッションとプロフィールを解決し、表示すべき画面を返す。
// 未認証やプロフィール未検出は未認証画面、役割不明はエラー画面になる。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := h.currentSession(r)

	var current *model.CurrentUser
	var roleErr error

	if session != nil {
		profile, err := h.profiles.FindByID(r.Context(), session.UserID)
		if err != nil {
			if apiErr, ok := err.(*model.APIError); ok && apiErr.Code == model.ErrCodeUnknownRole {
				roleErr = err
			} else {
				slog.Error("failed to load profile", slog.String("error", err.Error()))
			}
		}
		current = model.DeriveCurrentUser(session, profile)
	}

	screen := client.Resolve(false, session, current, roleErr)

	resp := meResponse{Screen: string(screen)}
	if current != nil {
		resp.User = &currentUserDTO{
			ID:       current.ID,
			Email:    current.Email,
			FullName: current.FullName,
			Role:     string(current.Role),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// currentSession はCookieから有効なセッションを取得する。なければnil。
func (h *AuthHandler) currentSession(r *http.Request) *model.Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	session, err := h.service.GetSession(r.Context(), cookie.Value)
	if err != nil {
		slog.Error("failed to resolve session", slog.String("error", err.Error()))
		return nil
	}
	return session
}

// setSessionCookie はセッションCookieを設定する（HTTP Only）。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
