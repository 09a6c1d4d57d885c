// Package auth はメール/パスワード認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/aqar/internal/model"
	"github.com/hitoshi/aqar/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
// セッションの発行・破棄時にNotifier経由で変更イベントを配信する。
type Service struct {
	accountRepo repository.AccountRepository
	sessionRepo repository.SessionRepository
	notifier    *Notifier
	config      ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	accountRepo repository.AccountRepository,
	sessionRepo repository.SessionRepository,
	notifier *Notifier,
	config ServiceConfig,
) *Service {
	return &Service{
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		notifier:    notifier,
		config:      config,
	}
}

// Notifier はセッション変更イベントのNotifierを返す。
func (s *Service) Notifier() *Notifier {
	return s.notifier
}

// SignUp は新規アカウントとプロフィールを作成し、確認トークンを返す。
// メール確認が完了するまでセッションは発行されない。
// 役割がbuyer/owner以外の場合はRoleErrorを返す。
func (s *Service) SignUp(ctx context.Context, email, password, fullName string, role string) (string, error) {
	parsedRole, err := model.ParseRole(role)
	if err != nil {
		return "", err
	}

	existing, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return "", model.NewEmailAlreadyRegisteredError()
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	now := time.Now()
	confirmToken := uuid.New().String()
	accountID := uuid.New().String()

	account := &model.Account{
		ID:           accountID,
		Email:        email,
		PasswordHash: hash,
		Confirmed:    false,
		ConfirmToken: confirmToken,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	profile := &model.Profile{
		ID:        accountID,
		FullName:  fullName,
		Role:      parsedRole,
		CreatedAt: now,
	}

	if err := s.accountRepo.CreateWithProfile(ctx, account, profile); err != nil {
		return "", fmt.Errorf("failed to create account and profile: %w", err)
	}

	slog.Info("new account registered (pending confirmation)",
		slog.String("account_id", accountID),
		slog.String("role", role),
	)

	return confirmToken, nil
}

// ConfirmEmail は確認トークンを検証し、アカウントを確認済みにする。
// トークンが無効な場合はAuthErrorを返す。
func (s *Service) ConfirmEmail(ctx context.Context, token string) error {
	account, err := s.accountRepo.FindByConfirmToken(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to find account by confirm token: %w", err)
	}
	if account == nil {
		return model.NewInvalidConfirmTokenError()
	}

	if err := s.accountRepo.MarkConfirmed(ctx, account.ID); err != nil {
		return fmt.Errorf("failed to confirm account: %w", err)
	}

	slog.Info("account confirmed", slog.String("account_id", account.ID))
	return nil
}

// SignIn は認証情報を検証し、新しいセッションを発行する。
// 未確認アカウント、認証情報不一致はAuthErrorを返す。
// クライアントあたり有効なセッションは最大1つのため、既存セッションは失効させる。
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	account, err := s.accountRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	if account == nil || !VerifyPassword(account.PasswordHash, password) {
		return nil, model.NewBadCredentialsError()
	}
	if !account.Confirmed {
		return nil, model.NewEmailNotConfirmedError()
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, account.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke existing sessions: %w", err)
	}

	session, err := s.createSession(ctx, account.ID, account.Email)
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(Event{Type: EventSignedIn, Session: session})

	slog.Info("user signed in", slog.String("user_id", account.ID))
	return session, nil
}

// SignOut はセッションを破棄し、SignedOutイベントを配信する。
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.notifier.Publish(Event{Type: EventSignedOut, Session: nil})

	slog.Info("user signed out", slog.String("session_id", sessionID))
	return nil
}

// GetSession は現在のセッションを取得する。
// 存在しない、または期限切れの場合はnilを返す。
func (s *Service) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return session, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID, email string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		Email:     email,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
