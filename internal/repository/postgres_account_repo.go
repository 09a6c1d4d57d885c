package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/aqar/internal/model"
)

// PostgresAccountRepo はPostgreSQLを使用したアカウントリポジトリ。
type PostgresAccountRepo struct {
	db *sql.DB
}

// NewPostgresAccountRepo はPostgresAccountRepoを生成する。
func NewPostgresAccountRepo(db *sql.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

// FindByEmail は指定メールアドレスのアカウントを取得する。見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	account := &model.Account{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, confirmed, confirm_token, created_at, updated_at
		 FROM accounts WHERE email = $1`,
		email,
	).Scan(&account.ID, &account.Email, &account.PasswordHash, &account.Confirmed,
		&account.ConfirmToken, &account.CreatedAt, &account.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}

	return account, nil
}

// FindByConfirmToken は確認トークンでアカウントを検索する。見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByConfirmToken(ctx context.Context, token string) (*model.Account, error) {
	account := &model.Account{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, confirmed, confirm_token, created_at, updated_at
		 FROM accounts WHERE confirm_token = $1 AND confirm_token <> ''`,
		token,
	).Scan(&account.ID, &account.Email, &account.PasswordHash, &account.Confirmed,
		&account.ConfirmToken, &account.CreatedAt, &account.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account by confirm token: %w", err)
	}

	return account, nil
}

// CreateWithProfile はアカウントとプロフィールを同一トランザクションで作成する。
func (r *PostgresAccountRepo) CreateWithProfile(ctx context.Context, account *model.Account, profile *model.Profile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// アカウントを作成
	_, err = tx.ExecContext(ctx,
		`INSERT INTO accounts (id, email, password_hash, confirmed, confirm_token, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		account.ID, account.Email, account.PasswordHash, account.Confirmed,
		account.ConfirmToken, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	// プロフィールを作成
	_, err = tx.ExecContext(ctx,
		`INSERT INTO profiles (id, full_name, role, created_at)
		 VALUES ($1, $2, $3, $4)`,
		profile.ID, profile.FullName, string(profile.Role), profile.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// MarkConfirmed はアカウントを確認済みに更新し、確認トークンを無効化する。
func (r *PostgresAccountRepo) MarkConfirmed(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET confirmed = TRUE, confirm_token = '', updated_at = NOW()
		 WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark account confirmed: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("account not found: %s", id)
	}
	return nil
}

// compile-time interface check
var _ AccountRepository = (*PostgresAccountRepo)(nil)
