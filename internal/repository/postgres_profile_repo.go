package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/aqar/internal/model"
)

// PostgresProfileRepo はPostgreSQLを使用したプロフィールリポジトリ。
type PostgresProfileRepo struct {
	db *sql.DB
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(db *sql.DB) *PostgresProfileRepo {
	return &PostgresProfileRepo{db: db}
}

// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
// roleカラムが解釈できない値の場合はRoleErrorを返す。
func (r *PostgresProfileRepo) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	profile := &model.Profile{}
	var role string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, full_name, role, created_at FROM profiles WHERE id = $1`,
		id,
	).Scan(&profile.ID, &profile.FullName, &role, &profile.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by ID: %w", err)
	}

	parsed, err := model.ParseRole(role)
	if err != nil {
		return nil, err
	}
	profile.Role = parsed

	return profile, nil
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
