package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/aqar/internal/model"
	"github.com/lib/pq"
)

// PostgresPropertyRepo はPostgreSQLを使用した物件リポジトリ。
type PostgresPropertyRepo struct {
	db *sql.DB
}

// NewPostgresPropertyRepo はPostgresPropertyRepoを生成する。
func NewPostgresPropertyRepo(db *sql.DB) *PostgresPropertyRepo {
	return &PostgresPropertyRepo{db: db}
}

// ListAll は全物件をcreated_at降順（新着順）で取得する。
func (r *PostgresPropertyRepo) ListAll(ctx context.Context) ([]*model.Property, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, title, description, images, price, area, bedrooms,
		        bathrooms, floor, neighborhood, city, transaction_type, contact_phone, created_at
		 FROM properties ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	var properties []*model.Property
	for rows.Next() {
		p := &model.Property{}
		var images pq.StringArray
		var transactionType string
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &images,
			&p.Price, &p.Area, &p.Bedrooms, &p.Bathrooms, &p.Floor,
			&p.Neighborhood, &p.City, &transactionType, &p.ContactPhone, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		p.Images = []string(images)
		p.TransactionType = model.TransactionType(transactionType)
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate properties: %w", err)
	}

	return properties, nil
}

// Create は物件を作成する。
func (r *PostgresPropertyRepo) Create(ctx context.Context, property *model.Property) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO properties (id, owner_id, title, description, images, price, area,
		        bedrooms, bathrooms, floor, neighborhood, city, transaction_type, contact_phone, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		property.ID, property.OwnerID, property.Title, property.Description,
		pq.Array(property.Images), property.Price, property.Area, property.Bedrooms,
		property.Bathrooms, property.Floor, property.Neighborhood, property.City,
		string(property.TransactionType), property.ContactPhone, property.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert property: %w", err)
	}
	return nil
}

// compile-time interface check
var _ PropertyRepository = (*PostgresPropertyRepo)(nil)
