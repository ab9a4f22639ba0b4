package repository

import (
	"context"
	"database/sql"
	"fmt"

	"wisefido-fields/internal/domain"
)

// PostgresUsersRepository 用户查询实现（只读）
type PostgresUsersRepository struct {
	db *sql.DB
}

// NewPostgresUsersRepository 创建用户 Repository
func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

func (r *PostgresUsersRepository) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, nil
	}

	query := `
		SELECT
			user_id::text,
			COALESCE(company_id::text, ''),
			name,
			email,
			role,
			COALESCE(created_by::text, ''),
			is_active,
			created_at,
			updated_at
		FROM users
		WHERE user_id = $1`

	var user domain.User
	var role string
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&user.UserID,
		&user.CompanyID,
		&user.Name,
		&user.Email,
		&role,
		&user.CreatedBy,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	user.Role = domain.UserRole(role)
	return &user, nil
}
