package repository

import (
	"context"
	"database/sql"
	"fmt"

	"wisefido-fields/internal/domain"

	"github.com/google/uuid"
)

// PostgresFieldResponsesRepository 字段回答 Repository 实现
type PostgresFieldResponsesRepository struct {
	db *sql.DB
}

// NewPostgresFieldResponsesRepository 创建字段回答 Repository
func NewPostgresFieldResponsesRepository(db *sql.DB) *PostgresFieldResponsesRepository {
	return &PostgresFieldResponsesRepository{db: db}
}

var _ FieldResponsesRepository = (*PostgresFieldResponsesRepository)(nil)

func (r *PostgresFieldResponsesRepository) ListByUser(ctx context.Context, userID string) ([]domain.FieldResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	query := `
		SELECT
			response_id::text,
			user_id::text,
			field_id::text,
			value,
			created_at,
			updated_at
		FROM custom_field_responses
		WHERE user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list field responses: %w", err)
	}
	defer rows.Close()

	responses := make([]domain.FieldResponse, 0)
	for rows.Next() {
		var resp domain.FieldResponse
		var value sql.NullString
		err := rows.Scan(
			&resp.ResponseID,
			&resp.UserID,
			&resp.FieldID,
			&value,
			&resp.CreatedAt,
			&resp.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan field response: %w", err)
		}
		if value.Valid {
			resp.Value = &value.String
		}
		responses = append(responses, resp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate field responses: %w", err)
	}
	return responses, nil
}

// UpsertMany (user_id, field_id) 冲突时更新 value
// 校验在 service 层已全部通过，这里按条写入（事务包裹）
func (r *PostgresFieldResponsesRepository) UpsertMany(ctx context.Context, userID string, upserts []ResponseUpsert) error {
	if userID == "" {
		return fmt.Errorf("user_id is required")
	}
	if len(upserts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO custom_field_responses (response_id, user_id, field_id, value)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, field_id)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	for _, u := range upserts {
		var value any
		if u.Value != nil {
			value = *u.Value
		}
		if _, err := tx.ExecContext(ctx, query, uuid.New().String(), userID, u.FieldID, value); err != nil {
			return fmt.Errorf("failed to upsert field response %s: %w", u.FieldID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert tx: %w", err)
	}
	return nil
}
