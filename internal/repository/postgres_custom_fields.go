package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"wisefido-fields/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresCustomFieldsRepository 自定义字段 Repository 实现
type PostgresCustomFieldsRepository struct {
	db *sql.DB
}

// NewPostgresCustomFieldsRepository 创建自定义字段 Repository
func NewPostgresCustomFieldsRepository(db *sql.DB) *PostgresCustomFieldsRepository {
	return &PostgresCustomFieldsRepository{db: db}
}

var _ CustomFieldsRepository = (*PostgresCustomFieldsRepository)(nil)

const customFieldColumns = `
	field_id::text,
	company_id::text,
	label,
	field_type,
	COALESCE(placeholder, ''),
	COALESCE(help_text, ''),
	is_required,
	options,
	allow_multiple,
	validation,
	file_config,
	display_order,
	is_active,
	created_at,
	updated_at`

func (r *PostgresCustomFieldsRepository) GetField(ctx context.Context, fieldID string) (*domain.CustomField, error) {
	if fieldID == "" {
		return nil, nil
	}

	query := `SELECT ` + customFieldColumns + `
		FROM custom_fields
		WHERE field_id = $1`

	field, err := scanCustomField(r.db.QueryRowContext(ctx, query, fieldID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get custom field: %w", err)
	}
	return field, nil
}

func (r *PostgresCustomFieldsRepository) ListByCompany(ctx context.Context, companyID string) ([]domain.CustomField, error) {
	return r.list(ctx, companyID, false)
}

func (r *PostgresCustomFieldsRepository) ListActiveByCompany(ctx context.Context, companyID string) ([]domain.CustomField, error) {
	return r.list(ctx, companyID, true)
}

func (r *PostgresCustomFieldsRepository) list(ctx context.Context, companyID string, activeOnly bool) ([]domain.CustomField, error) {
	if companyID == "" {
		return nil, fmt.Errorf("company_id is required")
	}

	query := `SELECT ` + customFieldColumns + `
		FROM custom_fields
		WHERE company_id = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY display_order ASC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom fields: %w", err)
	}
	defer rows.Close()

	fields := make([]domain.CustomField, 0)
	for rows.Next() {
		field, err := scanCustomField(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan custom field: %w", err)
		}
		fields = append(fields, *field)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate custom fields: %w", err)
	}
	return fields, nil
}

func (r *PostgresCustomFieldsRepository) CreateField(ctx context.Context, field *domain.CustomField) (*domain.CustomField, error) {
	if field.CompanyID == "" {
		return nil, fmt.Errorf("company_id is required")
	}
	if field.FieldID == "" {
		field.FieldID = uuid.New().String()
	}

	validationJSON, err := marshalNullable(field.Validation)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal validation: %w", err)
	}
	fileConfigJSON, err := marshalNullable(field.FileConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal file_config: %w", err)
	}

	query := `
		INSERT INTO custom_fields (
			field_id, company_id, label, field_type, placeholder, help_text,
			is_required, options, allow_multiple, validation, file_config,
			display_order, is_active
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		field.FieldID,
		field.CompanyID,
		field.Label,
		string(field.Type),
		field.Placeholder,
		field.HelpText,
		field.IsRequired,
		pq.Array(field.Options),
		field.AllowMultiple,
		validationJSON,
		fileConfigJSON,
		field.Order,
		field.IsActive,
	).Scan(&field.CreatedAt, &field.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom field: %w", err)
	}
	return field, nil
}

func (r *PostgresCustomFieldsRepository) UpdateField(ctx context.Context, field *domain.CustomField) (*domain.CustomField, error) {
	if field.FieldID == "" || field.CompanyID == "" {
		return nil, fmt.Errorf("field_id and company_id are required")
	}

	validationJSON, err := marshalNullable(field.Validation)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal validation: %w", err)
	}
	fileConfigJSON, err := marshalNullable(field.FileConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal file_config: %w", err)
	}

	query := `
		UPDATE custom_fields SET
			label = $3,
			field_type = $4,
			placeholder = NULLIF($5, ''),
			help_text = NULLIF($6, ''),
			is_required = $7,
			options = $8,
			allow_multiple = $9,
			validation = $10,
			file_config = $11,
			is_active = $12,
			updated_at = NOW()
		WHERE company_id = $1 AND field_id = $2
		RETURNING updated_at`

	err = r.db.QueryRowContext(ctx, query,
		field.CompanyID,
		field.FieldID,
		field.Label,
		string(field.Type),
		field.Placeholder,
		field.HelpText,
		field.IsRequired,
		pq.Array(field.Options),
		field.AllowMultiple,
		validationJSON,
		fileConfigJSON,
		field.IsActive,
	).Scan(&field.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("custom field not found: %w", err)
		}
		return nil, fmt.Errorf("failed to update custom field: %w", err)
	}
	return field, nil
}

func (r *PostgresCustomFieldsRepository) DeleteField(ctx context.Context, companyID, fieldID string) error {
	if companyID == "" || fieldID == "" {
		return fmt.Errorf("company_id and field_id are required")
	}

	result, err := r.db.ExecContext(ctx,
		`DELETE FROM custom_fields WHERE company_id = $1 AND field_id = $2`,
		companyID, fieldID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete custom field: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Reorder 在一个事务里依次赋 display_order 0..N-1
// WHERE 同时带 company_id：即使上游漏了过滤也不会改到别的租户
func (r *PostgresCustomFieldsRepository) Reorder(ctx context.Context, companyID string, fieldIDs []string) error {
	if companyID == "" {
		return fmt.Errorf("company_id is required")
	}
	if len(fieldIDs) == 0 {
		return fmt.Errorf("field_ids is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reorder tx: %w", err)
	}
	defer tx.Rollback()

	for i, fieldID := range fieldIDs {
		_, err := tx.ExecContext(ctx,
			`UPDATE custom_fields SET display_order = $3, updated_at = NOW()
			 WHERE company_id = $1 AND field_id = $2`,
			companyID, fieldID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to reorder custom field %s: %w", fieldID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reorder tx: %w", err)
	}
	return nil
}

// rowScanner 兼容 *sql.Row 和 *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomField(row rowScanner) (*domain.CustomField, error) {
	var field domain.CustomField
	var options pq.StringArray
	var validationJSON, fileConfigJSON sql.NullString
	var fieldType string

	err := row.Scan(
		&field.FieldID,
		&field.CompanyID,
		&field.Label,
		&fieldType,
		&field.Placeholder,
		&field.HelpText,
		&field.IsRequired,
		&options,
		&field.AllowMultiple,
		&validationJSON,
		&fileConfigJSON,
		&field.Order,
		&field.IsActive,
		&field.CreatedAt,
		&field.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	field.Type = domain.FieldType(fieldType)
	field.Options = []string(options)

	if validationJSON.Valid && validationJSON.String != "" {
		var v domain.FieldValidation
		if err := json.Unmarshal([]byte(validationJSON.String), &v); err != nil {
			return nil, fmt.Errorf("failed to unmarshal validation: %w", err)
		}
		field.Validation = &v
	}
	if fileConfigJSON.Valid && fileConfigJSON.String != "" {
		var fc domain.FileConfig
		if err := json.Unmarshal([]byte(fileConfigJSON.String), &fc); err != nil {
			return nil, fmt.Errorf("failed to unmarshal file_config: %w", err)
		}
		field.FileConfig = &fc
	}
	return &field, nil
}

// marshalNullable 空指针写 NULL，否则写 JSON 字符串
func marshalNullable(v any) (any, error) {
	switch x := v.(type) {
	case *domain.FieldValidation:
		if x == nil {
			return nil, nil
		}
	case *domain.FileConfig:
		if x == nil {
			return nil, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}
