package repository

import (
	"context"
	"database/sql"
	"fmt"

	"wisefido-fields/internal/domain"
)

// PostgresCompaniesRepository 公司 Repository 实现
type PostgresCompaniesRepository struct {
	db *sql.DB
}

// NewPostgresCompaniesRepository 创建公司 Repository
func NewPostgresCompaniesRepository(db *sql.DB) *PostgresCompaniesRepository {
	return &PostgresCompaniesRepository{db: db}
}

var _ CompaniesRepository = (*PostgresCompaniesRepository)(nil)

func (r *PostgresCompaniesRepository) GetCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	if companyID == "" {
		return nil, nil
	}

	query := `
		SELECT
			company_id::text,
			name,
			COALESCE(document, ''),
			status,
			created_at,
			updated_at
		FROM companies
		WHERE company_id = $1`

	var company domain.Company
	err := r.db.QueryRowContext(ctx, query, companyID).Scan(
		&company.CompanyID,
		&company.Name,
		&company.Document,
		&company.Status,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &company, nil
}

func (r *PostgresCompaniesRepository) UpdateCompany(ctx context.Context, company *domain.Company) (*domain.Company, error) {
	if company.CompanyID == "" {
		return nil, fmt.Errorf("company_id is required")
	}

	query := `
		UPDATE companies SET
			name = $2,
			document = NULLIF($3, ''),
			status = $4,
			updated_at = NOW()
		WHERE company_id = $1
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		company.CompanyID,
		company.Name,
		company.Document,
		company.Status,
	).Scan(&company.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("company not found: %w", err)
		}
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	return company, nil
}
