package domain

import "time"

// Company 租户公司（对应 companies 表）
type Company struct {
	CompanyID string    `db:"company_id" json:"company_id"`
	Name      string    `db:"name" json:"name"`
	Document  string    `db:"document" json:"document,omitempty"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
