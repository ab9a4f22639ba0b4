package domain

import "time"

// UserRole 用户角色
type UserRole string

const (
	RoleOwner   UserRole = "owner"
	RoleManager UserRole = "manager"
	RoleUser    UserRole = "user"
)

// User 用户领域模型（对应 users 表）
// CompanyID 为空表示尚未绑定公司
type User struct {
	UserID    string    `db:"user_id" json:"user_id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      UserRole  `db:"role" json:"role"`
	CreatedBy string    `db:"created_by" json:"created_by,omitempty"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// CanManageFields owner/manager 可以查看字段配置，仅 owner 可以修改
func (u *User) CanManageFields() bool {
	return u.Role == RoleOwner || u.Role == RoleManager
}
