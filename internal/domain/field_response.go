package domain

import "time"

// FieldResponse 用户对自定义字段的回答（对应 custom_field_responses 表）
// (user_id, field_id) 复合唯一；Value 为 nil 表示已清空
type FieldResponse struct {
	ResponseID string    `db:"response_id" json:"response_id"`
	UserID     string    `db:"user_id" json:"user_id"`
	FieldID    string    `db:"field_id" json:"field_id"`
	Value      *string   `db:"value" json:"value"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// FieldWithValue 字段定义与某个用户的回答的组合（my-fields / user-fields 返回结构）
type FieldWithValue struct {
	CustomField
	Value *string `json:"value"`
}
