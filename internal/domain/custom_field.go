package domain

import "time"

// FieldType 自定义字段类型
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
	FieldTypeEmail    FieldType = "email"
	FieldTypePhone    FieldType = "phone"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeDate     FieldType = "date"
	FieldTypeFile     FieldType = "file"
)

// FieldTypes 所有合法的字段类型（顺序固定，用于错误提示）
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeTextarea,
	FieldTypeNumber,
	FieldTypeEmail,
	FieldTypePhone,
	FieldTypeSelect,
	FieldTypeCheckbox,
	FieldTypeDate,
	FieldTypeFile,
}

// Valid 判断字段类型是否合法
func (t FieldType) Valid() bool {
	for _, v := range FieldTypes {
		if t == v {
			return true
		}
	}
	return false
}

// FieldValidation 字段的校验配置（按类型选用）
// 长度限制用于 text/textarea/email/phone，数值范围用于 number
type FieldValidation struct {
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
}

// FileConfig file 类型字段的上传约束
// MaxFileSize 单位 MB（1..10），MaxFiles 1..5
type FileConfig struct {
	MaxFileSize  int      `json:"max_file_size"`
	MaxFiles     int      `json:"max_files"`
	AllowedTypes []string `json:"allowed_types"`
}

// CustomField 租户自定义字段（对应 custom_fields 表）
// 每个字段只属于一个公司；所有读写必须按 company_id 过滤
type CustomField struct {
	FieldID       string           `db:"field_id" json:"field_id"`
	CompanyID     string           `db:"company_id" json:"company_id"`
	Label         string           `db:"label" json:"label"`
	Type          FieldType        `db:"field_type" json:"type"`
	Placeholder   string           `db:"placeholder" json:"placeholder,omitempty"`
	HelpText      string           `db:"help_text" json:"help_text,omitempty"`
	IsRequired    bool             `db:"is_required" json:"is_required"`
	Options       []string         `db:"options" json:"options,omitempty"`
	AllowMultiple bool             `db:"allow_multiple" json:"allow_multiple"`
	Validation    *FieldValidation `db:"validation" json:"validation,omitempty"`
	FileConfig    *FileConfig      `db:"file_config" json:"file_config,omitempty"`
	Order         int              `db:"display_order" json:"order"`
	IsActive      bool             `db:"is_active" json:"is_active"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time        `db:"updated_at" json:"updated_at"`
}
