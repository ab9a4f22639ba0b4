package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"wisefido-fields/internal/domain"
)

// 校验引擎：按字段类型 + 字段自带的校验配置检查一个提交值。
// 必填检查先于类型检查，且使用独立的失败原因。
// file 类型的内容校验走上传通道，这里只处理文本值。

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	mobilePattern   = regexp.MustCompile(`^[1-9]{2}9[0-9]{8}$`)
	landlinePattern = regexp.MustCompile(`^[1-9]{2}[2-5][0-9]{7}$`)
	nonDigits       = regexp.MustCompile(`\D`)
)

// 接受的日期格式（前端提交 ISO 日期或完整时间戳）
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
}

// ValidateFieldValue 校验用户对某个字段的提交值
// 返回 nil 表示通过；否则返回包装了 ErrBadRequest 的原因
func ValidateFieldValue(field *domain.CustomField, value *string) error {
	empty := value == nil || strings.TrimSpace(*value) == ""

	if field.IsRequired && empty {
		return fmt.Errorf("%w: field %q is required", domain.ErrBadRequest, field.Label)
	}
	if empty {
		// 可选字段允许空值/清空
		return nil
	}

	v := strings.TrimSpace(*value)

	switch field.Type {
	case domain.FieldTypeText, domain.FieldTypeTextarea:
		if err := validateLength(field, v); err != nil {
			return err
		}
		return validatePattern(field, v)

	case domain.FieldTypeEmail:
		if err := validateLength(field, v); err != nil {
			return err
		}
		if !emailPattern.MatchString(v) {
			return fmt.Errorf("%w: field %q must be a valid email", domain.ErrBadRequest, field.Label)
		}
		return nil

	case domain.FieldTypePhone:
		if err := validateLength(field, v); err != nil {
			return err
		}
		if !validPhone(v) {
			return fmt.Errorf("%w: field %q must be a valid phone number", domain.ErrBadRequest, field.Label)
		}
		return nil

	case domain.FieldTypeNumber:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: field %q must be numeric", domain.ErrBadRequest, field.Label)
		}
		if fv := field.Validation; fv != nil {
			if fv.Min != nil && n < *fv.Min {
				return fmt.Errorf("%w: field %q must be >= %v", domain.ErrBadRequest, field.Label, *fv.Min)
			}
			if fv.Max != nil && n > *fv.Max {
				return fmt.Errorf("%w: field %q must be <= %v", domain.ErrBadRequest, field.Label, *fv.Max)
			}
		}
		return nil

	case domain.FieldTypeSelect:
		values := []string{v}
		if field.AllowMultiple {
			values = splitMulti(v)
		}
		for _, item := range values {
			if !containsOption(field.Options, item) {
				return fmt.Errorf("%w: field %q has no option %q", domain.ErrBadRequest, field.Label, item)
			}
		}
		return nil

	case domain.FieldTypeCheckbox:
		if _, err := strconv.ParseBool(v); err != nil {
			return fmt.Errorf("%w: field %q must be a boolean value", domain.ErrBadRequest, field.Label)
		}
		return nil

	case domain.FieldTypeDate:
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, v); err == nil {
				return nil
			}
		}
		return fmt.Errorf("%w: field %q must be a valid date", domain.ErrBadRequest, field.Label)

	case domain.FieldTypeFile:
		// 文件约束（大小/数量/类型）在上传 use-case 里校验
		return nil
	}

	return fmt.Errorf("%w: unknown field type %q", domain.ErrBadRequest, field.Type)
}

func validateLength(field *domain.CustomField, v string) error {
	fv := field.Validation
	if fv == nil {
		return nil
	}
	length := len([]rune(v))
	if fv.MinLength != nil && length < *fv.MinLength {
		return fmt.Errorf("%w: field %q must have at least %d characters", domain.ErrBadRequest, field.Label, *fv.MinLength)
	}
	if fv.MaxLength != nil && length > *fv.MaxLength {
		return fmt.Errorf("%w: field %q must have at most %d characters", domain.ErrBadRequest, field.Label, *fv.MaxLength)
	}
	return nil
}

func validatePattern(field *domain.CustomField, v string) error {
	fv := field.Validation
	if fv == nil || fv.Pattern == "" {
		return nil
	}
	re, err := regexp.Compile(fv.Pattern)
	if err != nil {
		// 配置坏掉不应拦住用户提交
		return nil
	}
	if !re.MatchString(v) {
		return fmt.Errorf("%w: field %q does not match the expected format", domain.ErrBadRequest, field.Label)
	}
	return nil
}

// validPhone 巴西座机/手机号码：去掉掩码后 10 或 11 位
func validPhone(v string) bool {
	digits := nonDigits.ReplaceAllString(v, "")
	switch len(digits) {
	case 11:
		return mobilePattern.MatchString(digits)
	case 10:
		return landlinePattern.MatchString(digits)
	}
	return false
}

func splitMulti(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func containsOption(options []string, v string) bool {
	for _, opt := range options {
		if opt == v {
			return true
		}
	}
	return false
}
