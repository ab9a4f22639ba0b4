package service

import (
	"errors"
	"testing"

	"wisefido-fields/internal/domain"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func f64Ptr(f float64) *float64 {
	return &f
}

func assertBadRequest(t *testing.T, err error) {
	t.Helper()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest), "expected ErrBadRequest, got %v", err)
}

func TestValidateFieldValue_Required(t *testing.T) {
	field := &domain.CustomField{Label: "Nome", Type: domain.FieldTypeText, IsRequired: true}

	assertBadRequest(t, ValidateFieldValue(field, nil))
	assertBadRequest(t, ValidateFieldValue(field, strPtr("")))
	assertBadRequest(t, ValidateFieldValue(field, strPtr("   ")))
	assert.NoError(t, ValidateFieldValue(field, strPtr("Maria")))
}

func TestValidateFieldValue_OptionalEmpty(t *testing.T) {
	// 可选字段允许清空，不进入类型校验
	field := &domain.CustomField{Label: "Obs", Type: domain.FieldTypeNumber, IsRequired: false}

	assert.NoError(t, ValidateFieldValue(field, nil))
	assert.NoError(t, ValidateFieldValue(field, strPtr("")))
	assert.Error(t, ValidateFieldValue(field, strPtr("abc")))
}

func TestValidateFieldValue_TextLengthAndPattern(t *testing.T) {
	field := &domain.CustomField{
		Label: "Apelido",
		Type:  domain.FieldTypeText,
		Validation: &domain.FieldValidation{
			MinLength: intPtr(3),
			MaxLength: intPtr(5),
			Pattern:   `^[a-z]+$`,
		},
	}

	assertBadRequest(t, ValidateFieldValue(field, strPtr("ab")))
	assertBadRequest(t, ValidateFieldValue(field, strPtr("abcdef")))
	assertBadRequest(t, ValidateFieldValue(field, strPtr("ABC")))
	assert.NoError(t, ValidateFieldValue(field, strPtr("abc")))
}

func TestValidateFieldValue_BrokenPatternDoesNotBlock(t *testing.T) {
	field := &domain.CustomField{
		Label:      "Codigo",
		Type:       domain.FieldTypeText,
		Validation: &domain.FieldValidation{Pattern: `([`},
	}

	assert.NoError(t, ValidateFieldValue(field, strPtr("anything")))
}

func TestValidateFieldValue_Email(t *testing.T) {
	field := &domain.CustomField{Label: "Email", Type: domain.FieldTypeEmail}

	assert.NoError(t, ValidateFieldValue(field, strPtr("maria@example.com")))
	assertBadRequest(t, ValidateFieldValue(field, strPtr("maria@example")))
	assertBadRequest(t, ValidateFieldValue(field, strPtr("not-an-email")))
	assertBadRequest(t, ValidateFieldValue(field, strPtr("a b@example.com")))
}

func TestValidateFieldValue_Phone(t *testing.T) {
	field := &domain.CustomField{Label: "Telefone", Type: domain.FieldTypePhone}

	// 手机（11 位，DDD + 9 开头）
	assert.NoError(t, ValidateFieldValue(field, strPtr("11987654321")))
	assert.NoError(t, ValidateFieldValue(field, strPtr("(11) 98765-4321")))
	// 座机（10 位，第三位 2-5）
	assert.NoError(t, ValidateFieldValue(field, strPtr("1132654321")))
	// 手机号第三位必须是 9
	assertBadRequest(t, ValidateFieldValue(field, strPtr("11887654321")))
	// DDD 不能含 0
	assertBadRequest(t, ValidateFieldValue(field, strPtr("01987654321")))
	assertBadRequest(t, ValidateFieldValue(field, strPtr("123")))
}

func TestValidateFieldValue_NumberRange(t *testing.T) {
	field := &domain.CustomField{
		Label:      "Idade",
		Type:       domain.FieldTypeNumber,
		Validation: &domain.FieldValidation{Min: f64Ptr(18), Max: f64Ptr(65)},
	}

	assert.NoError(t, ValidateFieldValue(field, strPtr("30")))
	assert.NoError(t, ValidateFieldValue(field, strPtr("18")))
	assertBadRequest(t, ValidateFieldValue(field, strPtr("17.5")))
	assertBadRequest(t, ValidateFieldValue(field, strPtr("66")))
	assertBadRequest(t, ValidateFieldValue(field, strPtr("NaN idade")))
}

func TestValidateFieldValue_Select(t *testing.T) {
	field := &domain.CustomField{
		Label:   "Setor",
		Type:    domain.FieldTypeSelect,
		Options: []string{"Vendas", "Suporte", "TI"},
	}

	assert.NoError(t, ValidateFieldValue(field, strPtr("Vendas")))
	assertBadRequest(t, ValidateFieldValue(field, strPtr("RH")))

	multi := *field
	multi.AllowMultiple = true
	assert.NoError(t, ValidateFieldValue(&multi, strPtr("Vendas, TI")))
	assertBadRequest(t, ValidateFieldValue(&multi, strPtr("Vendas, RH")))
}

func TestValidateFieldValue_Checkbox(t *testing.T) {
	field := &domain.CustomField{Label: "Aceite", Type: domain.FieldTypeCheckbox}

	assert.NoError(t, ValidateFieldValue(field, strPtr("true")))
	assert.NoError(t, ValidateFieldValue(field, strPtr("false")))
	assert.NoError(t, ValidateFieldValue(field, strPtr("1")))
	assertBadRequest(t, ValidateFieldValue(field, strPtr("yes")))
}

func TestValidateFieldValue_Date(t *testing.T) {
	field := &domain.CustomField{Label: "Admissao", Type: domain.FieldTypeDate}

	assert.NoError(t, ValidateFieldValue(field, strPtr("2024-03-15")))
	assert.NoError(t, ValidateFieldValue(field, strPtr("2024-03-15T10:30:00Z")))
	assertBadRequest(t, ValidateFieldValue(field, strPtr("15/03/2024")))
	assertBadRequest(t, ValidateFieldValue(field, strPtr("2024-13-45")))
}

func TestValidateFieldValue_FilePassesThrough(t *testing.T) {
	field := &domain.CustomField{Label: "Anexo", Type: domain.FieldTypeFile}

	assert.NoError(t, ValidateFieldValue(field, strPtr("uploads/doc.pdf")))
}
