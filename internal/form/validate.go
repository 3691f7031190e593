package form

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/model"
)

var (
	dateRe  = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidationError is a user-correctable input problem with a Vietnamese
// message suitable for re-prompting.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks a raw value against the field's type rules. A nil error
// means the value is acceptable.
func Validate(field model.FormField, value string) *ValidationError {
	switch field.Type {
	case model.FieldDate:
		if !dateRe.MatchString(value) {
			return &ValidationError{Field: field.Name, Message: "Định dạng ngày không đúng. Vui lòng nhập theo format dd/mm/yyyy"}
		}
	case model.FieldNumber:
		// Thousands separators (both comma and period) are tolerated.
		stripped := strings.ReplaceAll(strings.ReplaceAll(value, ",", ""), ".", "")
		if _, err := strconv.ParseFloat(stripped, 64); err != nil {
			return &ValidationError{Field: field.Name, Message: "Giá trị phải là số"}
		}
	case model.FieldEmail:
		if !emailRe.MatchString(strings.TrimSpace(value)) {
			return &ValidationError{Field: field.Name, Message: "Địa chỉ email không hợp lệ. Vui lòng nhập theo dạng ten@tenmien.vn"}
		}
	case model.FieldText:
		if field.Required && strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field.Name, Message: "Trường này là bắt buộc"}
		}
	case model.FieldPhone:
		// Phone numbers are collected as free text.
	}
	return nil
}

// ValidateByName validates against the catalog definition for the named
// field. Unknown fields are vacuously valid so the collection flow cannot
// deadlock on a stale field name.
func (c *Catalog) ValidateByName(fieldName, value string) *ValidationError {
	field, ok := c.FieldByName(fieldName)
	if !ok {
		return nil
	}
	return Validate(field, value)
}
