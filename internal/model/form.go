package model

// FieldType is the validation class of a form field.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
	FieldDate   FieldType = "date"
	FieldEmail  FieldType = "email"
	FieldPhone  FieldType = "phone"
)

// FormField is a single field of a registration document template.
// Field definitions are static and immutable.
type FormField struct {
	Name              string    `json:"field_name"`
	DisplayName       string    `json:"display_name"`
	Type              FieldType `json:"field_type"`
	Required          bool      `json:"required"`
	Description       string    `json:"description,omitempty"`
	ValidationPattern string    `json:"validation_pattern,omitempty"`
}

// FormTemplate is a named, ordered catalog of fields for one registration
// document.
type FormTemplate struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Description string      `json:"description,omitempty"`
	Fields      []FormField `json:"fields"`
}

// RequiredFields returns the template's required fields in order.
func (t FormTemplate) RequiredFields() []FormField {
	var required []FormField
	for _, f := range t.Fields {
		if f.Required {
			required = append(required, f)
		}
	}
	return required
}

// FieldByName looks up a field by its stable key.
func (t FormTemplate) FieldByName(name string) (FormField, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FormField{}, false
}
