package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/model"
)

func TestValidateDate(t *testing.T) {
	field := model.FormField{Name: "ngay_sinh", Type: model.FieldDate, Required: true}

	assert.Nil(t, Validate(field, "15/03/1990"))
	assert.Nil(t, Validate(field, "99/99/9999")) // shape only, no calendar check

	for _, v := range []string{"2024-01-01", "1/3/1990", "15/03/90", "", "ngày mai"} {
		verr := Validate(field, v)
		require.NotNil(t, verr, "value %q", v)
		assert.Equal(t, "Định dạng ngày không đúng. Vui lòng nhập theo format dd/mm/yyyy", verr.Message)
	}
}

func TestValidateNumber(t *testing.T) {
	field := model.FormField{Name: "von_dieu_le", Type: model.FieldNumber, Required: true}

	for _, v := range []string{"1000000", "1,000,000", "1.000.000", "50"} {
		assert.Nil(t, Validate(field, v), "value %q", v)
	}

	for _, v := range []string{"một tỷ", "12a", ""} {
		verr := Validate(field, v)
		require.NotNil(t, verr, "value %q", v)
		assert.Equal(t, "Giá trị phải là số", verr.Message)
	}
}

func TestValidateText(t *testing.T) {
	required := model.FormField{Name: "ten_cong_ty", Type: model.FieldText, Required: true}
	optional := model.FormField{Name: "ten_tieng_anh", Type: model.FieldText, Required: false}

	assert.Nil(t, Validate(required, "Công ty TNHH ABC"))

	verr := Validate(required, "   ")
	require.NotNil(t, verr)
	assert.Equal(t, "Trường này là bắt buộc", verr.Message)

	assert.Nil(t, Validate(optional, ""))
}

func TestValidateEmail(t *testing.T) {
	field := model.FormField{Name: "email", Type: model.FieldEmail, Required: true}

	assert.Nil(t, Validate(field, "lienhe@congty.vn"))

	for _, v := range []string{"congty.vn", "a@b", "a @b.vn", ""} {
		require.NotNil(t, Validate(field, v), "value %q", v)
	}
}

func TestValidatePhoneIsFreeText(t *testing.T) {
	field := model.FormField{Name: "dien_thoai", Type: model.FieldPhone, Required: false}

	assert.Nil(t, Validate(field, "0901234567"))
	assert.Nil(t, Validate(field, "không có"))
	assert.Nil(t, Validate(field, ""))
}

func TestValidateByNameUnknownFieldIsValid(t *testing.T) {
	catalog := NewCatalog()
	assert.Nil(t, catalog.ValidateByName("truong_khong_ton_tai", "bất kỳ"))
}

func TestValidateByNameUsesCatalogDefinition(t *testing.T) {
	catalog := NewCatalog()

	verr := catalog.ValidateByName("chu_so_huu_ngay_sinh", "2024-01-01")
	require.NotNil(t, verr)
	assert.Equal(t, "chu_so_huu_ngay_sinh", verr.Field)

	assert.Nil(t, catalog.ValidateByName("chu_so_huu_ngay_sinh", "01/01/1980"))
}
