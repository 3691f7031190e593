// Package form holds the registration-dossier field catalog and the
// turn-by-turn form collection state machine.
package form

import (
	"fmt"
	"strings"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/model"
)

// Question is one materialized prompt of the collection flow.
type Question struct {
	FieldName   string          `json:"field_name"`
	Question    string          `json:"question"`
	DisplayName string          `json:"display_name"`
	FieldType   model.FieldType `json:"field_type"`
	Description string          `json:"description,omitempty"`
	Required    bool            `json:"required"`
}

// Catalog is the static set of registration document templates.
type Catalog struct {
	templates []model.FormTemplate
}

// NewCatalog builds the standard business-registration dossier catalog.
func NewCatalog() *Catalog {
	return &Catalog{templates: []model.FormTemplate{
		ownerListTemplate(),
		shareholderListTemplate(),
		charterTemplate(),
		applicationTemplate(),
		powerOfAttorneyTemplate(),
	}}
}

// Templates returns all templates in catalog order.
func (c *Catalog) Templates() []model.FormTemplate {
	return c.templates
}

// Template looks up a template by name.
func (c *Catalog) Template(name string) (model.FormTemplate, bool) {
	for _, t := range c.templates {
		if t.Name == name {
			return t, true
		}
	}
	return model.FormTemplate{}, false
}

// FieldByName finds a field definition across all templates.
func (c *Catalog) FieldByName(name string) (model.FormField, bool) {
	for _, t := range c.templates {
		if f, ok := t.FieldByName(name); ok {
			return f, true
		}
	}
	return model.FormField{}, false
}

// Questions materializes the collection question list: the union of
// required fields across all templates, deduplicated by field name in
// first-occurrence order. The flow asks one linear sequence regardless of
// which template owns each field; a template-aware flow would pick one
// template first and ask only its fields.
func (c *Catalog) Questions() []Question {
	seen := make(map[string]bool)
	var questions []Question
	for _, t := range c.templates {
		for _, f := range t.Fields {
			if !f.Required || seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			questions = append(questions, Question{
				FieldName:   f.Name,
				Question:    fmt.Sprintf("Vui lòng nhập %s:", strings.ToLower(f.DisplayName)),
				DisplayName: f.DisplayName,
				FieldType:   f.Type,
				Description: f.Description,
				Required:    f.Required,
			})
		}
	}
	return questions
}

func ownerListTemplate() model.FormTemplate {
	return model.FormTemplate{
		Name:        "danh_sach_chu_so_huu",
		DisplayName: "Danh sách chủ sở hữu",
		Description: "Danh sách chủ sở hữu công ty",
		Fields: []model.FormField{
			{Name: "chu_so_huu_ho_ten", DisplayName: "Họ và tên chủ sở hữu", Type: model.FieldText, Required: true, Description: "Họ và tên đầy đủ của chủ sở hữu công ty"},
			{Name: "chu_so_huu_cccd", DisplayName: "Số CMND/CCCD", Type: model.FieldText, Required: true, Description: "Số chứng minh nhân dân hoặc căn cước công dân"},
			{Name: "chu_so_huu_ngay_sinh", DisplayName: "Ngày sinh", Type: model.FieldDate, Required: true, Description: "Ngày sinh của chủ sở hữu (dd/mm/yyyy)"},
			{Name: "chu_so_huu_dia_chi", DisplayName: "Địa chỉ thường trú", Type: model.FieldText, Required: true, Description: "Địa chỉ thường trú của chủ sở hữu"},
			{Name: "chu_so_huu_dien_thoai", DisplayName: "Số điện thoại", Type: model.FieldPhone, Required: false, Description: "Số điện thoại liên hệ"},
		},
	}
}

func shareholderListTemplate() model.FormTemplate {
	return model.FormTemplate{
		Name:        "danh_sach_co_dong",
		DisplayName: "Danh sách cổ đông",
		Description: "Danh sách cổ đông sáng lập",
		Fields: []model.FormField{
			{Name: "co_dong_ho_ten", DisplayName: "Họ và tên cổ đông", Type: model.FieldText, Required: true, Description: "Họ và tên đầy đủ của cổ đông"},
			{Name: "co_dong_cccd", DisplayName: "Số CMND/CCCD", Type: model.FieldText, Required: true, Description: "Số chứng minh nhân dân hoặc căn cước công dân"},
			{Name: "co_dong_ty_le_von", DisplayName: "Tỷ lệ góp vốn (%)", Type: model.FieldNumber, Required: true, Description: "Tỷ lệ phần trăm góp vốn của cổ đông"},
			{Name: "co_dong_gia_tri_von", DisplayName: "Giá trị vốn góp", Type: model.FieldNumber, Required: true, Description: "Giá trị vốn góp bằng tiền (VNĐ)"},
		},
	}
}

func charterTemplate() model.FormTemplate {
	return model.FormTemplate{
		Name:        "dieu_le_cong_ty",
		DisplayName: "Điều lệ công ty",
		Description: "Điều lệ thành lập công ty",
		Fields: []model.FormField{
			{Name: "ten_cong_ty", DisplayName: "Tên công ty", Type: model.FieldText, Required: true, Description: "Tên đầy đủ của công ty"},
			{Name: "ten_cong_ty_tieng_anh", DisplayName: "Tên công ty (tiếng Anh)", Type: model.FieldText, Required: false, Description: "Tên công ty bằng tiếng Anh (nếu có)"},
			{Name: "dia_chi_tru_so", DisplayName: "Địa chỉ trụ sở chính", Type: model.FieldText, Required: true, Description: "Địa chỉ đầy đủ của trụ sở chính công ty"},
			{Name: "von_dieu_le", DisplayName: "Vốn điều lệ", Type: model.FieldNumber, Required: true, Description: "Vốn điều lệ của công ty (VNĐ)"},
			{Name: "nganh_nghe_kinh_doanh", DisplayName: "Ngành nghề kinh doanh", Type: model.FieldText, Required: true, Description: "Mô tả chi tiết các ngành nghề kinh doanh"},
		},
	}
}

func applicationTemplate() model.FormTemplate {
	return model.FormTemplate{
		Name:        "giay_de_nghi",
		DisplayName: "Giấy đề nghị đăng ký doanh nghiệp",
		Description: "Đơn đề nghị đăng ký thành lập doanh nghiệp",
		Fields: []model.FormField{
			{Name: "nguoi_dai_dien", DisplayName: "Người đại diện pháp luật", Type: model.FieldText, Required: true, Description: "Họ tên người đại diện pháp luật"},
			{Name: "chuc_vu_dai_dien", DisplayName: "Chức vụ", Type: model.FieldText, Required: true, Description: "Chức vụ của người đại diện (Giám đốc, Tổng Giám đốc, ...)"},
			{Name: "ngay_lap_don", DisplayName: "Ngày lập đơn", Type: model.FieldDate, Required: true, Description: "Ngày lập đơn đăng ký (dd/mm/yyyy)"},
		},
	}
}

func powerOfAttorneyTemplate() model.FormTemplate {
	return model.FormTemplate{
		Name:        "giay_uy_quyen",
		DisplayName: "Giấy ủy quyền",
		Description: "Giấy ủy quyền thực hiện thủ tục đăng ký",
		Fields: []model.FormField{
			{Name: "nguoi_uy_quyen", DisplayName: "Người ủy quyền", Type: model.FieldText, Required: true, Description: "Họ tên người ủy quyền"},
			{Name: "nguoi_duoc_uy_quyen", DisplayName: "Người được ủy quyền", Type: model.FieldText, Required: true, Description: "Họ tên người được ủy quyền"},
			{Name: "noi_dung_uy_quyen", DisplayName: "Nội dung ủy quyền", Type: model.FieldText, Required: true, Description: "Mô tả cụ thể những việc được ủy quyền"},
		},
	}
}
