package form

import (
	"fmt"
	"strings"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/metrics"
)

// StepResult is the outcome of one collection turn.
type StepResult struct {
	Message       string
	FormActive    bool
	CurrentField  string
	Completed     bool
	CollectedData map[string]string
}

// Collector is the live form-collection state machine for one session:
// inactive → active(field i) → complete → inactive. It is not safe for
// concurrent use; the owning session serializes turns.
type Collector struct {
	catalog   *Catalog
	questions []Question
	index     int
	active    bool
	data      map[string]string
	order     []string
}

// NewCollector creates an inactive collector with the question list
// materialized from the catalog.
func NewCollector(catalog *Catalog) *Collector {
	c := &Collector{catalog: catalog}
	c.Reset()
	return c
}

// Active reports whether a collection flow is in progress.
func (c *Collector) Active() bool {
	return c.active
}

// CurrentField returns the field currently being asked, or "".
func (c *Collector) CurrentField() string {
	if !c.active || c.index >= len(c.questions) {
		return ""
	}
	return c.questions[c.index].FieldName
}

// Questions returns the materialized question list.
func (c *Collector) Questions() []Question {
	return c.questions
}

// Reset drops to inactive with a freshly materialized question list and
// empty data.
func (c *Collector) Reset() {
	c.questions = c.catalog.Questions()
	c.index = 0
	c.active = false
	c.data = make(map[string]string)
	c.order = nil
}

// Start activates the flow and returns the opening prompt with the first
// question.
func (c *Collector) Start() *StepResult {
	c.active = true
	c.index = 0
	c.data = make(map[string]string)
	c.order = nil

	message := "Tôi sẽ giúp bạn tạo bộ hồ sơ đăng ký kinh doanh. \nTôi cần thu thập một số thông tin từ bạn.\n\nHãy bắt đầu với thông tin đầu tiên:"

	if len(c.questions) == 0 {
		// Nothing to collect; complete immediately.
		return c.complete()
	}

	first := c.questions[0]
	message += "\n\n" + first.Question
	if first.Description != "" {
		message += "\n📝 " + first.Description
	}

	return &StepResult{
		Message:      message,
		FormActive:   true,
		CurrentField: first.FieldName,
	}
}

// Submit processes one answer for the current field. Validation failure
// re-prompts the same field without advancing; the transition is atomic
// per turn.
func (c *Collector) Submit(value string) *StepResult {
	if c.index >= len(c.questions) {
		return c.complete()
	}

	current := c.questions[c.index]

	if verr := c.catalog.ValidateByName(current.FieldName, value); verr != nil {
		return &StepResult{
			Message:      fmt.Sprintf("❌ %s\n\nVui lòng nhập lại %s:", verr.Message, strings.ToLower(current.DisplayName)),
			FormActive:   true,
			CurrentField: current.FieldName,
		}
	}

	if _, exists := c.data[current.FieldName]; !exists {
		c.order = append(c.order, current.FieldName)
	}
	c.data[current.FieldName] = value
	c.index++

	if c.index >= len(c.questions) {
		return c.complete()
	}

	next := c.questions[c.index]
	message := fmt.Sprintf("✅ Đã lưu: %s\n\nTiếp theo: %s", current.DisplayName, next.Question)
	if next.Description != "" {
		message += "\n📝 " + next.Description
	}

	return &StepResult{
		Message:      message,
		FormActive:   true,
		CurrentField: next.FieldName,
	}
}

// complete emits the summary, hands the collected data to the caller, and
// resets the machine within the same turn.
func (c *Collector) complete() *StepResult {
	collected := c.data
	order := c.order

	c.index = 0
	c.active = false
	c.data = make(map[string]string)
	c.order = nil

	var summary strings.Builder
	summary.WriteString("🎉 Đã thu thập đủ thông tin! Dưới đây là tóm tắt:\n\n")
	for _, fieldName := range order {
		displayName := fieldName
		for _, q := range c.questions {
			if q.FieldName == fieldName {
				displayName = q.DisplayName
				break
			}
		}
		summary.WriteString(fmt.Sprintf("• %s: %s\n", displayName, collected[fieldName]))
	}
	summary.WriteString("\n📋 Bộ hồ sơ đăng ký kinh doanh đã được chuẩn bị với thông tin trên.")
	summary.WriteString("\n\nBạn có muốn chỉnh sửa thông tin nào không? Hoặc có câu hỏi gì khác về quy trình đăng ký?")

	metrics.FormCompletionsTotal.Inc()

	return &StepResult{
		Message:       summary.String(),
		FormActive:    false,
		Completed:     true,
		CollectedData: collected,
	}
}
