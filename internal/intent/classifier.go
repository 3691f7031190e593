// Package intent classifies user turns into legal, business or general.
package intent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/llm"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/model"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/logger"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/metrics"
)

// Descriptions holds the Vietnamese definition of each intent, used in the
// classification prompt and echoed back in results.
var Descriptions = map[model.Intent]string{
	model.IntentLegal:    "Câu hỏi về luật pháp, quy định, thông tư, nghị định liên quan đến đăng ký kinh doanh",
	model.IntentBusiness: "Yêu cầu hỗ trợ tạo hồ sơ, giấy tờ đăng ký kinh doanh cụ thể",
	model.IntentGeneral:  "Tư vấn chung về thành lập doanh nghiệp, quy trình, hướng dẫn tổng quan",
}

var systemPrompt = fmt.Sprintf(`Bạn là một AI chuyên phân loại ý định (intent) của người dùng trong lĩnh vực đăng ký kinh doanh tại Việt Nam.

Có 3 loại ý định chính:
1. **legal**: %s
   - Ví dụ: "Điều 15 Luật Doanh nghiệp quy định gì?", "Thông tư 02/2023 có hiệu lực khi nào?"

2. **business**: %s
   - Ví dụ: "Tôi muốn lập hồ sơ đăng ký công ty", "Hãy giúp tôi tạo đơn đăng ký kinh doanh"

3. **general**: %s
   - Ví dụ: "Quy trình thành lập công ty như thế nào?", "Cần chuẩn bị gì để mở công ty?"

Hãy phân loại câu hỏi của người dùng và chỉ trả về một trong ba từ: legal, business, hoặc general`,
	Descriptions[model.IntentLegal],
	Descriptions[model.IntentBusiness],
	Descriptions[model.IntentGeneral],
)

// Result is the outcome of one classification.
type Result struct {
	Intent      model.Intent `json:"intent"`
	Description string       `json:"description"`
	Confidence  float64      `json:"confidence"`
	RawResponse string       `json:"raw_response,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// Classifier maps free text to an intent via a short-output LLM call.
type Classifier struct {
	client      llm.Client
	modelName   string
	temperature float64
	logger      *logger.Logger
}

// NewClassifier creates a classifier backed by the given client.
func NewClassifier(client llm.Client, modelName string, temperature float64, log *logger.Logger) *Classifier {
	return &Classifier{
		client:      client,
		modelName:   modelName,
		temperature: temperature,
		logger:      log,
	}
}

// Classify resolves the intent of text given optional conversation context.
// Classification never fails the turn: backend errors degrade to general
// with zero confidence and the error recorded in the result.
func (c *Classifier) Classify(ctx context.Context, text, conversationContext string) Result {
	var contextPart string
	if conversationContext != "" {
		contextPart = fmt.Sprintf("Bối cảnh cuộc hội thoại trước:\n%s\n\n", conversationContext)
	}

	userPrompt := fmt.Sprintf(`%sCâu hỏi của người dùng: "%s"

Phân loại ý định của câu hỏi này (chỉ trả về: legal, business, hoặc general):`, contextPart, text)

	resp, err := c.client.Complete(ctx, &llm.CompletionRequest{
		Model: c.modelName,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   10, // a single keyword is expected
		Temperature: c.temperature,
	})
	if err != nil {
		c.logger.Warn("intent classification failed, defaulting to general", zap.Error(err))
		metrics.IntentClassificationsTotal.WithLabelValues(string(model.IntentGeneral), "error").Inc()
		return Result{
			Intent:      model.IntentGeneral,
			Description: Descriptions[model.IntentGeneral],
			Confidence:  0.0,
			Error:       err.Error(),
		}
	}

	raw := strings.ToLower(strings.TrimSpace(resp.Content))
	intent, confidence, resolution := resolve(raw)

	if resolution != "exact" {
		c.logger.Warn("non-canonical intent reply",
			zap.String("raw_response", raw),
			zap.String("resolved", intent.String()),
			zap.String("resolution", resolution),
		)
	}
	metrics.IntentClassificationsTotal.WithLabelValues(intent.String(), resolution).Inc()

	return Result{
		Intent:      intent,
		Description: Descriptions[intent],
		Confidence:  confidence,
		RawResponse: raw,
	}
}

// resolve applies the reply-resolution policy: exact keyword match wins,
// then the first canonical keyword appearing as a substring, then general.
func resolve(raw string) (model.Intent, float64, string) {
	if intent, err := model.ParseIntent(raw); err == nil {
		return intent, 0.9, "exact"
	}
	for _, intent := range model.Intents {
		if strings.Contains(raw, intent.String()) {
			return intent, 0.7, "substring"
		}
	}
	return model.IntentGeneral, 0.5, "fallback"
}
