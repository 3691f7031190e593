// Package chatbot contains the conversational orchestrator: the per-turn
// state machine dispatching between free-form Q&A and form collection.
package chatbot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/form"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/intent"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/llm"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/model"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/retrieval"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/logger"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/metrics"
)

// Orchestrator processes one conversation turn by turn. It owns the
// conversation history and the form collection state for a single session
// and must not be called concurrently; the session layer serializes access.
type Orchestrator struct {
	classifier *intent.Classifier
	retriever  *retrieval.Retriever
	generator  llm.Client
	genModel   string
	catalog    *form.Catalog
	collector  *form.Collector

	conversation  *model.Conversation
	currentIntent model.Intent
	contextWindow int

	logger *logger.Logger
}

// Config holds orchestrator construction parameters.
type Config struct {
	Classifier      *intent.Classifier
	Retriever       *retrieval.Retriever
	Generator       llm.Client
	GenerationModel string
	Catalog         *form.Catalog
	ContextWindow   int // user+assistant exchanges kept as context
	Logger          *logger.Logger
}

// New creates an orchestrator for a fresh conversation.
func New(cfg Config) *Orchestrator {
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = 3
	}
	if cfg.Catalog == nil {
		cfg.Catalog = form.NewCatalog()
	}
	return &Orchestrator{
		classifier:    cfg.Classifier,
		retriever:     cfg.Retriever,
		generator:     cfg.Generator,
		genModel:      cfg.GenerationModel,
		catalog:       cfg.Catalog,
		collector:     form.NewCollector(cfg.Catalog),
		conversation:  model.NewConversation(""),
		contextWindow: cfg.ContextWindow,
		logger:        cfg.Logger,
	}
}

// ProcessMessage handles one user turn and always returns a response.
// Unexpected failures are caught at this boundary: the reply degrades to a
// fixed apology and the history is rolled back to its pre-turn state.
func (o *Orchestrator) ProcessMessage(ctx context.Context, userInput string) (resp *model.ChatResponse) {
	start := time.Now()
	historyLen := len(o.conversation.Messages)

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("turn processing panicked",
				zap.Any("panic", r),
				zap.String("conversation_id", o.conversation.ID),
			)
			o.conversation.Messages = o.conversation.Messages[:historyLen]
			metrics.ChatErrorsTotal.Inc()
			resp = &model.ChatResponse{
				Message:  turnFailureMessage,
				Sources:  []model.Source{},
				Metadata: map[string]any{"error": true},
			}
		}
	}()

	o.conversation.Append(model.NewMessage(model.RoleUser, userInput))

	var response *model.ChatResponse
	if o.collector.Active() {
		// Mid-form the user is answering the pending field, not asking a
		// new question. Skip classification for this turn.
		response = o.handleFormCollection(userInput)
	} else {
		conversationContext := o.conversation.Context(o.contextWindow)
		result := o.classifier.Classify(ctx, userInput, conversationContext)
		o.currentIntent = result.Intent

		o.logger.Info("intent classified",
			zap.String("conversation_id", o.conversation.ID),
			zap.String("intent", result.Intent.String()),
			zap.Float64("confidence", result.Confidence),
		)

		switch result.Intent {
		case model.IntentLegal:
			response = o.handleLegalQuestion(ctx, userInput, conversationContext)
		case model.IntentBusiness:
			response = o.handleBusinessRequest()
		default:
			response = o.handleGeneralQuestion(ctx, userInput, conversationContext)
		}
	}

	botMsg := model.NewMessage(model.RoleAssistant, response.Message)
	botMsg.Intent = response.Intent
	if response.FormActive {
		botMsg.Metadata = map[string]string{"form_active": "true"}
	}
	o.conversation.Append(botMsg)

	metrics.ChatTurnsTotal.WithLabelValues(response.Intent.String()).Inc()
	metrics.ChatTurnDuration.WithLabelValues(response.Intent.String()).Observe(time.Since(start).Seconds())

	return response
}

func (o *Orchestrator) handleLegalQuestion(ctx context.Context, query, conversationContext string) *model.ChatResponse {
	results, err := o.retriever.RetrieveForIntent(ctx, query, model.IntentLegal, conversationContext)
	if err != nil {
		o.logger.Error("retrieval failed", zap.Error(err))
		results = nil
	}

	if len(results) == 0 {
		return &model.ChatResponse{
			Message: noEvidenceMessage,
			Intent:  model.IntentLegal,
			Sources: []model.Source{},
		}
	}

	evidence, sources := packageEvidence(results)

	prompt := legalInstructions
	if conversationContext != "" {
		prompt += fmt.Sprintf("\n\nLịch sử hội thoại: %s", conversationContext)
	}
	prompt += fmt.Sprintf("\n\nCâu hỏi: %s", query)

	message := o.generate(ctx, prompt, evidence)

	return &model.ChatResponse{
		Message: message,
		Intent:  model.IntentLegal,
		Sources: sources,
	}
}

func (o *Orchestrator) handleBusinessRequest() *model.ChatResponse {
	step := o.collector.Start()
	return &model.ChatResponse{
		Message:       step.Message,
		Intent:        model.IntentBusiness,
		Sources:       []model.Source{},
		FormActive:    step.FormActive,
		CurrentField:  step.CurrentField,
		CollectedData: step.CollectedData,
	}
}

func (o *Orchestrator) handleGeneralQuestion(ctx context.Context, query, conversationContext string) *model.ChatResponse {
	prompt := generalInstructions
	if conversationContext != "" {
		prompt += fmt.Sprintf("\n\nLịch sử hội thoại: %s", conversationContext)
	}
	prompt += fmt.Sprintf("\n\nCâu hỏi: %s", query)

	return &model.ChatResponse{
		Message: o.generate(ctx, prompt, ""),
		Intent:  model.IntentGeneral,
		Sources: []model.Source{},
	}
}

func (o *Orchestrator) handleFormCollection(userInput string) *model.ChatResponse {
	step := o.collector.Submit(userInput)
	return &model.ChatResponse{
		Message:       step.Message,
		Intent:        model.IntentBusiness,
		Sources:       []model.Source{},
		FormActive:    step.FormActive,
		CurrentField:  step.CurrentField,
		CollectedData: step.CollectedData,
	}
}

// generate calls the generation backend and substitutes a fixed apology on
// failure; backend errors never propagate to the caller.
func (o *Orchestrator) generate(ctx context.Context, prompt, ragContext string) string {
	userContent := prompt
	if ragContext != "" {
		userContent = fmt.Sprintf("Thông tin tham khảo:\n%s\n\n%s", ragContext, prompt)
	}

	start := time.Now()
	resp, err := o.generator.Complete(ctx, &llm.CompletionRequest{
		Model: o.genModel,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: personaPrompt},
			{Role: "user", Content: userContent},
		},
	})
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.LLMRequestDuration.WithLabelValues(o.generator.Name(), status).Observe(time.Since(start).Seconds())

	if err != nil {
		o.logger.Error("generation failed", zap.Error(err))
		return generationFailureMessage
	}
	return resp.Content
}

// packageEvidence builds the newline-joined evidence block and the source
// citations from the top reranked results.
func packageEvidence(results []model.RetrievalResult) (string, []model.Source) {
	top := results
	if len(top) > 3 {
		top = top[:3]
	}

	var parts []string
	sources := make([]model.Source, 0, len(top))
	for i, res := range top {
		meta := res.Chunk.Metadata

		var cite []string
		if meta.DocumentType != "" {
			cite = append(cite, string(meta.DocumentType))
		}
		if meta.DocumentNumber != "" {
			cite = append(cite, meta.DocumentNumber)
		}
		if meta.ChunkTitle != "" {
			cite = append(cite, meta.ChunkTitle)
		}
		label := strings.Join(cite, " - ")
		if label == "" {
			label = fmt.Sprintf("Tài liệu %d", i+1)
		}

		parts = append(parts, fmt.Sprintf("**%s:**\n%s\n", label, res.Chunk.Content))
		sources = append(sources, model.Source{
			DocumentType:   string(meta.DocumentType),
			DocumentNumber: meta.DocumentNumber,
			ChunkTitle:     meta.ChunkTitle,
			Score:          res.Score,
		})
	}
	return strings.Join(parts, "\n"), sources
}

// ClearConversation wipes history and resets the form state machine.
func (o *Orchestrator) ClearConversation() {
	o.conversation.Clear()
	o.currentIntent = ""
	o.collector.Reset()
}

// History returns a copy of the conversation messages.
func (o *Orchestrator) History() []model.Message {
	out := make([]model.Message, len(o.conversation.Messages))
	copy(out, o.conversation.Messages)
	return out
}

// ConversationID returns the owning conversation's id.
func (o *Orchestrator) ConversationID() string {
	return o.conversation.ID
}

// FormActive reports whether form collection is in progress.
func (o *Orchestrator) FormActive() bool {
	return o.collector.Active()
}

// Stats reports a read-only diagnostics snapshot.
func (o *Orchestrator) Stats(ctx context.Context) model.SystemStats {
	return model.SystemStats{
		ConversationLength: len(o.conversation.Messages),
		CurrentIntent:      o.currentIntent,
		FormActive:         o.collector.Active(),
		AvailableTemplates: len(o.catalog.Templates()),
		RetrieverStats:     o.retriever.Stats(ctx),
	}
}
