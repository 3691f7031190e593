package model

// Source is a citation exposed alongside a legal answer.
type Source struct {
	DocumentType   string  `json:"document_type,omitempty"`
	DocumentNumber string  `json:"document_number,omitempty"`
	ChunkTitle     string  `json:"chunk_title,omitempty"`
	Score          float64 `json:"score"`
}

// ChatResponse is the orchestrator's output contract for one turn.
// CollectedData is populated only on the turn that completes a form.
type ChatResponse struct {
	Message       string            `json:"message"`
	Intent        Intent            `json:"intent,omitempty"`
	Sources       []Source          `json:"sources"`
	FormActive    bool              `json:"form_active"`
	CurrentField  string            `json:"current_field,omitempty"`
	CollectedData map[string]string `json:"collected_data,omitempty"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
}

// SystemStats is the read-only diagnostics snapshot of one session.
type SystemStats struct {
	ConversationLength int            `json:"conversation_length"`
	CurrentIntent      Intent         `json:"current_intent,omitempty"`
	FormActive         bool           `json:"form_active"`
	AvailableTemplates int            `json:"available_templates"`
	RetrieverStats     map[string]any `json:"retriever_stats,omitempty"`
}
