package model

import (
	"time"

	"github.com/google/uuid"
)

// DocumentType is the kind of legal document a chunk belongs to.
// Values are the official Vietnamese names used in citations.
type DocumentType string

const (
	DocTypeLaw      DocumentType = "Luật"
	DocTypeDecree   DocumentType = "Nghị định"
	DocTypeCircular DocumentType = "Thông tư"
	DocTypeDecision DocumentType = "Quyết định"
)

// LegalDocumentTypes is the candidate filter for legal-intent retrieval.
var LegalDocumentTypes = []DocumentType{DocTypeLaw, DocTypeDecree, DocTypeCircular, DocTypeDecision}

// EntityType distinguishes whole-document chunks from article sections.
type EntityType string

const (
	EntityDocument       EntityType = "document"
	EntityArticleSection EntityType = "article_section"
)

// DocumentMetadata carries the citation metadata for a chunk.
type DocumentMetadata struct {
	Source         string       `json:"source,omitempty"`
	DocumentNumber string       `json:"document_number,omitempty"`
	DocumentType   DocumentType `json:"document_type,omitempty"`
	DocumentTitle  string       `json:"document_title,omitempty"`
	IssueDate      string       `json:"issue_date,omitempty"`
	IssuingAgency  string       `json:"issuing_agency,omitempty"`
	LawField       string       `json:"law_field,omitempty"`
	ArticleCode    string       `json:"article_code,omitempty"`
	ChunkTitle     string       `json:"chunk_title,omitempty"`
	EntityType     EntityType   `json:"entity_type,omitempty"`
}

// DocumentChunk is a retrievable unit of legal text. Chunks are produced by
// an external ingestion pipeline and are immutable once stored.
type DocumentChunk struct {
	ID        string           `json:"id"`
	Content   string           `json:"content"`
	Metadata  DocumentMetadata `json:"metadata"`
	Embedding []float32        `json:"embedding,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewDocumentChunk creates a chunk with a fresh id and timestamp.
func NewDocumentChunk(content string, meta DocumentMetadata) DocumentChunk {
	return DocumentChunk{
		ID:        uuid.New().String(),
		Content:   content,
		Metadata:  meta,
		CreatedAt: time.Now(),
	}
}

// RetrievalResult is a chunk plus relevance scores. Constructed per query,
// never persisted. After reranking, Score holds the rerank score and the
// vector similarity is preserved in OriginalScore.
type RetrievalResult struct {
	Chunk         DocumentChunk `json:"chunk"`
	Score         float64       `json:"score"`
	OriginalScore float64       `json:"original_score,omitempty"`
	RerankScore   *float64      `json:"rerank_score,omitempty"`
}

// RepresentativeText returns the text handed to the reranker: the chunk
// title prefixed to the content when a title exists.
func (r RetrievalResult) RepresentativeText() string {
	if title := r.Chunk.Metadata.ChunkTitle; title != "" {
		return title + ": " + r.Chunk.Content
	}
	return r.Chunk.Content
}
