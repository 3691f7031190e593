// Package main is a terminal chat harness driving the orchestrator
// directly, without the HTTP layer.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/chatbot"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/config"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/form"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/intent"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/llm"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/retrieval"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/logger"
)

var showSources bool

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat session with the business registration assistant",
	RunE:  runChat,
}

func init() {
	rootCmd.Flags().BoolVar(&showSources, "sources", false, "print retrieved legal sources after each answer")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runChat(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	bot, err := buildOrchestrator(cfg, log)
	if err != nil {
		return err
	}

	cmd.Println("Trợ lý đăng ký kinh doanh. Gõ /clear để xóa hội thoại, /exit để thoát.")

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		cmd.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/exit", "/quit":
			return nil
		case "/clear":
			bot.ClearConversation()
			cmd.Println("Đã xóa lịch sử hội thoại.")
			continue
		}

		resp := bot.ProcessMessage(ctx, line)
		cmd.Println(resp.Message)

		if showSources && len(resp.Sources) > 0 {
			cmd.Println("--- Nguồn tham khảo ---")
			for _, s := range resp.Sources {
				cmd.Printf("  %s %s %s (%.3f)\n", s.DocumentType, s.DocumentNumber, s.ChunkTitle, s.Score)
			}
		}
	}

	return scanner.Err()
}

func buildOrchestrator(cfg *config.Config, log *logger.Logger) (*chatbot.Orchestrator, error) {
	generator, err := llm.NewClient(llm.Provider(cfg.GenerationProvider), generationKey(cfg))
	if err != nil {
		return nil, fmt.Errorf("create generation client: %w", err)
	}

	intentClient := generator
	if cfg.GroqAPIKey != "" {
		groq, err := llm.NewGroqClient(cfg.GroqAPIKey)
		if err != nil {
			log.Warn("failed to create Groq client, classifying with generation client", zap.Error(err))
		} else {
			intentClient = groq
		}
	}

	embedder, err := llm.NewEmbeddingClient(cfg.OpenAIAPIKey, cfg.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}
	store := retrieval.NewMemoryStore(embedder)

	var scorer retrieval.Scorer
	if cfg.RerankerEndpoint != "" {
		scorer = retrieval.NewHTTPScorer(cfg.RerankerEndpoint, cfg.RerankerTimeout)
	}

	retriever := retrieval.NewRetriever(store, scorer, retrieval.Config{
		TopK:                cfg.RetrievalTopK,
		RerankTopK:          cfg.RerankTopK,
		SimilarityThreshold: cfg.SimilarityThreshold,
	}, log)

	return chatbot.New(chatbot.Config{
		Classifier:      intent.NewClassifier(intentClient, cfg.IntentModel, cfg.IntentTemperature, log),
		Retriever:       retriever,
		Generator:       generator,
		GenerationModel: cfg.GenerationModel,
		Catalog:         form.NewCatalog(),
		ContextWindow:   cfg.ContextWindow,
		Logger:          log,
	}), nil
}

func generationKey(cfg *config.Config) string {
	switch llm.Provider(cfg.GenerationProvider) {
	case llm.ProviderAnthropic:
		return cfg.AnthropicAPIKey
	case llm.ProviderGroq:
		return cfg.GroqAPIKey
	default:
		return cfg.OpenAIAPIKey
	}
}
