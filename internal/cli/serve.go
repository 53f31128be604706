package cli

import (
	"github.com/spf13/cobra"
	"studyrag/internal/adapter/embedding"
	"studyrag/internal/adapter/llm"
	"studyrag/internal/adapter/registry"
	"studyrag/internal/server"
	"studyrag/internal/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question-answering HTTP API",
	Long: `Serve starts the HTTP API. Course indexes load lazily from disk on the
first question for each course and stay cached for the process lifetime.

Endpoints:
  GET/POST /ask?q=...&course=...
  GET  /courses
  GET  /courses/{code}
  POST /courses/{code}/reload
  GET  /health`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	embedder, err := embedding.NewOpenAIEmbedder(
		cfg.Embedding.APIKeyEnv,
		cfg.Embedding.Model,
		cfg.Embedding.Dimension,
		cfg.Embedding.BatchSize,
	)
	if err != nil {
		return err
	}

	model, err := llm.NewOpenAIClient(cfg.LLM.APIKeyEnv, cfg.LLM.Model)
	if err != nil {
		return err
	}

	reg := registry.New(cfg.Courses.NotesDir, cfg.Courses.IndexDir, logger)

	answerUC := usecase.NewAnswerUseCase(
		embedder,
		model,
		reg,
		cfg.Retrieve.TopK,
		cfg.LLM.TokenLimit,
		cfg.LLM.ReservedTokens,
		logger,
	)

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv := server.New(answerUC, reg, cfg.Courses.DefaultCourse, logger)
	return srv.ListenAndServe(addr)
}
