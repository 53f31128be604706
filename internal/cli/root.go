package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"studyrag/config"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "studyrag",
	Short: "Study assistant - index course notes and answer questions over them",
	Long: `studyrag indexes a course's lecture notes for similarity search and
answers questions by combining retrieved passages with a hosted language model.

Example usage:
  studyrag build --course COMP2123   # Build the index from course notes
  studyrag list                      # List courses and their index status
  studyrag serve                     # Serve the HTTP API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real env vars win.
		_ = godotenv.Load()

		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			wd, werr := os.Getwd()
			if werr != nil {
				return fmt.Errorf("failed to get working directory: %w", werr)
			}
			cfg, err = config.LoadFromDir(wd)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger = newLogger(cfg.Logging.Level)
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./studyrag.yaml)")
}

func GetConfig() *config.Config {
	return cfg
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
