package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"studyrag/internal/adapter/chunker"
	"studyrag/internal/adapter/embedding"
	"studyrag/internal/adapter/loader"
	"studyrag/internal/adapter/store"
	"studyrag/internal/usecase"
)

var (
	buildCourse    string
	buildNotes     string
	buildIndexPath string
	buildForce     bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build or rebuild a course index from its notes folder",
	Long: `Build loads every supported note file (.txt, .md, .pdf) for a course,
chunks and embeds the text, and persists the index.

Examples:
  studyrag build --course COMP2123
  studyrag build --course CS101 --notes data/notes/CS101 --force`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildCourse, "course", "", "course code (default from config)")
	buildCmd.Flags().StringVar(&buildNotes, "notes", "", "folder with notes (default: <notes_dir>/<course>)")
	buildCmd.Flags().StringVar(&buildIndexPath, "index-path", "", "path prefix for index files (default: <index_dir>/<course>)")
	buildCmd.Flags().BoolVar(&buildForce, "force", false, "remove existing index files before building")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	course := strings.ToUpper(buildCourse)
	if course == "" {
		course = strings.ToUpper(cfg.Courses.DefaultCourse)
	}

	notes := buildNotes
	if notes == "" {
		notes = cfg.NotesPath(course)
	}
	indexPath := buildIndexPath
	if indexPath == "" {
		indexPath = cfg.IndexPrefix(course)
	}

	if _, err := os.Stat(notes); err != nil {
		return fmt.Errorf("notes folder not found: %s", notes)
	}

	if buildForce {
		removed, err := store.Remove(indexPath)
		if err != nil {
			return fmt.Errorf("failed to remove existing index: %w", err)
		}
		if len(removed) > 0 {
			fmt.Println("Removed existing files:", strings.Join(removed, ", "))
		}
	}

	embedder, err := embedding.NewOpenAIEmbedder(
		cfg.Embedding.APIKeyEnv,
		cfg.Embedding.Model,
		cfg.Embedding.Dimension,
		cfg.Embedding.BatchSize,
	)
	if err != nil {
		return err
	}

	chk, err := chunker.NewWordChunker(cfg.Chunk.WindowWords, cfg.Chunk.OverlapWords)
	if err != nil {
		return err
	}

	buildUC := usecase.NewBuildUseCase(loader.NewDirLoader(), chk, embedder, logger)

	fmt.Printf("Building index for course: %s\n", course)
	fmt.Printf("  Notes folder: %s\n", notes)
	fmt.Printf("  Index path: %s\n", indexPath)

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Embedding"),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
	}

	vs, err := buildUC.Build(cmd.Context(), notes, indexPath, progress)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Printf("Build completed: %d chunks. Index saved at: %s\n", vs.Count(), indexPath)
	return nil
}
