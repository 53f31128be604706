package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"studyrag/internal/adapter/store"
	"studyrag/internal/domain"
)

var (
	loadCourse    string
	loadIndexPath string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load an existing course index and print stats",
	RunE:  runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().StringVar(&loadCourse, "course", "", "course code (default from config)")
	loadCmd.Flags().StringVar(&loadIndexPath, "index-path", "", "path prefix for index files")
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	course := strings.ToUpper(loadCourse)
	if course == "" {
		course = strings.ToUpper(cfg.Courses.DefaultCourse)
	}
	indexPath := loadIndexPath
	if indexPath == "" {
		indexPath = cfg.IndexPrefix(course)
	}

	vs, err := store.Load(indexPath)
	if err != nil {
		if errors.Is(err, domain.ErrNotInitialized) {
			fmt.Printf("No index found for course %s\n", course)
			fmt.Printf("  Expected path: %s\n", indexPath)
			fmt.Printf("  Run: studyrag build --course %s\n", course)
			return err
		}
		return fmt.Errorf("failed to load index: %w", err)
	}

	fmt.Printf("Loaded index for course: %s\n", course)
	fmt.Printf("  Path: %s\n", indexPath)
	fmt.Printf("  Chunks: %d\n", vs.Count())
	fmt.Printf("  Dimension: %d\n", vs.Dimension())
	return nil
}
