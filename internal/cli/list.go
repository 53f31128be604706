package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"studyrag/internal/adapter/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available courses",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	reg := registry.New(cfg.Courses.NotesDir, cfg.Courses.IndexDir, logger)

	courses := reg.Available()
	fmt.Printf("Available courses (%d):\n", len(courses))
	if len(courses) == 0 {
		fmt.Printf("  (no courses found in %s)\n", cfg.Courses.NotesDir)
		return nil
	}

	defaultCourse := strings.ToUpper(cfg.Courses.DefaultCourse)
	for _, course := range courses {
		indexed := " "
		if reg.IsIndexed(course) {
			indexed = "x"
		}
		suffix := ""
		if course == defaultCourse {
			suffix = " (default)"
		}
		fmt.Printf("  [%s] %s%s\n", indexed, course, suffix)
	}
	return nil
}
