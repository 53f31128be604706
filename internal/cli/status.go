package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"studyrag/internal/adapter/registry"
)

var statusCourse string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether a course's index artifacts exist",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusCourse, "course", "", "course code (default from config)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	course := strings.ToUpper(statusCourse)
	if course == "" {
		course = strings.ToUpper(cfg.Courses.DefaultCourse)
	}

	reg := registry.New(cfg.Courses.NotesDir, cfg.Courses.IndexDir, logger)
	info := reg.Info(course)

	fmt.Printf("Course: %s\n", info.CourseCode)
	fmt.Printf("  Indexed: %s\n", yesNo(info.Indexed))
	fmt.Printf("  Notes exist: %s\n", yesNo(info.NotesExist))
	if info.NotesExist {
		fmt.Printf("  Notes path: %s\n", info.NotesPath)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
