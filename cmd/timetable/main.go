package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/noah-isme/timetable-organizer/api/swagger"
	"github.com/noah-isme/timetable-organizer/pkg/config"
)

// @title Timetable Organizer API
// @version 1.0.0
// @description Local API for the class timetable, homework, import/export and the home-screen widget
// @BasePath /
// @schemes http

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "timetable",
	Short: "Personal class timetable organizer",
	Long: `Keep a weekly class timetable with homework, search, statistics,
import/export and a home-screen widget mirror.

Run "timetable serve" for the local HTTP API used by the UI shell, or use the
other commands directly against the same data file.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
