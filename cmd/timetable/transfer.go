package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noah-isme/timetable-organizer/internal/models"
)

var (
	exportFormat string
	exportOut    string
	importFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the timetable as JSON, CSV or PDF",
	Long: `Render the timetable and write it to a file.

On web the file is written to --out (default: the generated name in the
current directory). On native platforms it is placed in the share cache and a
signed share link is printed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer app.Close()

		file, err := app.exports.Export(models.ExportFormat(strings.ToLower(exportFormat)))
		if err != nil {
			return err
		}
		delivery, err := app.exports.Deliver(cmd.Context(), file)
		if err != nil {
			return err
		}
		if delivery.Method == models.DeliveryShare {
			fmt.Fprintf(cmd.OutOrStdout(), "Shared %s\n  URL: %s\n  Expires: %s\n", delivery.Filename, delivery.URL, delivery.ExpiresAt)
			return nil
		}

		out := exportOut
		if out == "" {
			out = file.Filename
		}
		if info, err := os.Stat(out); err == nil && info.IsDir() {
			out = filepath.Join(out, file.Filename)
		}
		if err := os.WriteFile(out, file.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bytes to %s\n", len(file.Data), out)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the timetable with an exported JSON or CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contents, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		format := models.ExportFormat(strings.ToLower(importFormat))
		if format == "" {
			format = models.FormatJSON
			if strings.EqualFold(filepath.Ext(args[0]), ".csv") {
				format = models.FormatCSV
			}
		}

		app, err := newApplication(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer app.Close()

		summary, err := app.imports.Import(cmd.Context(), format, contents)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d subjects from %s", summary.Subjects, args[0])
		if summary.SettingsApplied {
			fmt.Fprint(cmd.OutOrStdout(), " (settings merged)")
		}
		fmt.Fprintln(cmd.OutOrStdout())
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "json, csv or pdf")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file or directory")
	importCmd.Flags().StringVarP(&importFormat, "format", "f", "", "json or csv (default: from file extension)")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
