package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/timetable-organizer/internal/models"
	"github.com/noah-isme/timetable-organizer/internal/service"
)

var (
	searchDay   int
	searchTags  []string
	searchExtra bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Find subjects by name, teacher, room, notes or tag",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var filters models.SearchFilters
		if cmd.Flags().Changed("day") {
			if searchDay < 0 || searchDay >= models.DaysPerWeek {
				return fmt.Errorf("--day must be between 0 and %d", models.DaysPerWeek-1)
			}
			day := searchDay
			filters.Day = &day
		}
		if cmd.Flags().Changed("tag") {
			filters.Tags = append([]string{}, searchTags...)
		}
		if cmd.Flags().Changed("extra") {
			extra := searchExtra
			filters.IsExtraClass = &extra
		}
		query := ""
		if len(args) == 1 {
			query = args[0]
		}

		app, err := newApplication(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer app.Close()

		result := service.Search(app.timetable.Subjects(), query, filters)
		if result.IsEmpty {
			fmt.Fprintln(cmd.OutOrStdout(), "No subjects found.")
			return nil
		}
		return printSubjects(cmd.OutOrStdout(), result.Results, app.timetable.Settings().Language)
	},
}

func printSubjects(out io.Writer, subjects []models.Subject, language string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDAY\tTIME\tNAME\tTEACHER\tROOM\tTAGS")
	for _, s := range subjects {
		name := s.Name
		if s.IsExtraClass {
			name += " *"
		}
		day := models.DayName(s.Day, language)
		fmt.Fprintf(w, "%s\t%s\t%s-%s\t%s\t%s\t%s\t%s\n",
			s.ID, day, s.StartTime, s.EndTime, name, s.Teacher, s.Room, strings.Join(s.Tags, ","))
	}
	return w.Flush()
}

func init() {
	searchCmd.Flags().IntVar(&searchDay, "day", 0, "day index, 0 = Monday")
	searchCmd.Flags().StringSliceVar(&searchTags, "tag", nil, "match any of these tags")
	searchCmd.Flags().BoolVar(&searchExtra, "extra", false, "only extra classes (or --extra=false for official ones)")
	rootCmd.AddCommand(searchCmd)
}
