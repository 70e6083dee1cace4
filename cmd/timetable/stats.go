package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/timetable-organizer/internal/models"
	"github.com/noah-isme/timetable-organizer/internal/service"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show weekly hour totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer app.Close()

		stats := service.ComputeStats(app.timetable.Subjects())
		language := app.timetable.Settings().Language
		out := cmd.OutOrStdout()
		if statsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}

		fmt.Fprintf(out, "Total hours:     %.2f (%d subjects)\n", stats.TotalHours, stats.SubjectCount)
		fmt.Fprintf(out, "Official hours:  %.2f\n", stats.OfficialHours)
		fmt.Fprintf(out, "Extra classes:   %d (%.2f h)\n", stats.ExtraClassCount, stats.ExtraClassHours)
		fmt.Fprintf(out, "Days with class: %d\n\n", stats.DaysWithClasses)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DAY\tHOURS")
		for day, hours := range stats.WeeklyHours {
			fmt.Fprintf(w, "%s\t%.2f\n", models.DayName(day, language), hours)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if len(stats.SubjectDistribution) == 0 {
			return nil
		}
		names := make([]string, 0, len(stats.SubjectDistribution))
		for name := range stats.SubjectDistribution {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			hi, hj := stats.SubjectDistribution[names[i]], stats.SubjectDistribution[names[j]]
			if hi != hj {
				return hi > hj
			}
			return names[i] < names[j]
		})

		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SUBJECT\tHOURS")
		for _, name := range names {
			fmt.Fprintf(w, "%s\t%.2f\n", name, stats.SubjectDistribution[name])
		}
		return w.Flush()
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print stats as JSON")
	rootCmd.AddCommand(statsCmd)
}
