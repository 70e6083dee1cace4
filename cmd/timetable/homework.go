package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/noah-isme/timetable-organizer/internal/models"
)

var (
	homeworkSubject     string
	homeworkTitle       string
	homeworkDue         string
	homeworkPriority    string
	homeworkDescription string
	homeworkFrom        string
	homeworkTo          string
)

var homeworkCmd = &cobra.Command{
	Use:     "homework",
	Aliases: []string{"hw"},
	Short:   "Manage homework tied to subjects",
}

var homeworkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List homework, open items first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer app.Close()

		var items []models.Homework
		switch {
		case homeworkSubject != "":
			items, err = app.homework.BySubject(cmd.Context(), homeworkSubject)
		case homeworkFrom != "" || homeworkTo != "":
			items, err = app.homework.DueBetween(cmd.Context(), homeworkFrom, homeworkTo)
		default:
			items, err = app.homework.List(cmd.Context())
		}
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No homework.")
			return nil
		}
		return printHomework(cmd.OutOrStdout(), items)
	},
}

var homeworkAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a homework item",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer app.Close()

		req := models.CreateHomeworkRequest{
			SubjectID: homeworkSubject,
			Title:     homeworkTitle,
			DueDate:   homeworkDue,
			Priority:  models.HomeworkPriority(homeworkPriority),
		}
		if homeworkDescription != "" {
			desc := homeworkDescription
			req.Description = &desc
		}
		item, err := app.homework.Add(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s, due %s)\n", item.ID, item.SubjectName, item.DueDate)
		return nil
	},
}

var homeworkDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Toggle the completed flag of a homework item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer app.Close()

		item, err := app.homework.ToggleComplete(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if item == nil {
			return fmt.Errorf("homework %s not found", args[0])
		}
		state := "open"
		if item.Completed {
			state = "done"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", item.ID, state)
		return nil
	},
}

var homeworkRemoveCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Delete a homework item",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApplication(cmd.Context(), cfg, false)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.homework.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func printHomework(out io.Writer, items []models.Homework) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDUE\tPRIORITY\tSUBJECT\tTITLE\tDONE")
	for _, h := range items {
		done := ""
		if h.Completed {
			done = "x"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", h.ID, h.DueDate, h.Priority, h.SubjectName, h.Title, done)
	}
	return w.Flush()
}

func init() {
	homeworkListCmd.Flags().StringVar(&homeworkSubject, "subject", "", "only homework for this subject id")
	homeworkListCmd.Flags().StringVar(&homeworkFrom, "from", "", "due on or after YYYY-MM-DD")
	homeworkListCmd.Flags().StringVar(&homeworkTo, "to", "", "due on or before YYYY-MM-DD")

	homeworkAddCmd.Flags().StringVarP(&homeworkSubject, "subject", "s", "", "subject id")
	homeworkAddCmd.Flags().StringVarP(&homeworkTitle, "title", "t", "", "title")
	homeworkAddCmd.Flags().StringVarP(&homeworkDue, "due", "d", "", "due date YYYY-MM-DD")
	homeworkAddCmd.Flags().StringVarP(&homeworkPriority, "priority", "p", "", "high, medium or low (default medium)")
	homeworkAddCmd.Flags().StringVar(&homeworkDescription, "description", "", "optional description")
	_ = homeworkAddCmd.MarkFlagRequired("subject")
	_ = homeworkAddCmd.MarkFlagRequired("title")
	_ = homeworkAddCmd.MarkFlagRequired("due")

	homeworkCmd.AddCommand(homeworkListCmd, homeworkAddCmd, homeworkDoneCmd, homeworkRemoveCmd)
	rootCmd.AddCommand(homeworkCmd)
}
