package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/adriangreen/tm-dash/internal/tasks"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the tasks of a view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			viewName, _ := cmd.Flags().GetString("view")
			if viewName == "" {
				viewName = a.cfg.UI.DefaultView
			}
			search, _ := cmd.Flags().GetString("search")

			if err := a.service.Refresh(cmd.Context()); err != nil {
				return err
			}
			view := tasks.ParseView(viewName)
			a.service.Selector().SetView(view)
			a.service.Selector().SetSearch(search)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, view.Title(a.service.Registry()))
			visible := a.service.Visible()
			if len(visible) == 0 {
				if search != "" {
					fmt.Fprintf(out, "No tasks found matching %q.\n", search)
				} else {
					fmt.Fprintln(out, "No tasks found.")
				}
			} else {
				fmt.Fprintln(out, renderTable(visible, a.service.Now()))
			}

			c := a.service.Counters()
			fmt.Fprintf(out, "%d open / %d done / %d upcoming\n", c.Uncompleted, c.Completed, c.Upcoming)
			return nil
		},
	}
	cmd.Flags().String("view", "", "View to list (inbox, today, upcoming, important, completed, project-<id>)")
	cmd.Flags().String("search", "", "Only show tasks whose title, location, category or tag contain this text")
	return cmd
}

// renderTable lays the tasks out as a bordered table
func renderTable(list []tasks.Task, now time.Time) string {
	rows := make([][]string, 0, len(list))
	for _, t := range list {
		status := " "
		if t.Completed {
			status = "✓"
		}
		flag := ""
		if t.Important {
			flag = "★"
		}
		rows = append(rows, []string{t.ID, status, flag, t.Title, dueLabel(t, now), t.Project})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "DONE", "!", "TITLE", "DUE", "PROJECT").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return tbl.String()
}

// dueLabel prints the due date, with the time only when one was set
func dueLabel(t tasks.Task, now time.Time) string {
	if !t.HasDueDate() {
		return ""
	}
	due := t.DueDate.In(now.Location())
	layout := "2006-01-02"
	if due.Hour() != 0 || due.Minute() != 0 {
		layout += " 15:04"
	}
	label := due.Format(layout)
	if !t.Completed && due.Before(now) {
		label += " (overdue)"
	}
	return label
}

func newAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			draft, err := draftFromFlags(cmd, strings.Join(args, " "), a.service.Registry())
			if err != nil {
				return err
			}

			created, err := a.service.Create(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %s: %s\n", created.ID, created.Title)
			return nil
		},
	}
	cmd.Flags().String("project", "", "Project ID")
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().String("time", "", "Due time (HH:MM), requires --due")
	cmd.Flags().String("location", "", "Location")
	cmd.Flags().String("category", "", "Category")
	cmd.Flags().String("tag", "", "Tag")
	cmd.Flags().Bool("important", false, "Mark the task as important")
	return cmd
}

// draftFromFlags builds a draft from the add flags
func draftFromFlags(cmd *cobra.Command, title string, reg *tasks.Registry) (tasks.Draft, error) {
	project, _ := cmd.Flags().GetString("project")
	due, _ := cmd.Flags().GetString("due")
	dueTime, _ := cmd.Flags().GetString("time")
	location, _ := cmd.Flags().GetString("location")
	category, _ := cmd.Flags().GetString("category")
	tag, _ := cmd.Flags().GetString("tag")
	important, _ := cmd.Flags().GetBool("important")

	draft := tasks.Draft{
		Title:     title,
		Project:   strings.TrimSpace(project),
		DueTime:   strings.TrimSpace(dueTime),
		Location:  location,
		Category:  category,
		Tag:       tag,
		Important: important,
	}
	if draft.Project != "" {
		if _, ok := reg.Get(draft.Project); !ok {
			return tasks.Draft{}, fmt.Errorf("unknown project %q", draft.Project)
		}
	}
	if strings.TrimSpace(due) != "" {
		parsed, err := tasks.ParseDueDate(due)
		if err != nil {
			return tasks.Draft{}, err
		}
		draft.DueDate = &parsed
	}
	return draft, nil
}

func newDoneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between done and not done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := requireArg(args, "task id")
			if err != nil {
				return err
			}
			a, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.service.Refresh(cmd.Context()); err != nil {
				return err
			}
			updated, err := a.service.ToggleCompletion(cmd.Context(), id)
			if err != nil {
				return err
			}

			state := "reopened"
			if updated.Completed {
				state = "marked as done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %s %s: %s\n", updated.ID, state, updated.Title)
			return nil
		},
	}
}

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := requireArg(args, "task id")
			if err != nil {
				return err
			}
			a, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.service.Refresh(cmd.Context()); err != nil {
				return err
			}
			task, _ := a.service.Store().Get(id)
			if err := a.service.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s: %s\n", id, task.Title)
			return nil
		},
	}
}

func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			profile, err := a.service.Profile(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, profile.DisplayName())
			if profile.Email != "" {
				fmt.Fprintln(out, profile.Email)
			}
			return nil
		},
	}
}

func newJournalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal [id]",
		Short: "Show the recorded activity of one task, or of every task",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			forget, _ := cmd.Flags().GetBool("forget")
			if forget && len(args) == 0 {
				return fmt.Errorf("--forget needs a task id")
			}

			a, err := setup(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.journal == nil {
				return fmt.Errorf("journal %q at %s could not be opened, see the log for details", a.cfg.JournalBackend, a.cfg.JournalPath)
			}

			if forget {
				id := strings.TrimSpace(args[0])
				if err := a.journal.Forget(cmd.Context(), id); err != nil {
					return fmt.Errorf("failed to forget task %s: %w", id, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Forgot the activity of task %s\n", id)
				return nil
			}

			ids := args
			if len(ids) == 0 {
				if ids, err = a.journal.TaskIDs(cmd.Context()); err != nil {
					return err
				}
				sort.Strings(ids)
			}
			return printJournal(cmd.Context(), cmd.OutOrStdout(), a, ids)
		},
	}
	cmd.Flags().Bool("forget", false, "Drop the recorded activity of the given task")
	return cmd
}

func printJournal(ctx context.Context, out io.Writer, a *app, ids []string) error {
	if len(ids) == 0 {
		fmt.Fprintln(out, "No activity recorded.")
		return nil
	}
	for _, id := range ids {
		entries, err := a.journal.Entries(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Task %s\n", id)
		if len(entries) == 0 {
			fmt.Fprintln(out, "  (no activity)")
		}
		for _, entry := range entries {
			fmt.Fprintf(out, "  - %s\n", entry)
		}
	}
	return nil
}
