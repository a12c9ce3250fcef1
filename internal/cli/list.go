package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/tasktalk/pkg/models"
)

var (
	listStatus string
	listTag    string
	listAll    bool
)

// Style definitions.
var (
	listTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dueStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	tagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	subtaskStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	prioHighStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	prioMediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	prioLowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Display tasks in sorted order",
	Long: `Display tasks in the order selected by the sort preference.

Archived tasks are hidden unless --all is given. Use --status and --tag
to narrow the listing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil {
			return fmt.Errorf("task store not initialized")
		}

		if listStatus != "" {
			switch models.TaskStatus(listStatus) {
			case models.StatusPending, models.StatusCompleted, models.StatusArchived:
			default:
				return fmt.Errorf("invalid status %q: must be pending, completed or archived", listStatus)
			}
		}

		var shown int
		fmt.Println(listTitleStyle.Render("Tasks"))
		for _, t := range Store.Sorted() {
			if t.Status == models.StatusArchived && !listAll && listStatus == "" {
				continue
			}
			if listStatus != "" && t.Status != models.TaskStatus(listStatus) {
				continue
			}
			if listTag != "" && !t.HasTag(listTag) {
				continue
			}
			fmt.Println(renderTask(t, time.Now()))
			shown++
		}

		if shown == 0 {
			fmt.Println("No tasks to show.")
		}
		return nil
	},
}

// renderTask formats one task as a single styled line plus its subtasks.
func renderTask(t models.Task, now time.Time) string {
	var b strings.Builder

	mark := "[ ]"
	if t.Done {
		mark = "[x]"
	}
	title := t.Title
	if t.Done {
		title = doneStyle.Render(title)
	}
	fmt.Fprintf(&b, "  %s %s", mark, title)

	switch t.Priority {
	case models.PriorityHigh:
		fmt.Fprintf(&b, " %s", prioHighStyle.Render("!high"))
	case models.PriorityMedium:
		fmt.Fprintf(&b, " %s", prioMediumStyle.Render("!medium"))
	case models.PriorityLow:
		fmt.Fprintf(&b, " %s", prioLowStyle.Render("!low"))
	}

	for _, tag := range t.AllTags() {
		fmt.Fprintf(&b, " %s", tagStyle.Render("#"+tag))
	}

	if t.DueDate != nil {
		stamp := t.DueDate.Format("Mon Jan 2 15:04")
		if !t.Done && t.DueDate.Before(now) {
			fmt.Fprintf(&b, " %s", overdueStyle.Render("overdue "+stamp))
		} else {
			fmt.Fprintf(&b, " %s", dueStyle.Render("due "+stamp))
		}
	}
	if t.Recurring != nil {
		fmt.Fprintf(&b, " %s", subtaskStyle.Render("(repeats "+string(t.Recurring.Type)+")"))
	}

	for _, sub := range t.Subtasks {
		subMark := "[ ]"
		if sub.Done {
			subMark = "[x]"
		}
		fmt.Fprintf(&b, "\n      %s", subtaskStyle.Render(subMark+" "+sub.Text))
	}

	return b.String()
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by status (pending, completed, archived)")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter by tag")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Include archived tasks")
	rootCmd.AddCommand(listCmd)
}
