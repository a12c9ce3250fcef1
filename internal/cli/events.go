package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/tasktalk/internal/observability"
)

var (
	eventsType  string
	eventsLimit int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent events from the activity log",
	Long: `List events recorded in the append-only activity log: tasks created,
completed and deleted, recurring instances scheduled, reminders fired,
and commands dispatched. Newest events print last.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized")
		}

		events, err := EventLog.Read(observability.EventFilter{Type: eventsType})
		if err != nil {
			return fmt.Errorf("reading event log: %w", err)
		}

		if eventsLimit > 0 && len(events) > eventsLimit {
			events = events[len(events)-eventsLimit:]
		}

		if len(events) == 0 {
			fmt.Println("No events recorded.")
			return nil
		}
		for _, event := range events {
			fmt.Println(renderEvent(event))
		}
		return nil
	},
}

// renderEvent formats one event as a single log-style line.
func renderEvent(event observability.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %-20s %s", event.Time.Format("2006-01-02 15:04:05"), event.Type, event.Message)
	for key, value := range event.Data {
		fmt.Fprintf(&b, " %s=%v", key, value)
	}
	return b.String()
}

func init() {
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "Filter by event type (e.g. reminder.fired)")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 20, "Show at most the newest N events (0 = all)")
	rootCmd.AddCommand(eventsCmd)
}
