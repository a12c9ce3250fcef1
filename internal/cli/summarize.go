package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [today|tomorrow|week]",
	Short: "Summarize open, done and overdue tasks for a period",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Dispatcher == nil {
			return fmt.Errorf("dispatcher not initialized")
		}

		period := "today"
		if len(args) == 1 {
			period = args[0]
		}
		switch period {
		case "today", "tomorrow", "week":
		default:
			return fmt.Errorf("invalid period %q: must be today, tomorrow or week", period)
		}

		msg, err := Dispatcher.Summarize(period)
		if err != nil {
			return fmt.Errorf("summarizing: %w", err)
		}
		fmt.Println(msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}
