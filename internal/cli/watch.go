package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll for due reminders until interrupted",
	Long: `Run the reminder poller in the foreground.

Every poll interval the checker looks for reminders whose fire time has
passed, marks them notified and delivers them through the configured
notifier (webhook or log). Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Checker == nil || Cfg == nil {
			return fmt.Errorf("reminder checker not initialized")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fmt.Printf("Watching for reminders every %s. Ctrl-C to stop.\n", Cfg.ReminderPollInterval)
		if n := Checker.ForceCheck(); n > 0 {
			fmt.Printf("%d reminder(s) fired.\n", n)
		}
		Checker.Run(ctx, Cfg.ReminderPollInterval)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
