package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "tt",
	Short: "TaskTalk - conversational task manager",
	Long: `TaskTalk (tt) is a task manager driven by plain language. Structured
commands like "add buy milk #groceries !high" are handled by a fixed
grammar; everything else goes through language interpretation, so any
input ends up as a task or an answer.

Tasks carry due dates, tags, priorities, subtasks, recurrence rules and
reminders, and persist as a JSON snapshot under the data directory.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tt %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
