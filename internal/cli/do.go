package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var doCmd = &cobra.Command{
	Use:   "do <input>...",
	Short: "Run one command or plain-language request",
	Long: `Run a single line of input through the command handler.

Structured commands ("tick milk", "due tomorrow dentist") are applied
directly; anything else is interpreted as plain language and recorded
as a task or answered with guidance. Quoting the whole line is optional:
all arguments are joined with spaces.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Dispatcher == nil {
			return fmt.Errorf("dispatcher not initialized")
		}

		input := strings.Join(args, " ")
		msg, err := Dispatcher.Handle(cmd.Context(), input)
		if err != nil {
			return fmt.Errorf("handling input: %w", err)
		}

		fmt.Println(msg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doCmd)
}
