package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/aretw0/switchboard/pkg/runner"
	"github.com/spf13/cobra"
)

var turnCmd = &cobra.Command{
	Use:   "turn <session-id> <message...>",
	Short: "Run a single turn and print the resulting state as JSON",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := runner.SanitizeInput(strings.Join(args[1:], " "))
		if err != nil {
			return err
		}

		stack, _, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		state, err := stack.Engine.Turn(cmd.Context(), args[0], input)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	},
}

func init() {
	rootCmd.AddCommand(turnCmd)
}
