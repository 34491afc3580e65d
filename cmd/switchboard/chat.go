package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/switchboard"
	"github.com/aretw0/switchboard/internal/presentation/tui"
	"github.com/aretw0/switchboard/pkg/runner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Reads one message per line and prints the routed response.
When stdin is not a terminal, or with --json, each line is a JSON message
({"user_input": "..."}) and each turn is written as one JSON object.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, _, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		jsonMode, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")
		sessionID, _ := cmd.Flags().GetString("session")
		interactive := !jsonMode && term.IsTerminal(int(os.Stdin.Fd()))

		var handler runner.IOHandler
		if interactive {
			tui.PrintBanner(os.Stdout, switchboard.Version)
			width := 0
			if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				width = w
			}
			handler = runner.NewTextHandler(os.Stdin, os.Stdout,
				runner.WithTextHandlerRenderer(tui.NewRenderer(width)),
				runner.WithVerbose(verbose),
			)
		} else {
			handler = runner.NewJSONHandler(os.Stdin, os.Stdout)
		}

		opts := []runner.Option{
			runner.WithHandler(handler),
			runner.WithLogger(stack.Logger),
		}
		if sessionID != "" {
			opts = append(opts, runner.WithSessionID(sessionID))
		}
		r := runner.New(stack.Engine, opts...)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if interactive {
			_ = handler.SystemOutput(ctx, "Session '"+r.SessionID()+"' active. Type /exit to quit.")
		}
		if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringP("session", "s", "", "Session ID to resume (default: a new random ID)")
	chatCmd.Flags().Bool("json", false, "Use NDJSON input/output even on a terminal")
	chatCmd.Flags().BoolP("verbose", "v", false, "Show intent, confidence and branch for each turn")

	rootCmd.RunE = chatCmd.RunE
	rootCmd.Flags().AddFlagSet(chatCmd.Flags())
}
