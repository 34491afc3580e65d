package main

import (
	"fmt"
	"os"

	"github.com/aretw0/switchboard/internal/cli"
	"github.com/aretw0/switchboard/pkg/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "switchboard",
	Short: "Switchboard routes conversational turns by classified intent",
	Long: `Switchboard classifies each user message into an intent (support, sales
or triage), checks the confidence, and routes the turn to respond, retrieve,
tool_call or fail. Sessions are persisted between turns.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default ./"+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("store", "", "Override store.backend (memory, file, redis)")
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if store, _ := cmd.Flags().GetString("store"); store != "" {
		cfg.Store.Backend = store
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// loadStack builds the engine for a command. Callers must Close the stack.
func loadStack(cmd *cobra.Command) (*cli.Stack, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, err
	}
	logger, err := cli.NewLogger(cfg.Log)
	if err != nil {
		return nil, config.Config{}, err
	}
	stack, err := cli.Build(cfg, logger)
	if err != nil {
		return nil, config.Config{}, err
	}
	return stack, cfg, nil
}
