package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/switchboard/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the routing graph",
	Long:  `Prints the routing graph as a Mermaid diagram (graph TD) or as JSON.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, _, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		nodes := stack.Engine.Inspect()
		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "mermaid":
			fmt.Print(graph.GenerateMermaid(nodes, nil))
			return nil
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(nodes)
		default:
			return fmt.Errorf("unknown format %q (mermaid, json)", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid or json")
}
