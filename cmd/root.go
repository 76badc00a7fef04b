package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "flinsight",
	Short: "Flight compliance assistant for FAA Part 135 operations",
	Long: `Flinsight indexes FAA Part 135 regulations for semantic search and uses
an LLM to analyze planned flights, draft pre-flight action items, review
recent regulatory updates and answer compliance questions. It serves an
HTTP API for the web client and MCP tools for AI agents.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "flinsight.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
