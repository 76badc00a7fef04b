package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/flinsight/internal/logger"
	mcpserver "github.com/ziadkadry99/flinsight/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing regulation search, listing and question answering tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		a, err := bootstrap(context.Background(), cfg, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		logger.Info().
			Int("documents", a.documents.Snapshot().Len()).
			Bool("index_ready", a.retriever.Ready()).
			Msg("flinsight MCP server started on stdio")

		return mcpserver.NewServer(a.svc).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
