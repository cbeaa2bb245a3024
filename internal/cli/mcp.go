package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codemunch/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for code exploration",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM-powered
coding assistants index and explore codebases.

The MCP server:
- Serves the index_folder, list_repos, get_file_tree, get_file_outline,
  get_symbol, get_symbols, and search_symbols tools
- Communicates via stdio (standard MCP transport)

Example:
  codemunch mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Codemunch MCP Server\n")
	fmt.Fprintf(os.Stderr, "Storage: %s\n\n", cfg.Storage.Path)

	server, err := mcp.NewServer(cfg, Version)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	if err := server.Serve(context.Background()); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
