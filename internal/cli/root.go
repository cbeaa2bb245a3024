package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codemunch/internal/config"
	"github.com/mvp-joe/codemunch/internal/mcp"
)

var (
	storageDir string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "codemunch",
	Short: "Codemunch - index and explore code symbols",
	Long: `Codemunch parses source trees with tree-sitter, extracts functions,
classes, methods, types, and constants, and stores them in a local index
that can be explored from the command line or served to LLM coding
assistants over MCP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storageDir, "storage", "", "storage directory (default is $HOME/.codemunch)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads configuration, honoring the --storage flag.
func loadConfig() (*config.Config, error) {
	dir := storageDir
	if dir == "" {
		dir = config.Default().Storage.Path
	}

	cfg, err := config.NewLoader(dir).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if storageDir != "" {
		cfg.Storage.Path = storageDir
	}
	return cfg, nil
}

// newService builds the shared service layer for a command invocation.
func newService() (*mcp.Service, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	service, err := mcp.NewService(cfg)
	if err != nil {
		return nil, nil, err
	}
	return service, cfg, nil
}
