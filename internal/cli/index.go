package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	quietFlag bool
	watchFlag bool
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index [folder]",
	Short: "Index a folder of source code",
	Long: `Index walks a folder, parses every supported source file with
tree-sitter, extracts symbols, and saves them to local storage.

The folder's base name becomes the repo name under the "local" owner.

Examples:
  # Index the current directory
  codemunch index

  # Index a specific folder
  codemunch index ~/src/myproject

  # Keep watching for changes and reindex automatically
  codemunch index --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	indexCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and reindex")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling indexing...")
		cancel()
	}()

	folder := "."
	if len(args) == 1 {
		folder = args[0]
	}

	service, _, err := newService()
	if err != nil {
		return err
	}
	defer service.Close()

	if !quietFlag {
		var bar *progressbar.ProgressBar
		service.Indexer().OnProgress(func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("Indexing files"),
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowCount(),
					progressbar.OptionShowIts(),
					progressbar.OptionSetItsString("files/s"),
					progressbar.OptionThrottle(65*time.Millisecond),
					progressbar.OptionShowElapsedTimeOnFinish(),
					progressbar.OptionOnCompletion(func() {
						fmt.Println()
					}),
				)
			}
			bar.Add(1)
			if done == total {
				bar = nil
			}
		})
	}

	if err := indexOnce(ctx, service, folder); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("indexing cancelled")
		}
		return err
	}

	if watchFlag {
		if !quietFlag {
			log.Println("Starting watch mode...")
		}
		return watchFolder(ctx, service, folder)
	}
	return nil
}

func indexOnce(ctx context.Context, service indexService, folder string) error {
	result, err := service.IndexFolder(ctx, folder)
	if err != nil {
		return err
	}

	if quietFlag {
		return nil
	}

	fmt.Printf("✓ Indexed %s: %d files, %d symbols\n", result.Repo, result.FileCount, result.SymbolCount)

	languages := make([]string, 0, len(result.Languages))
	for lang := range result.Languages {
		languages = append(languages, lang)
	}
	sort.Strings(languages)
	for _, lang := range languages {
		fmt.Printf("  %-12s %d files\n", lang, result.Languages[lang])
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", warning)
	}
	return nil
}
