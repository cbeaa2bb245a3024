package cli

import (
	"context"
	"log"
	"path/filepath"

	"github.com/mvp-joe/codemunch/internal/indexer"
	"github.com/mvp-joe/codemunch/internal/mcp"
)

// indexService is the slice of mcp.Service the index command needs.
type indexService interface {
	IndexFolder(ctx context.Context, path string) (*mcp.IndexFolderResult, error)
}

// watchFolder blocks, reindexing the folder after each debounced batch
// of source changes, until the context is cancelled.
func watchFolder(ctx context.Context, service indexService, folder string) error {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return err
	}

	watcher, err := indexer.NewWatcher(abs)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	if err := watcher.Start(ctx, func(files []string) {
		if !quietFlag {
			log.Printf("%d files changed, reindexing...", len(files))
		}
		if _, err := service.IndexFolder(ctx, abs); err != nil {
			log.Printf("reindex failed: %v", err)
			return
		}
		if !quietFlag {
			log.Println("Reindex complete")
		}
	}); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}
