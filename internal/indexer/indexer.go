package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mvp-joe/codemunch/internal/config"
	"github.com/mvp-joe/codemunch/internal/parser"
	"github.com/mvp-joe/codemunch/internal/storage"
)

// Result is the outcome of one indexing run.
type Result struct {
	Index    *storage.RepoIndex
	RawFiles map[string][]byte // file path -> content, for the snapshot
	Warnings []string          // non-fatal skips and parse failures
}

// ProgressFunc is called after each file finishes, successfully or not.
type ProgressFunc func(done, total int)

// Indexer extracts symbols from a folder of source files.
type Indexer struct {
	cfg      config.IndexingConfig
	progress ProgressFunc
}

// New creates an Indexer with the given limits.
func New(cfg config.IndexingConfig) *Indexer {
	return &Indexer{cfg: cfg}
}

// OnProgress registers a progress callback. The callback may be invoked
// from multiple goroutines.
func (ix *Indexer) OnProgress(fn ProgressFunc) {
	ix.progress = fn
}

type fileResult struct {
	file     DiscoveredFile
	content  []byte
	symbols  []parser.Symbol
	warnings []string
}

// IndexFolder discovers, reads, and extracts symbols from every
// supported source file under dir. Files are parsed in parallel;
// results keep discovery order.
func (ix *Indexer) IndexFolder(ctx context.Context, dir, owner, name string) (*Result, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	files, warnings, err := Discover(root, ix.cfg)
	if err != nil {
		return nil, err
	}

	workers := ix.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	results := make([]fileResult, len(files))
	var done int
	var doneMu sync.Mutex

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = ix.processFile(files[i])
				if ix.progress != nil {
					doneMu.Lock()
					done++
					ix.progress(done, len(files))
					doneMu.Unlock()
				}
			}
		}()
	}

	for i := range files {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(jobs)
	wg.Wait()

	idx := &storage.RepoIndex{
		Owner:     owner,
		Name:      name,
		IndexedAt: time.Now().UTC(),
		Languages: map[string]int{},
	}
	rawFiles := make(map[string][]byte, len(files))

	for _, res := range results {
		warnings = append(warnings, res.warnings...)
		if res.content == nil {
			continue
		}
		idx.Files = append(idx.Files, storage.FileRecord{Path: res.file.Path, Language: res.file.Language})
		idx.Languages[res.file.Language]++
		idx.Symbols = append(idx.Symbols, res.symbols...)
		rawFiles[res.file.Path] = res.content
	}

	return &Result{Index: idx, RawFiles: rawFiles, Warnings: warnings}, nil
}

func (ix *Indexer) processFile(file DiscoveredFile) fileResult {
	res := fileResult{file: file}

	content, err := os.ReadFile(file.AbsPath)
	if err != nil {
		res.warnings = append(res.warnings, fmt.Sprintf("failed to read %s: %v", file.Path, err))
		return res
	}

	symbols, err := parser.Extract(content, file.Path, file.Language)
	if err != nil {
		res.warnings = append(res.warnings, fmt.Sprintf("failed to parse %s: %v", file.Path, err))
		return res
	}

	for i := range symbols {
		symbols[i].Summary = Summarize(symbols[i])
	}

	res.content = content
	res.symbols = symbols
	return res
}

// Summarize produces a one-line summary for a symbol: the first line of
// its docstring when present, its signature otherwise.
func Summarize(sym parser.Symbol) string {
	if sym.Docstring != "" {
		line, _, _ := strings.Cut(sym.Docstring, "\n")
		return strings.TrimSpace(line)
	}
	return sym.Signature
}
