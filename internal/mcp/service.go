package mcp

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mvp-joe/codemunch/internal/config"
	"github.com/mvp-joe/codemunch/internal/indexer"
	"github.com/mvp-joe/codemunch/internal/parser"
	"github.com/mvp-joe/codemunch/internal/search"
	"github.com/mvp-joe/codemunch/internal/storage"
)

// filePreviewLimit caps the file list echoed back by IndexFolder.
const filePreviewLimit = 20

// Service implements the tool operations on top of the store, indexer,
// and searcher. Both the MCP tools and the CLI commands call through it.
type Service struct {
	store    *storage.Store
	indexer  *indexer.Indexer
	searcher search.Searcher

	// Repos already fed to the in-memory search index this process.
	searchableMu sync.Mutex
	searchable   map[string]bool
}

// NewService wires a Service from configuration.
func NewService(cfg *config.Config) (*Service, error) {
	store, err := storage.NewStore(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	searcher, err := search.NewSearcher()
	if err != nil {
		store.Close()
		return nil, err
	}
	return &Service{
		store:      store,
		indexer:    indexer.New(cfg.Indexing),
		searcher:   searcher,
		searchable: map[string]bool{},
	}, nil
}

// Close releases the store and search index.
func (s *Service) Close() error {
	err := s.searcher.Close()
	if storeErr := s.store.Close(); storeErr != nil {
		err = storeErr
	}
	return err
}

// Indexer exposes the underlying indexer for progress reporting.
func (s *Service) Indexer() *indexer.Indexer {
	return s.indexer
}

// IndexFolder indexes a local folder. The folder's base name becomes the
// repo name under the "local" owner.
func (s *Service) IndexFolder(ctx context.Context, path string) (*IndexFolderResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	owner := "local"
	name := filepath.Base(abs)

	result, err := s.indexer.IndexFolder(ctx, abs, owner, name)
	if err != nil {
		return nil, err
	}
	if len(result.Index.Symbols) == 0 {
		return nil, fmt.Errorf("no symbols extracted from %s", path)
	}

	if err := s.store.SaveIndex(ctx, result.Index, result.RawFiles); err != nil {
		return nil, err
	}

	// Refresh the search index if this repo was already searchable.
	key := owner + "/" + name
	s.searchableMu.Lock()
	loaded := s.searchable[key]
	s.searchableMu.Unlock()
	if loaded {
		if err := s.searcher.Update(ctx, key, result.Index.Symbols); err != nil {
			return nil, err
		}
	}

	files := make([]string, 0, len(result.Index.Files))
	for _, f := range result.Index.Files {
		files = append(files, f.Path)
	}
	if len(files) > filePreviewLimit {
		files = files[:filePreviewLimit]
	}

	return &IndexFolderResult{
		Success:     true,
		Repo:        key,
		FolderPath:  abs,
		IndexedAt:   result.Index.IndexedAt,
		FileCount:   len(result.Index.Files),
		SymbolCount: len(result.Index.Symbols),
		Languages:   result.Index.Languages,
		Files:       files,
		Warnings:    result.Warnings,
	}, nil
}

// ListRepos lists all indexed repositories.
func (s *Service) ListRepos(ctx context.Context) (*ListReposResult, error) {
	summaries, err := s.store.ListRepos(ctx)
	if err != nil {
		return nil, err
	}

	out := &ListReposResult{Count: len(summaries), Repos: []RepoInfo{}}
	for _, summary := range summaries {
		out.Repos = append(out.Repos, RepoInfo{
			Repo:        summary.Repo(),
			IndexedAt:   summary.IndexedAt,
			FileCount:   summary.FileCount,
			SymbolCount: summary.SymbolCount,
			Languages:   summary.Languages,
		})
	}
	return out, nil
}

// FileTree returns a repo's stored files as a nested tree, optionally
// filtered by path prefix.
func (s *Service) FileTree(ctx context.Context, repo, pathPrefix string) (*FileTreeResult, error) {
	owner, name, err := s.store.ResolveRepo(ctx, repo)
	if err != nil {
		return nil, err
	}
	idx, err := s.store.LoadIndex(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	symbolCounts := map[string]int{}
	for _, sym := range idx.Symbols {
		symbolCounts[sym.File]++
	}

	var files []storage.FileRecord
	for _, f := range idx.Files {
		if strings.HasPrefix(f.Path, pathPrefix) {
			files = append(files, f)
		}
	}

	return &FileTreeResult{
		Repo:       owner + "/" + name,
		PathPrefix: pathPrefix,
		Tree:       buildTree(files, symbolCounts, pathPrefix),
	}, nil
}

// FileOutline returns the symbol hierarchy of one file.
func (s *Service) FileOutline(ctx context.Context, repo, filePath string) (*FileOutlineResult, error) {
	owner, name, err := s.store.ResolveRepo(ctx, repo)
	if err != nil {
		return nil, err
	}
	symbols, err := s.store.SymbolsForFile(ctx, owner, name, filePath)
	if err != nil {
		return nil, err
	}

	out := &FileOutlineResult{
		Repo:    owner + "/" + name,
		File:    filePath,
		Symbols: []OutlineNode{},
	}
	if len(symbols) == 0 {
		return out, nil
	}
	out.Language = symbols[0].Language

	for _, node := range parser.BuildSymbolTree(symbols) {
		out.Symbols = append(out.Symbols, outlineNode(node))
	}
	return out, nil
}

// Symbol returns one symbol's metadata and full source.
func (s *Service) Symbol(ctx context.Context, repo, symbolID string) (*SymbolDetail, error) {
	owner, name, err := s.store.ResolveRepo(ctx, repo)
	if err != nil {
		return nil, err
	}
	return s.symbolDetail(ctx, owner, name, symbolID)
}

// SymbolBatch returns source for several symbols, collecting per-symbol
// failures instead of aborting the batch.
func (s *Service) SymbolBatch(ctx context.Context, repo string, symbolIDs []string) (*SymbolBatchResult, error) {
	owner, name, err := s.store.ResolveRepo(ctx, repo)
	if err != nil {
		return nil, err
	}

	out := &SymbolBatchResult{Symbols: []SymbolDetail{}, Errors: []SymbolError{}}
	for _, id := range symbolIDs {
		detail, err := s.symbolDetail(ctx, owner, name, id)
		if err != nil {
			out.Errors = append(out.Errors, SymbolError{ID: id, Error: err.Error()})
			continue
		}
		out.Symbols = append(out.Symbols, *detail)
	}
	return out, nil
}

// SearchSymbols ranks a repo's symbols against a query.
func (s *Service) SearchSymbols(ctx context.Context, repo, query, kind, filePattern string, maxResults int) (*SearchResult, error) {
	owner, name, err := s.store.ResolveRepo(ctx, repo)
	if err != nil {
		return nil, err
	}
	if err := s.ensureSearchable(ctx, owner, name); err != nil {
		return nil, err
	}

	hits, err := s.searcher.Search(ctx, query, &search.Options{
		Repo:  owner + "/" + name,
		Kind:  kind,
		File:  filePattern,
		Limit: maxResults,
	})
	if err != nil {
		return nil, err
	}

	out := &SearchResult{
		Repo:    owner + "/" + name,
		Query:   query,
		Results: []SearchHit{},
	}
	for _, hit := range hits {
		out.Results = append(out.Results, SearchHit{
			ID:        hit.Symbol.ID,
			Kind:      hit.Symbol.Kind,
			Name:      hit.Symbol.Name,
			File:      hit.Symbol.File,
			Line:      hit.Symbol.Line,
			Signature: hit.Symbol.Signature,
			Summary:   hit.Symbol.Summary,
			Score:     hit.Score,
		})
	}
	out.ResultCount = len(out.Results)
	return out, nil
}

func (s *Service) symbolDetail(ctx context.Context, owner, name, symbolID string) (*SymbolDetail, error) {
	sym, err := s.store.GetSymbol(ctx, owner, name, symbolID)
	if err != nil {
		return nil, err
	}
	source, err := s.store.SymbolContent(owner, name, sym)
	if err != nil {
		return nil, err
	}

	decorators := sym.Decorators
	if decorators == nil {
		decorators = []string{}
	}
	return &SymbolDetail{
		ID:         sym.ID,
		Kind:       sym.Kind,
		Name:       sym.Name,
		File:       sym.File,
		Line:       sym.Line,
		EndLine:    sym.EndLine,
		Signature:  sym.Signature,
		Decorators: decorators,
		Docstring:  sym.Docstring,
		Source:     source,
	}, nil
}

// ensureSearchable loads a repo's symbols into the in-memory search
// index on first use.
func (s *Service) ensureSearchable(ctx context.Context, owner, name string) error {
	key := owner + "/" + name

	s.searchableMu.Lock()
	defer s.searchableMu.Unlock()
	if s.searchable[key] {
		return nil
	}

	symbols, err := s.store.Symbols(ctx, owner, name)
	if err != nil {
		return err
	}
	if err := s.searcher.Update(ctx, key, symbols); err != nil {
		return err
	}
	s.searchable[key] = true
	return nil
}

func outlineNode(node *parser.SymbolNode) OutlineNode {
	out := OutlineNode{
		ID:        node.Symbol.ID,
		Kind:      node.Symbol.Kind,
		Name:      node.Symbol.Name,
		Signature: node.Symbol.Signature,
		Summary:   node.Symbol.Summary,
		Line:      node.Symbol.Line,
	}
	for _, child := range node.Children {
		out.Children = append(out.Children, outlineNode(child))
	}
	return out
}

// buildTree nests a flat file list into directories. Directory entries
// sort before comparison by name at each level.
func buildTree(files []storage.FileRecord, symbolCounts map[string]int, pathPrefix string) []TreeNode {
	type dirEntry struct {
		node     *TreeNode
		children map[string]*dirEntry
	}
	root := &dirEntry{children: map[string]*dirEntry{}}

	for _, file := range files {
		rel := strings.TrimPrefix(file.Path, pathPrefix)
		rel = strings.TrimPrefix(rel, "/")
		parts := strings.Split(rel, "/")

		current := root
		for i, part := range parts {
			if i == len(parts)-1 {
				current.children[part] = &dirEntry{node: &TreeNode{
					Path:        file.Path,
					Type:        "file",
					Language:    file.Language,
					SymbolCount: symbolCounts[file.Path],
				}}
				continue
			}
			next, ok := current.children[part]
			if !ok {
				next = &dirEntry{
					node:     &TreeNode{Path: part + "/", Type: "dir"},
					children: map[string]*dirEntry{},
				}
				current.children[part] = next
			}
			current = next
		}
	}

	var toList func(entry *dirEntry) []TreeNode
	toList = func(entry *dirEntry) []TreeNode {
		names := make([]string, 0, len(entry.children))
		for name := range entry.children {
			names = append(names, name)
		}
		sort.Strings(names)

		out := make([]TreeNode, 0, len(names))
		for _, name := range names {
			child := entry.children[name]
			node := *child.node
			if node.Type == "dir" {
				node.Children = toList(child)
			}
			out = append(out, node)
		}
		return out
	}
	return toList(root)
}
