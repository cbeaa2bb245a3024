package mcp

import "time"

// IndexFolderResult reports one indexing run.
type IndexFolderResult struct {
	Success     bool           `json:"success"`
	Repo        string         `json:"repo"`
	FolderPath  string         `json:"folder_path"`
	IndexedAt   time.Time      `json:"indexed_at"`
	FileCount   int            `json:"file_count"`
	SymbolCount int            `json:"symbol_count"`
	Languages   map[string]int `json:"languages"`
	Files       []string       `json:"files"` // capped preview of indexed paths
	Warnings    []string       `json:"warnings,omitempty"`
}

// RepoInfo is one entry in a list_repos response.
type RepoInfo struct {
	Repo        string         `json:"repo"`
	IndexedAt   time.Time      `json:"indexed_at"`
	FileCount   int            `json:"file_count"`
	SymbolCount int            `json:"symbol_count"`
	Languages   map[string]int `json:"languages"`
}

// ListReposResult is the list_repos response.
type ListReposResult struct {
	Count int        `json:"count"`
	Repos []RepoInfo `json:"repos"`
}

// TreeNode is one entry in a file tree: a file with its symbol count,
// or a directory with children.
type TreeNode struct {
	Path        string     `json:"path"`
	Type        string     `json:"type"` // "file" or "dir"
	Language    string     `json:"language,omitempty"`
	SymbolCount int        `json:"symbol_count,omitempty"`
	Children    []TreeNode `json:"children,omitempty"`
}

// FileTreeResult is the get_file_tree response.
type FileTreeResult struct {
	Repo       string     `json:"repo"`
	PathPrefix string     `json:"path_prefix"`
	Tree       []TreeNode `json:"tree"`
}

// OutlineNode is one symbol in a file outline, with nested children.
type OutlineNode struct {
	ID        string        `json:"id"`
	Kind      string        `json:"kind"`
	Name      string        `json:"name"`
	Signature string        `json:"signature"`
	Summary   string        `json:"summary"`
	Line      int           `json:"line"`
	Children  []OutlineNode `json:"children,omitempty"`
}

// FileOutlineResult is the get_file_outline response.
type FileOutlineResult struct {
	Repo     string        `json:"repo"`
	File     string        `json:"file"`
	Language string        `json:"language"`
	Symbols  []OutlineNode `json:"symbols"`
}

// SymbolDetail is the get_symbol response: full metadata plus source.
type SymbolDetail struct {
	ID         string   `json:"id"`
	Kind       string   `json:"kind"`
	Name       string   `json:"name"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	EndLine    int      `json:"end_line"`
	Signature  string   `json:"signature"`
	Decorators []string `json:"decorators"`
	Docstring  string   `json:"docstring"`
	Source     string   `json:"source"`
}

// SymbolError reports one failed lookup in a get_symbols batch.
type SymbolError struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// SymbolBatchResult is the get_symbols response.
type SymbolBatchResult struct {
	Symbols []SymbolDetail `json:"symbols"`
	Errors  []SymbolError  `json:"errors"`
}

// SearchHit is one ranked search_symbols result.
type SearchHit struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	Name      string  `json:"name"`
	File      string  `json:"file"`
	Line      int     `json:"line"`
	Signature string  `json:"signature"`
	Summary   string  `json:"summary"`
	Score     float64 `json:"score"`
}

// SearchResult is the search_symbols response.
type SearchResult struct {
	Repo        string      `json:"repo"`
	Query       string      `json:"query"`
	ResultCount int         `json:"result_count"`
	Results     []SearchHit `json:"results"`
}
