package storage

import (
	"errors"
	"time"

	"github.com/mvp-joe/codemunch/internal/parser"
)

// ErrNotFound is returned when a repo, file, or symbol is not in the store.
var ErrNotFound = errors.New("not found")

// RepoIndex is the persisted extraction result for one repository: the
// file inventory plus the flat, pre-ordered symbol list.
type RepoIndex struct {
	Owner     string
	Name      string
	IndexedAt time.Time
	Files     []FileRecord
	Languages map[string]int
	Symbols   []parser.Symbol
}

// Repo returns the owner/name identifier.
func (r *RepoIndex) Repo() string {
	return r.Owner + "/" + r.Name
}

// FileRecord is one indexed source file.
type FileRecord struct {
	Path     string
	Language string
}

// RepoSummary describes an indexed repository without its symbol payload.
type RepoSummary struct {
	Owner       string
	Name        string
	IndexedAt   time.Time
	FileCount   int
	SymbolCount int
	Languages   map[string]int
}

// Repo returns the owner/name identifier.
func (s RepoSummary) Repo() string {
	return s.Owner + "/" + s.Name
}
