package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/codemunch/internal/parser"
)

// Store persists repo indexes in SQLite plus raw content snapshots on
// disk for byte-offset symbol reads. One Store owns one database.
type Store struct {
	db      *sql.DB
	baseDir string
	cache   *symbolCache
}

// NewStore opens (or creates) the index database under baseDir.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}

	dbPath := filepath.Join(baseDir, "index.db")
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dbPath, err)
	}

	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	cache, err := newSymbolCache()
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, baseDir: baseDir, cache: cache}, nil
}

// Close releases the database and cache.
func (s *Store) Close() error {
	s.cache.close()
	return s.db.Close()
}

// SaveIndex replaces the stored index for idx's repo atomically and
// writes the raw content snapshot used for byte-range symbol reads.
func (s *Store) SaveIndex(ctx context.Context, idx *RepoIndex, rawFiles map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Replace wholesale: cascade clears files and symbols.
	if _, err := sq.Delete("repos").
		Where(sq.Eq{"owner": idx.Owner, "name": idx.Name}).
		RunWith(tx).ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to clear previous index: %w", err)
	}

	res, err := sq.Insert("repos").
		Columns("owner", "name", "indexed_at").
		Values(idx.Owner, idx.Name, idx.IndexedAt.UTC().Format(time.RFC3339Nano)).
		RunWith(tx).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert repo: %w", err)
	}
	repoID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read repo id: %w", err)
	}

	for _, file := range idx.Files {
		if _, err := sq.Insert("files").
			Columns("repo_id", "path", "language").
			Values(repoID, file.Path, file.Language).
			RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to insert file %s: %w", file.Path, err)
		}
	}

	for ord, sym := range idx.Symbols {
		decorators, err := json.Marshal(sym.Decorators)
		if err != nil {
			return fmt.Errorf("failed to encode decorators for %s: %w", sym.ID, err)
		}
		if _, err := sq.Insert("symbols").
			Columns("repo_id", "ord", "symbol_id", "file", "name", "qualified_name",
				"kind", "language", "signature", "docstring", "summary",
				"decorators", "parent", "line", "end_line", "byte_offset", "byte_length").
			Values(repoID, ord, sym.ID, sym.File, sym.Name, sym.QualifiedName,
				sym.Kind, sym.Language, sym.Signature, sym.Docstring, sym.Summary,
				string(decorators), sym.Parent, sym.Line, sym.EndLine, sym.ByteOffset, sym.ByteLength).
			RunWith(tx).ExecContext(ctx); err != nil {
			return fmt.Errorf("failed to insert symbol %s: %w", sym.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index: %w", err)
	}

	if err := s.writeSnapshot(idx.Owner, idx.Name, rawFiles); err != nil {
		return err
	}

	s.cache.invalidate(repoKey(idx.Owner, idx.Name))
	return nil
}

// LoadIndex loads a full repo index, symbols in original traversal order.
func (s *Store) LoadIndex(ctx context.Context, owner, name string) (*RepoIndex, error) {
	repoID, indexedAt, err := s.repoRow(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	idx := &RepoIndex{
		Owner:     owner,
		Name:      name,
		IndexedAt: indexedAt,
		Languages: map[string]int{},
	}

	rows, err := sq.Select("path", "language").
		From("files").
		Where(sq.Eq{"repo_id": repoID}).
		OrderBy("path").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var file FileRecord
		if err := rows.Scan(&file.Path, &file.Language); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		idx.Files = append(idx.Files, file)
		idx.Languages[file.Language]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	idx.Symbols, err = s.querySymbols(ctx, sq.Eq{"repo_id": repoID})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// ListRepos returns summaries for every indexed repository.
func (s *Store) ListRepos(ctx context.Context) ([]RepoSummary, error) {
	rows, err := sq.Select("id", "owner", "name", "indexed_at").
		From("repos").
		OrderBy("owner", "name").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query repos: %w", err)
	}
	defer rows.Close()

	var summaries []RepoSummary
	var ids []int64
	for rows.Next() {
		var id int64
		var summary RepoSummary
		var indexedAt string
		if err := rows.Scan(&id, &summary.Owner, &summary.Name, &indexedAt); err != nil {
			return nil, fmt.Errorf("failed to scan repo: %w", err)
		}
		summary.IndexedAt, _ = time.Parse(time.RFC3339Nano, indexedAt)
		summary.Languages = map[string]int{}
		summaries = append(summaries, summary)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		if err := s.fillCounts(ctx, id, &summaries[i]); err != nil {
			return nil, err
		}
	}
	return summaries, nil
}

// DeleteIndex removes a repo's index and content snapshot.
func (s *Store) DeleteIndex(ctx context.Context, owner, name string) error {
	res, err := sq.Delete("repos").
		Where(sq.Eq{"owner": owner, "name": name}).
		RunWith(s.db).ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete repo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("repo %s/%s: %w", owner, name, ErrNotFound)
	}

	if err := os.RemoveAll(s.contentDir(owner, name)); err != nil {
		return fmt.Errorf("failed to remove content snapshot: %w", err)
	}
	s.cache.invalidate(repoKey(owner, name))
	return nil
}

// Symbols returns a repo's full symbol list in traversal order, served
// from the in-process cache when warm.
func (s *Store) Symbols(ctx context.Context, owner, name string) ([]parser.Symbol, error) {
	key := repoKey(owner, name)
	if symbols, ok := s.cache.get(key); ok {
		return symbols, nil
	}

	repoID, _, err := s.repoRow(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	symbols, err := s.querySymbols(ctx, sq.Eq{"repo_id": repoID})
	if err != nil {
		return nil, err
	}
	s.cache.put(key, symbols)
	return symbols, nil
}

// SymbolsForFile returns the symbols of one file, in traversal order.
func (s *Store) SymbolsForFile(ctx context.Context, owner, name, file string) ([]parser.Symbol, error) {
	repoID, _, err := s.repoRow(ctx, owner, name)
	if err != nil {
		return nil, err
	}
	return s.querySymbols(ctx, sq.Eq{"repo_id": repoID, "file": file})
}

// GetSymbol looks one symbol up by its persisted ID.
func (s *Store) GetSymbol(ctx context.Context, owner, name, symbolID string) (parser.Symbol, error) {
	repoID, _, err := s.repoRow(ctx, owner, name)
	if err != nil {
		return parser.Symbol{}, err
	}
	symbols, err := s.querySymbols(ctx, sq.Eq{"repo_id": repoID, "symbol_id": symbolID})
	if err != nil {
		return parser.Symbol{}, err
	}
	if len(symbols) == 0 {
		return parser.Symbol{}, fmt.Errorf("symbol %s: %w", symbolID, ErrNotFound)
	}
	return symbols[0], nil
}

// ResolveRepo resolves a repo argument that is either "owner/name" or a
// bare repo name matched against stored repos.
func (s *Store) ResolveRepo(ctx context.Context, repo string) (owner, name string, err error) {
	if o, n, ok := strings.Cut(repo, "/"); ok {
		return o, n, nil
	}

	summaries, err := s.ListRepos(ctx)
	if err != nil {
		return "", "", err
	}
	for _, summary := range summaries {
		if summary.Name == repo {
			return summary.Owner, summary.Name, nil
		}
	}
	return "", "", fmt.Errorf("repo %q: %w", repo, ErrNotFound)
}

func (s *Store) repoRow(ctx context.Context, owner, name string) (int64, time.Time, error) {
	var id int64
	var indexedAt string
	err := sq.Select("id", "indexed_at").
		From("repos").
		Where(sq.Eq{"owner": owner, "name": name}).
		RunWith(s.db).QueryRowContext(ctx).Scan(&id, &indexedAt)
	if err == sql.ErrNoRows {
		return 0, time.Time{}, fmt.Errorf("repo %s/%s: %w", owner, name, ErrNotFound)
	}
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to query repo: %w", err)
	}
	ts, _ := time.Parse(time.RFC3339Nano, indexedAt)
	return id, ts, nil
}

func (s *Store) querySymbols(ctx context.Context, where sq.Eq) ([]parser.Symbol, error) {
	rows, err := sq.Select("symbol_id", "file", "name", "qualified_name", "kind",
		"language", "signature", "docstring", "summary", "decorators", "parent",
		"line", "end_line", "byte_offset", "byte_length").
		From("symbols").
		Where(where).
		OrderBy("ord").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []parser.Symbol
	for rows.Next() {
		var sym parser.Symbol
		var decorators string
		if err := rows.Scan(&sym.ID, &sym.File, &sym.Name, &sym.QualifiedName, &sym.Kind,
			&sym.Language, &sym.Signature, &sym.Docstring, &sym.Summary, &decorators,
			&sym.Parent, &sym.Line, &sym.EndLine, &sym.ByteOffset, &sym.ByteLength); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		// "[]" stays a nil slice so stored symbols round-trip exactly.
		if decorators != "" && decorators != "null" && decorators != "[]" {
			if err := json.Unmarshal([]byte(decorators), &sym.Decorators); err != nil {
				return nil, fmt.Errorf("failed to decode decorators for %s: %w", sym.ID, err)
			}
		}
		symbols = append(symbols, sym)
	}
	return symbols, rows.Err()
}

func (s *Store) fillCounts(ctx context.Context, repoID int64, summary *RepoSummary) error {
	if err := sq.Select("COUNT(*)").
		From("symbols").
		Where(sq.Eq{"repo_id": repoID}).
		RunWith(s.db).QueryRowContext(ctx).Scan(&summary.SymbolCount); err != nil {
		return fmt.Errorf("failed to count symbols: %w", err)
	}

	rows, err := sq.Select("language", "COUNT(*)").
		From("files").
		Where(sq.Eq{"repo_id": repoID}).
		GroupBy("language").
		RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to count files: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var language string
		var count int
		if err := rows.Scan(&language, &count); err != nil {
			return err
		}
		summary.Languages[language] = count
		summary.FileCount += count
	}
	return rows.Err()
}

func repoKey(owner, name string) string {
	return owner + "/" + name
}
