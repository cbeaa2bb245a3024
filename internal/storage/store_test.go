package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/codemunch/internal/parser"
)

// Test Plan for Store:
// 1. SaveIndex then LoadIndex round-trips files, symbols, and order
// 2. SaveIndex replaces a previous index for the same repo
// 3. ListRepos reports per-repo counts and language breakdowns
// 4. DeleteIndex removes the repo and its content snapshot
// 5. GetSymbol and SymbolsForFile filter correctly
// 6. SymbolContent reads a symbol's exact byte range
// 7. ResolveRepo handles owner/name and bare-name forms
// 8. Missing repos and symbols report ErrNotFound

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testIndex() (*RepoIndex, map[string][]byte) {
	source := []byte("def greet(name):\n    \"\"\"Say hi.\"\"\"\n    return f\"hi {name}\"\n")
	idx := &RepoIndex{
		Owner:     "local",
		Name:      "demo",
		IndexedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Files: []FileRecord{
			{Path: "app/main.py", Language: "python"},
		},
		Languages: map[string]int{"python": 1},
		Symbols: []parser.Symbol{
			{
				ID:            "app-main-py::greet",
				File:          "app/main.py",
				Name:          "greet",
				QualifiedName: "greet",
				Kind:          parser.KindFunction,
				Language:      "python",
				Signature:     "def greet(name)",
				Docstring:     "Say hi.",
				Line:          1,
				EndLine:       3,
				ByteOffset:    0,
				ByteLength:    len(source),
			},
		},
	}
	return idx, map[string][]byte{"app/main.py": source}
}

func TestStoreSaveAndLoad(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	ctx := context.Background()
	idx, raw := testIndex()

	require.NoError(t, store.SaveIndex(ctx, idx, raw))

	loaded, err := store.LoadIndex(ctx, "local", "demo")
	require.NoError(t, err)
	assert.Equal(t, idx.Owner, loaded.Owner)
	assert.Equal(t, idx.Name, loaded.Name)
	assert.True(t, idx.IndexedAt.Equal(loaded.IndexedAt))
	assert.Equal(t, idx.Files, loaded.Files)
	assert.Equal(t, idx.Languages, loaded.Languages)
	require.Len(t, loaded.Symbols, 1)
	assert.Equal(t, idx.Symbols[0], loaded.Symbols[0])
}

func TestStoreSaveReplacesIndex(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	ctx := context.Background()
	idx, raw := testIndex()
	require.NoError(t, store.SaveIndex(ctx, idx, raw))

	// Re-index with a different symbol set.
	idx.Symbols = []parser.Symbol{
		{
			ID:            "app-main-py::farewell",
			File:          "app/main.py",
			Name:          "farewell",
			QualifiedName: "farewell",
			Kind:          parser.KindFunction,
			Language:      "python",
			Signature:     "def farewell()",
			Line:          1,
			EndLine:       2,
		},
	}
	require.NoError(t, store.SaveIndex(ctx, idx, raw))

	symbols, err := store.Symbols(ctx, "local", "demo")
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "farewell", symbols[0].Name)

	repos, err := store.ListRepos(ctx)
	require.NoError(t, err)
	assert.Len(t, repos, 1)
}

func TestStoreSymbolOrderPreserved(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	ctx := context.Background()
	idx, raw := testIndex()
	idx.Symbols = []parser.Symbol{
		{ID: "f::zz", File: "f.py", Name: "zz", QualifiedName: "zz", Kind: parser.KindClass, Language: "python"},
		{ID: "f::aa", File: "f.py", Name: "aa", QualifiedName: "zz.aa", Kind: parser.KindMethod, Language: "python", Parent: "f::zz"},
		{ID: "f::mm", File: "f.py", Name: "mm", QualifiedName: "mm", Kind: parser.KindFunction, Language: "python"},
	}
	require.NoError(t, store.SaveIndex(ctx, idx, raw))

	symbols, err := store.Symbols(ctx, "local", "demo")
	require.NoError(t, err)
	require.Len(t, symbols, 3)
	assert.Equal(t, "zz", symbols[0].Name)
	assert.Equal(t, "aa", symbols[1].Name)
	assert.Equal(t, "mm", symbols[2].Name)
}

func TestStoreListRepos(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	ctx := context.Background()
	idx, raw := testIndex()
	require.NoError(t, store.SaveIndex(ctx, idx, raw))

	other, otherRaw := testIndex()
	other.Name = "aardvark"
	require.NoError(t, store.SaveIndex(ctx, other, otherRaw))

	repos, err := store.ListRepos(ctx)
	require.NoError(t, err)
	require.Len(t, repos, 2)

	// Ordered by owner then name.
	assert.Equal(t, "aardvark", repos[0].Name)
	assert.Equal(t, "demo", repos[1].Name)
	assert.Equal(t, 1, repos[1].FileCount)
	assert.Equal(t, 1, repos[1].SymbolCount)
	assert.Equal(t, map[string]int{"python": 1}, repos[1].Languages)
}

func TestStoreDeleteIndex(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	ctx := context.Background()
	idx, raw := testIndex()
	require.NoError(t, store.SaveIndex(ctx, idx, raw))

	require.NoError(t, store.DeleteIndex(ctx, "local", "demo"))

	_, err := store.LoadIndex(ctx, "local", "demo")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.SymbolContent("local", "demo", idx.Symbols[0])
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.DeleteIndex(ctx, "local", "demo")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreGetSymbol(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	ctx := context.Background()
	idx, raw := testIndex()
	require.NoError(t, store.SaveIndex(ctx, idx, raw))

	sym, err := store.GetSymbol(ctx, "local", "demo", "app-main-py::greet")
	require.NoError(t, err)
	assert.Equal(t, "greet", sym.Name)

	_, err = store.GetSymbol(ctx, "local", "demo", "app-main-py::missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreSymbolsForFile(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	ctx := context.Background()
	idx, raw := testIndex()
	idx.Files = append(idx.Files, FileRecord{Path: "app/other.py", Language: "python"})
	idx.Symbols = append(idx.Symbols, parser.Symbol{
		ID: "app-other-py::helper", File: "app/other.py", Name: "helper",
		QualifiedName: "helper", Kind: parser.KindFunction, Language: "python",
	})
	raw["app/other.py"] = []byte("def helper(): pass\n")
	require.NoError(t, store.SaveIndex(ctx, idx, raw))

	symbols, err := store.SymbolsForFile(ctx, "local", "demo", "app/main.py")
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "greet", symbols[0].Name)
}

func TestStoreSymbolContent(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	ctx := context.Background()
	idx, raw := testIndex()

	// Narrow the range to the def line only.
	idx.Symbols[0].ByteOffset = 0
	idx.Symbols[0].ByteLength = len("def greet(name):")
	require.NoError(t, store.SaveIndex(ctx, idx, raw))

	content, err := store.SymbolContent("local", "demo", idx.Symbols[0])
	require.NoError(t, err)
	assert.Equal(t, "def greet(name):", content)
}

func TestStoreResolveRepo(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	ctx := context.Background()
	idx, raw := testIndex()
	require.NoError(t, store.SaveIndex(ctx, idx, raw))

	owner, name, err := store.ResolveRepo(ctx, "acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "widgets", name)

	owner, name, err = store.ResolveRepo(ctx, "demo")
	require.NoError(t, err)
	assert.Equal(t, "local", owner)
	assert.Equal(t, "demo", name)

	_, _, err = store.ResolveRepo(ctx, "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreSymbolsCached(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	ctx := context.Background()
	idx, raw := testIndex()
	require.NoError(t, store.SaveIndex(ctx, idx, raw))

	first, err := store.Symbols(ctx, "local", "demo")
	require.NoError(t, err)
	second, err := store.Symbols(ctx, "local", "demo")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
