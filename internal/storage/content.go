package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/mvp-joe/codemunch/internal/parser"
)

// contentDir is where a repo's raw file snapshot lives. Symbol records
// carry byte offsets into these files, so the snapshot and the symbol
// rows are written together and replaced together.
func (s *Store) contentDir(owner, name string) string {
	return filepath.Join(s.baseDir, "content", owner+"-"+name)
}

func (s *Store) writeSnapshot(owner, name string, rawFiles map[string][]byte) error {
	dir := s.contentDir(owner, name)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clear content snapshot: %w", err)
	}
	for path, content := range rawFiles {
		dest := filepath.Join(dir, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("failed to create snapshot dir: %w", err)
		}
		if err := os.WriteFile(dest, content, 0o644); err != nil {
			return fmt.Errorf("failed to write snapshot file %s: %w", path, err)
		}
	}
	return nil
}

// SymbolContent reads a symbol's full source text from the content
// snapshot using its recorded byte range.
func (s *Store) SymbolContent(owner, name string, sym parser.Symbol) (string, error) {
	path := filepath.Join(s.contentDir(owner, name), filepath.FromSlash(sym.File))
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("content for %s: %w", sym.File, ErrNotFound)
		}
		return "", fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(int64(sym.ByteOffset), io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to seek to symbol: %w", err)
	}
	buf := make([]byte, sym.ByteLength)
	if _, err := io.ReadFull(f, buf); err != nil {
		return "", fmt.Errorf("failed to read symbol content: %w", err)
	}
	if !utf8.Valid(buf) {
		return "", fmt.Errorf("symbol %s: %w", sym.ID, parser.ErrInvalidEncoding)
	}
	return string(buf), nil
}
