package parser

import "strings"

// Symbol kinds emitted by the extractor.
const (
	KindFunction = "function"
	KindMethod   = "method"
	KindClass    = "class"
	KindType     = "type"
	KindConstant = "constant"
)

// Symbol is one recognized declaration extracted from a source file.
// The record is a flat value: Parent is a back-reference by ID, never a
// pointer, so symbol lists can be persisted and rebuilt freely.
type Symbol struct {
	ID            string   `json:"id"`
	File          string   `json:"file"`
	Name          string   `json:"name"`
	QualifiedName string   `json:"qualified_name"`
	Kind          string   `json:"kind"`
	Language      string   `json:"language"`
	Signature     string   `json:"signature"`
	Docstring     string   `json:"docstring,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	Decorators    []string `json:"decorators,omitempty"`
	Parent        string   `json:"parent,omitempty"`
	Line          int      `json:"line"`     // 1-indexed start line
	EndLine       int      `json:"end_line"` // 1-indexed end line
	ByteOffset    int      `json:"byte_offset"`
	ByteLength    int      `json:"byte_length"`
}

const idSeparator = "::"

// Slugify converts a file path to a flat storage-safe key component by
// replacing path separators and dots with dashes.
// Example: src/main.py -> src-main-py
func Slugify(path string) string {
	r := strings.NewReplacer("/", "-", "\\", "-", ".", "-")
	return r.Replace(path)
}

// MakeSymbolID builds the deterministic symbol identifier.
// Format: <slug(file)>::<qualified_name>, e.g. src-main-py::MyClass.login
func MakeSymbolID(filePath, qualifiedName string) string {
	return Slugify(filePath) + idSeparator + qualifiedName
}

// ParseSymbolID splits a symbol ID back into its file slug and qualified
// name. This format is a persisted contract: storage keys are parsed with
// this function, so the separator must never change.
func ParseSymbolID(id string) (fileSlug, qualifiedName string, ok bool) {
	return strings.Cut(id, idSeparator)
}
