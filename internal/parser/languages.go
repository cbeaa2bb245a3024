package parser

import (
	"path/filepath"
	"sort"

	sitter "github.com/tree-sitter/go-tree-sitter"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// DocstringStrategy selects the language convention for locating a
// symbol's documentation text.
type DocstringStrategy int

const (
	// DocstringNone means the language entry extracts no documentation.
	DocstringNone DocstringStrategy = iota
	// DocstringLeadingString reads a bare string literal that is the first
	// statement of the symbol body (Python).
	DocstringLeadingString
	// DocstringPrecedingComment collects the comment block on the named
	// siblings immediately before the symbol node (Go, Rust, Java, JS/TS).
	DocstringPrecedingComment
)

// LanguageSpec declares how one language's syntax tree maps to symbols.
// The tree walker is language-agnostic: adding a language means adding a
// spec entry here, never new traversal code. Keys must be node type tags
// the grammar actually emits; entries for tags a grammar never produces
// are dead but harmless.
type LanguageSpec struct {
	// Language is the registry key and the tag stamped on extracted symbols.
	Language string

	// SymbolNodeTypes maps syntax node types to the symbol kind they produce.
	SymbolNodeTypes map[string]string

	// NameFields maps syntax node types to the named-child field holding
	// the identifier.
	NameFields map[string]string

	DocstringStrategy DocstringStrategy

	// DecoratorNodeType is the node type of a decorator/attribute that
	// precedes a symbol node as a sibling. Empty when the language has none.
	DecoratorNodeType string

	// ContainerNodeTypes lists node types whose members nest (methods
	// inside a class). Informational: nesting itself follows from the
	// enclosing-symbol context during traversal.
	ContainerNodeTypes []string

	// ConstantPatterns lists node types eligible for top-level constant
	// recognition.
	ConstantPatterns []string

	// ConstantName decides whether a left-hand identifier is accepted as a
	// constant. Nil selects the upper-snake default shared by all entries.
	ConstantName func(name string) bool

	grammar *sitter.Language
}

// grammarFor returns the tree-sitter grammar bound to this spec.
func (s *LanguageSpec) grammarFor() *sitter.Language {
	return s.grammar
}

var registry = buildRegistry()

// languageExtensions maps file extensions to language tags at the
// discovery boundary. Adding a language adds an entry here plus a spec in
// buildRegistry.
var languageExtensions = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".go":   "go",
	".rs":   "rust",
	".java": "java",
}

// Lookup returns the spec for a language tag. The second return is false
// for unsupported languages; callers treat that as a no-op, not an error.
func Lookup(language string) (*LanguageSpec, bool) {
	spec, ok := registry[language]
	return spec, ok
}

// Languages returns the supported language tags in sorted order.
func Languages() []string {
	langs := make([]string, 0, len(registry))
	for lang := range registry {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// LanguageForFile maps a file path to its language tag by extension.
func LanguageForFile(path string) (string, bool) {
	lang, ok := languageExtensions[filepath.Ext(path)]
	return lang, ok
}

// buildRegistry constructs the process-wide immutable language registry.
// It runs once at package init; specs are never mutated afterwards.
func buildRegistry() map[string]*LanguageSpec {
	specs := []*LanguageSpec{
		{
			Language: "python",
			SymbolNodeTypes: map[string]string{
				"function_definition": KindFunction,
				"class_definition":    KindClass,
			},
			NameFields: map[string]string{
				"function_definition": "name",
				"class_definition":    "name",
			},
			DocstringStrategy:  DocstringLeadingString,
			DecoratorNodeType:  "decorator",
			ContainerNodeTypes: []string{"class_definition"},
			ConstantPatterns:   []string{"assignment"},
			grammar:            sitter.NewLanguage(python.Language()),
		},
		{
			Language: "javascript",
			SymbolNodeTypes: map[string]string{
				"function_declaration":           KindFunction,
				"class_declaration":              KindClass,
				"method_definition":              KindMethod,
				"arrow_function":                 KindFunction,
				"generator_function_declaration": KindFunction,
			},
			NameFields: map[string]string{
				"function_declaration":           "name",
				"class_declaration":              "name",
				"method_definition":              "name",
				"generator_function_declaration": "name",
			},
			DocstringStrategy:  DocstringPrecedingComment,
			ContainerNodeTypes: []string{"class_declaration", "class"},
			ConstantPatterns:   []string{"lexical_declaration"},
			grammar:            sitter.NewLanguage(javascript.Language()),
		},
		{
			Language: "typescript",
			SymbolNodeTypes: map[string]string{
				"function_declaration":   KindFunction,
				"class_declaration":      KindClass,
				"method_definition":      KindMethod,
				"arrow_function":         KindFunction,
				"interface_declaration":  KindType,
				"type_alias_declaration": KindType,
				"enum_declaration":       KindType,
			},
			NameFields: map[string]string{
				"function_declaration":   "name",
				"class_declaration":      "name",
				"method_definition":      "name",
				"interface_declaration":  "name",
				"type_alias_declaration": "name",
				"enum_declaration":       "name",
			},
			DocstringStrategy:  DocstringPrecedingComment,
			DecoratorNodeType:  "decorator",
			ContainerNodeTypes: []string{"class_declaration", "class"},
			ConstantPatterns:   []string{"lexical_declaration"},
			grammar:            sitter.NewLanguage(typescript.LanguageTypescript()),
		},
		{
			Language: "go",
			SymbolNodeTypes: map[string]string{
				"function_declaration": KindFunction,
				"method_declaration":   KindMethod,
				"type_declaration":     KindType,
			},
			NameFields: map[string]string{
				"function_declaration": "name",
				"method_declaration":   "name",
			},
			DocstringStrategy: DocstringPrecedingComment,
			ConstantPatterns:  []string{"const_declaration"},
			grammar:           sitter.NewLanguage(golang.Language()),
		},
		{
			Language: "rust",
			SymbolNodeTypes: map[string]string{
				"function_item": KindFunction,
				"struct_item":   KindType,
				"enum_item":     KindType,
				"trait_item":    KindType,
				"impl_item":     KindClass,
				"type_item":     KindType,
			},
			NameFields: map[string]string{
				"function_item": "name",
				"struct_item":   "name",
				"enum_item":     "name",
				"trait_item":    "name",
				"type_item":     "name",
			},
			DocstringStrategy:  DocstringPrecedingComment,
			DecoratorNodeType:  "attribute_item",
			ContainerNodeTypes: []string{"impl_item", "trait_item"},
			ConstantPatterns:   []string{"const_item", "static_item"},
			grammar:            sitter.NewLanguage(rust.Language()),
		},
		{
			Language: "java",
			SymbolNodeTypes: map[string]string{
				"method_declaration":      KindMethod,
				"constructor_declaration": KindMethod,
				"class_declaration":       KindClass,
				"interface_declaration":   KindType,
				"enum_declaration":        KindType,
			},
			NameFields: map[string]string{
				"method_declaration":      "name",
				"constructor_declaration": "name",
				"class_declaration":       "name",
				"interface_declaration":   "name",
				"enum_declaration":        "name",
			},
			DocstringStrategy:  DocstringPrecedingComment,
			DecoratorNodeType:  "marker_annotation",
			ContainerNodeTypes: []string{"class_declaration", "interface_declaration", "enum_declaration"},
			ConstantPatterns:   []string{"field_declaration"},
			grammar:            sitter.NewLanguage(java.Language()),
		},
	}

	reg := make(map[string]*LanguageSpec, len(specs))
	for _, spec := range specs {
		reg[spec.Language] = spec
	}
	return reg
}
