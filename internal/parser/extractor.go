package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ErrInvalidEncoding is returned when an extracted byte range is not valid
// UTF-8. A corrupted name or signature is worse than no symbol, so decode
// failures surface instead of producing placeholder text.
var ErrInvalidEncoding = errors.New("invalid utf-8 in source")

// Extract parses source and returns the flat, pre-ordered symbol list for
// one file. Unsupported languages yield an empty result, not an error.
// Extraction is deterministic and self-contained: it reads only its
// arguments and the immutable language registry, so callers may run many
// extractions concurrently.
func Extract(source []byte, filename, language string) ([]Symbol, error) {
	spec, ok := Lookup(language)
	if !ok {
		return nil, nil
	}

	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(spec.grammarFor())

	tree := p.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s file: %s", language, filename)
	}
	defer tree.Close()

	w := &walker{
		spec:     spec,
		source:   source,
		file:     filename,
		language: language,
	}
	if err := w.walk(tree.RootNode(), nil); err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	return w.symbols, nil
}

// walker threads the extraction state through one recursive descent. The
// enclosing-symbol context is passed by argument, never stored, so nothing
// here is shared between extractions.
type walker struct {
	spec     *LanguageSpec
	source   []byte
	file     string
	language string
	symbols  []Symbol
}

// walk visits node and its children in document order. parent is the
// nearest enclosing symbol, nil at the root. A node marked with a parse
// error produces no symbol of its own, but its subtree is still visited so
// later declarations in the same file are not lost.
func (w *walker) walk(node *sitter.Node, parent *Symbol) error {
	if kind, ok := w.spec.SymbolNodeTypes[node.Kind()]; ok && !node.HasError() {
		sym, err := w.extractSymbol(node, kind, parent)
		if err != nil {
			return err
		}
		if sym != nil {
			w.symbols = append(w.symbols, *sym)
			parent = sym
		}
	}

	if parent == nil && containsString(w.spec.ConstantPatterns, node.Kind()) {
		sym, err := w.extractConstant(node)
		if err != nil {
			return err
		}
		if sym != nil {
			w.symbols = append(w.symbols, *sym)
		}
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if err := w.walk(node.Child(i), parent); err != nil {
			return err
		}
	}
	return nil
}

// extractSymbol builds a Symbol from a recognized node, or nil when the
// node has no extractable name (anonymous forms, misconfigured fields).
func (w *walker) extractSymbol(node *sitter.Node, kind string, parent *Symbol) (*Symbol, error) {
	name, err := w.symbolName(node)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}

	qualified := name
	parentID := ""
	if parent != nil {
		qualified = parent.QualifiedName + "." + name
		parentID = parent.ID
		// A nested function is a method of its enclosing symbol.
		if kind == KindFunction {
			kind = KindMethod
		}
	}

	signature, err := w.signature(node)
	if err != nil {
		return nil, err
	}
	docstring, err := w.docstring(node)
	if err != nil {
		return nil, err
	}
	decorators, err := w.decorators(node)
	if err != nil {
		return nil, err
	}

	return &Symbol{
		ID:            MakeSymbolID(w.file, qualified),
		File:          w.file,
		Name:          name,
		QualifiedName: qualified,
		Kind:          kind,
		Language:      w.language,
		Signature:     signature,
		Docstring:     docstring,
		Decorators:    decorators,
		Parent:        parentID,
		Line:          int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		ByteOffset:    int(node.StartByte()),
		ByteLength:    int(node.EndByte() - node.StartByte()),
	}, nil
}

// symbolName reads the declared name of a node per the spec's name fields.
// Two structural exceptions are handled in code rather than tables:
// function-value expressions carry no name of their own and are skipped as
// anonymous, and Go's type_declaration wraps the named type_spec.
func (w *walker) symbolName(node *sitter.Node) (string, error) {
	switch node.Kind() {
	case "arrow_function":
		// Any name lives on the enclosing assignment, not on the function
		// value itself.
		return "", nil
	case "type_declaration":
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child.Kind() != "type_spec" {
				continue
			}
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				return w.nodeText(nameNode)
			}
		}
		return "", nil
	}

	field, ok := w.spec.NameFields[node.Kind()]
	if !ok {
		return "", nil
	}
	nameNode := node.ChildByFieldName(field)
	if nameNode == nil {
		return "", nil
	}
	return w.nodeText(nameNode)
}

// signature returns the declaration header: node start up to the body
// child when one exists, with trailing whitespace and block-opening
// punctuation stripped.
func (w *walker) signature(node *sitter.Node) (string, error) {
	end := node.EndByte()
	if body := node.ChildByFieldName("body"); body != nil {
		end = body.StartByte()
	}

	text, err := w.sliceText(node.StartByte(), end)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(strings.TrimSpace(text), "{: \n\t"), nil
}

// docstring dispatches on the spec's documentation strategy.
func (w *walker) docstring(node *sitter.Node) (string, error) {
	switch w.spec.DocstringStrategy {
	case DocstringLeadingString:
		return w.leadingStringDocstring(node)
	case DocstringPrecedingComment:
		return w.precedingCommentDocstring(node)
	default:
		return "", nil
	}
}

// leadingStringDocstring reads a bare string literal that is the first
// statement of the symbol body. Both the expression-statement wrapper and
// a bare string child are recognized.
func (w *walker) leadingStringDocstring(node *sitter.Node) (string, error) {
	body := node.ChildByFieldName("body")
	if body == nil {
		return "", nil
	}

	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		switch child.Kind() {
		case "comment":
			continue
		case "string":
			text, err := w.nodeText(child)
			if err != nil {
				return "", err
			}
			return stripQuotes(text), nil
		case "expression_statement":
			if child.NamedChildCount() == 0 {
				return "", nil
			}
			first := child.NamedChild(0)
			if first.Kind() != "string" && first.Kind() != "concatenated_string" {
				return "", nil
			}
			text, err := w.nodeText(first)
			if err != nil {
				return "", err
			}
			return stripQuotes(text), nil
		default:
			// The first real statement is not a string literal.
			return "", nil
		}
	}
	return "", nil
}

// precedingCommentDocstring collects the run of comment siblings directly
// above the node, in source order. Only non-comment syntax ends the run.
func (w *walker) precedingCommentDocstring(node *sitter.Node) (string, error) {
	var comments []string
	for prev := node.PrevNamedSibling(); prev != nil && isCommentKind(prev.Kind()); prev = prev.PrevNamedSibling() {
		text, err := w.nodeText(prev)
		if err != nil {
			return "", err
		}
		comments = append([]string{text}, comments...)
	}
	if len(comments) == 0 {
		return "", nil
	}
	return cleanCommentMarkers(strings.Join(comments, "\n")), nil
}

// decorators collects preceding decorator/attribute siblings in source order.
func (w *walker) decorators(node *sitter.Node) ([]string, error) {
	if w.spec.DecoratorNodeType == "" {
		return nil, nil
	}

	var decorators []string
	for prev := node.PrevNamedSibling(); prev != nil && prev.Kind() == w.spec.DecoratorNodeType; prev = prev.PrevNamedSibling() {
		text, err := w.nodeText(prev)
		if err != nil {
			return nil, err
		}
		decorators = append([]string{strings.TrimSpace(text)}, decorators...)
	}
	return decorators, nil
}

// extractConstant recognizes a top-level constant: an assignment-shaped
// node with a simple identifier on the left whose name passes the
// language's constant-name rule.
func (w *walker) extractConstant(node *sitter.Node) (*Symbol, error) {
	left := node.ChildByFieldName("left")
	if left == nil || left.Kind() != "identifier" {
		return nil, nil
	}

	name, err := w.nodeText(left)
	if err != nil {
		return nil, err
	}
	accept := w.spec.ConstantName
	if accept == nil {
		accept = IsConstantName
	}
	if !accept(name) {
		return nil, nil
	}

	text, err := w.nodeText(node)
	if err != nil {
		return nil, err
	}

	return &Symbol{
		ID:            MakeSymbolID(w.file, name),
		File:          w.file,
		Name:          name,
		QualifiedName: name,
		Kind:          KindConstant,
		Language:      w.language,
		Signature:     truncate(strings.TrimSpace(text), 100),
		Line:          int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		ByteOffset:    int(node.StartByte()),
		ByteLength:    int(node.EndByte() - node.StartByte()),
	}, nil
}

func (w *walker) nodeText(node *sitter.Node) (string, error) {
	return w.sliceText(node.StartByte(), node.EndByte())
}

func (w *walker) sliceText(start, end uint) (string, error) {
	b := w.source[start:end]
	if !utf8.Valid(b) {
		return "", ErrInvalidEncoding
	}
	return string(b), nil
}

// IsConstantName is the default constant-name rule: entirely upper-case,
// or mixed case starting upper and containing an underscore.
func IsConstantName(name string) bool {
	if name == "" {
		return false
	}
	if isAllUpper(name) {
		return true
	}
	first, _ := utf8.DecodeRuneInString(name)
	return utf8.RuneCountInString(name) > 1 && unicode.IsUpper(first) && strings.Contains(name, "_")
}

// isAllUpper reports whether s contains at least one cased rune and no
// lower-case runes.
func isAllUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

// stripQuotes removes the matching pair of string delimiters, triple
// quotes first so they are not mistaken for their single-character forms.
func stripQuotes(text string) string {
	text = strings.TrimSpace(text)
	for _, q := range []string{`"""`, "'''", `"`, "'"} {
		if len(text) >= 2*len(q) && strings.HasPrefix(text, q) && strings.HasSuffix(text, q) {
			return strings.TrimSpace(text[len(q) : len(text)-len(q)])
		}
	}
	return text
}

// isCommentKind matches the comment node types across the supported
// grammars (python/go/javascript use "comment", rust and java split line
// and block forms).
func isCommentKind(kind string) bool {
	switch kind {
	case "comment", "line_comment", "block_comment":
		return true
	}
	return false
}

// commentPrefixes in match order: longer markers before their prefixes so
// /// and //! are not consumed by the bare // rule.
var commentPrefixes = []string{"/**", "/*", "///", "//!", "//", "*"}

// cleanCommentMarkers strips comment punctuation from each line of a
// collected comment block.
func cleanCommentMarkers(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "*/" {
			// A bare closing line would be eaten by the * prefix rule
			// and leave a stray slash behind.
			line = ""
		} else {
			for _, prefix := range commentPrefixes {
				if strings.HasPrefix(line, prefix) {
					line = line[len(prefix):]
					break
				}
			}
			line = strings.TrimSuffix(line, "*/")
		}
		cleaned = append(cleaned, strings.TrimSpace(line))
	}

	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// truncate shortens s to at most n runes, keeping the result valid UTF-8.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
