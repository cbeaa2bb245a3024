package parser

// SymbolNode wraps one Symbol with its ordered children. Nodes are
// ephemeral presentation state: built fresh from a flat symbol list per
// query, never persisted.
type SymbolNode struct {
	Symbol   Symbol        `json:"symbol"`
	Children []*SymbolNode `json:"children,omitempty"`
}

// FlatSymbol pairs a symbol with its depth in the rebuilt tree, for
// indentation and outline rendering.
type FlatSymbol struct {
	Symbol Symbol
	Depth  int
}

// BuildSymbolTree rebuilds the parent/child forest from a flat symbol
// list. One node is allocated per symbol; symbols whose parent ID resolves
// within the batch attach to that parent in original order, everything
// else becomes a root. Pure function: the input list is not modified.
func BuildSymbolTree(symbols []Symbol) []*SymbolNode {
	// Arena plus ID lookup, so parent links resolve without back-pointers.
	arena := make([]SymbolNode, len(symbols))
	byID := make(map[string]*SymbolNode, len(symbols))
	for i, sym := range symbols {
		arena[i] = SymbolNode{Symbol: sym}
		byID[sym.ID] = &arena[i]
	}

	var roots []*SymbolNode
	for i := range arena {
		node := &arena[i]
		if parent, ok := byID[node.Symbol.Parent]; ok && node.Symbol.Parent != "" && parent != node {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}
	return roots
}

// FlattenTree walks the forest pre-order, emitting each symbol before its
// children with depth incremented per level.
func FlattenTree(nodes []*SymbolNode) []FlatSymbol {
	var out []FlatSymbol
	var visit func(nodes []*SymbolNode, depth int)
	visit = func(nodes []*SymbolNode, depth int) {
		for _, node := range nodes {
			out = append(out, FlatSymbol{Symbol: node.Symbol, Depth: depth})
			visit(node.Children, depth+1)
		}
	}
	visit(nodes, 0)
	return out
}
