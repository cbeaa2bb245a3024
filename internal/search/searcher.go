package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/gobwas/glob"

	"github.com/mvp-joe/codemunch/internal/parser"
)

// Searcher defines the interface for full-text symbol search.
type Searcher interface {
	// Search ranks indexed symbols against queryStr. Options may be
	// nil (defaults will be applied).
	Search(ctx context.Context, queryStr string, options *Options) ([]Result, error)

	// Update replaces the indexed symbols for a repo key. Passing an
	// empty slice removes the repo from the index.
	Update(ctx context.Context, repoKey string, symbols []parser.Symbol) error

	// Close releases resources held by the searcher.
	Close() error
}

// Options narrows a search.
type Options struct {
	Repo  string // exact repo key filter ("owner/name")
	Kind  string // exact symbol kind filter ("function", "class", ...)
	File  string // glob matched against symbol file paths
	Limit int    // max results, defaults to 15
}

// Result is a single ranked hit.
type Result struct {
	Symbol parser.Symbol `json:"symbol"`
	Score  float64       `json:"score"`
}

const (
	defaultLimit = 15
	maxLimit     = 100
)

// symbolSearcher implements Searcher using an in-memory bleve index.
type symbolSearcher struct {
	index   bleve.Index
	mu      sync.RWMutex // protects index and symbols during updates
	symbols map[string]parser.Symbol
	byRepo  map[string][]string // repo key -> doc IDs, for replacement
}

// NewSearcher creates a Searcher backed by an in-memory bleve index.
func NewSearcher() (Searcher, error) {
	index, err := bleve.NewMemOnly(buildSymbolMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &symbolSearcher{
		index:   index,
		symbols: map[string]parser.Symbol{},
		byRepo:  map[string][]string{},
	}, nil
}

// buildSymbolMapping creates the index mapping for symbol documents.
// Name fields use the keyword analyzer so identifiers like ServeHTTP
// match whole; prose fields use the standard analyzer.
func buildSymbolMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	nameMapping := bleve.NewTextFieldMapping()
	nameMapping.Analyzer = "standard"
	nameMapping.Store = false
	nameMapping.Index = true

	kindMapping := bleve.NewTextFieldMapping()
	kindMapping.Analyzer = "keyword"
	kindMapping.Store = false
	kindMapping.Index = true

	proseMapping := bleve.NewTextFieldMapping()
	proseMapping.Analyzer = "standard"
	proseMapping.Store = false
	proseMapping.Index = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("name", nameMapping)
	docMapping.AddFieldMappingsAt("qualified_name", nameMapping)
	docMapping.AddFieldMappingsAt("repo", kindMapping)
	docMapping.AddFieldMappingsAt("kind", kindMapping)
	docMapping.AddFieldMappingsAt("signature", proseMapping)
	docMapping.AddFieldMappingsAt("docstring", proseMapping)
	docMapping.AddFieldMappingsAt("summary", proseMapping)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

func symbolToDocument(repoKey string, sym parser.Symbol) map[string]interface{} {
	return map[string]interface{}{
		"repo":           repoKey,
		"name":           sym.Name,
		"qualified_name": sym.QualifiedName,
		"kind":           sym.Kind,
		"signature":      sym.Signature,
		"docstring":      sym.Docstring,
		"summary":        sym.Summary,
	}
}

// docID namespaces symbol IDs by repo so two repos can index the same
// file path without colliding.
func docID(repoKey, symbolID string) string {
	return repoKey + "\x00" + symbolID
}

// Search runs a boosted match query across symbol fields, filtered by
// kind natively and by file glob as a post-filter.
func (s *symbolSearcher) Search(ctx context.Context, queryStr string, options *Options) ([]Result, error) {
	if options == nil {
		options = &Options{}
	}

	limit := options.Limit
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	var fileGlob glob.Glob
	if options.File != "" {
		var err error
		fileGlob, err = glob.Compile(options.File, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid file pattern %q: %w", options.File, err)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Name matches outrank qualified-name matches, which outrank
	// matches found only in signatures or documentation.
	nameQuery := bleve.NewMatchQuery(queryStr)
	nameQuery.SetField("name")
	nameQuery.SetBoost(3.0)

	qualifiedQuery := bleve.NewMatchQuery(queryStr)
	qualifiedQuery.SetField("qualified_name")
	qualifiedQuery.SetBoost(2.0)

	signatureQuery := bleve.NewMatchQuery(queryStr)
	signatureQuery.SetField("signature")

	docstringQuery := bleve.NewMatchQuery(queryStr)
	docstringQuery.SetField("docstring")

	summaryQuery := bleve.NewMatchQuery(queryStr)
	summaryQuery.SetField("summary")

	textQuery := bleve.NewDisjunctionQuery(
		nameQuery, qualifiedQuery, signatureQuery, docstringQuery, summaryQuery)

	filters := []query.Query{textQuery}
	if options.Repo != "" {
		repoQuery := bleve.NewTermQuery(options.Repo)
		repoQuery.SetField("repo")
		filters = append(filters, repoQuery)
	}
	if options.Kind != "" {
		kindQuery := bleve.NewTermQuery(options.Kind)
		kindQuery.SetField("kind")
		filters = append(filters, kindQuery)
	}
	var finalQuery query.Query = textQuery
	if len(filters) > 1 {
		finalQuery = bleve.NewConjunctionQuery(filters...)
	}

	// Over-fetch when a glob post-filter will discard hits.
	fetch := limit
	if fileGlob != nil {
		fetch = limit * 4
		if fetch > maxLimit*4 {
			fetch = maxLimit * 4
		}
	}

	searchRequest := bleve.NewSearchRequestOptions(finalQuery, fetch, 0, false)
	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	results := make([]Result, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		sym, ok := s.symbols[hit.ID]
		if !ok {
			continue
		}
		if fileGlob != nil && !fileGlob.Match(sym.File) {
			continue
		}
		results = append(results, Result{Symbol: sym, Score: hit.Score})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// Update replaces a repo's documents with the given symbol set.
func (s *symbolSearcher) Update(ctx context.Context, repoKey string, symbols []parser.Symbol) error {
	const batchSize = 1000

	s.mu.Lock()
	defer s.mu.Unlock()

	// Deletes go into the batch first: a batch keeps one operation per
	// doc ID, so re-indexed symbols must overwrite their delete.
	batch := s.index.NewBatch()
	for _, id := range s.byRepo[repoKey] {
		batch.Delete(id)
		delete(s.symbols, id)
	}

	ids := make([]string, 0, len(symbols))
	for i, sym := range symbols {
		if i%batchSize == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}
		id := docID(repoKey, sym.ID)
		if err := batch.Index(id, symbolToDocument(repoKey, sym)); err != nil {
			return fmt.Errorf("failed to add symbol %s to batch: %w", sym.ID, err)
		}
		ids = append(ids, id)
	}

	if err := s.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}

	for i, sym := range symbols {
		s.symbols[ids[i]] = sym
	}
	if len(ids) == 0 {
		delete(s.byRepo, repoKey)
	} else {
		s.byRepo[repoKey] = ids
	}
	return nil
}

// Close releases resources held by the searcher.
func (s *symbolSearcher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		return s.index.Close()
	}
	return nil
}
