package storage

import (
	"fmt"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/codemunch/internal/parser"
)

// symbolCache keeps recently loaded symbol lists in memory so repeated
// outline and search calls don't re-read the whole symbols table.
type symbolCache struct {
	cache otter.Cache[string, []parser.Symbol]
}

const symbolCacheCapacity = 128

func newSymbolCache() (*symbolCache, error) {
	cache, err := otter.MustBuilder[string, []parser.Symbol](symbolCacheCapacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build symbol cache: %w", err)
	}
	return &symbolCache{cache: cache}, nil
}

func (c *symbolCache) get(key string) ([]parser.Symbol, bool) {
	return c.cache.Get(key)
}

func (c *symbolCache) put(key string, symbols []parser.Symbol) {
	c.cache.Set(key, symbols)
}

func (c *symbolCache) invalidate(key string) {
	c.cache.Delete(key)
}

func (c *symbolCache) close() {
	c.cache.Close()
}
