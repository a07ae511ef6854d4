package docblock

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ConstantLookup resolves Identifier::NAME references. typ is the identifier
// after alias expansion.
type ConstantLookup interface {
	Lookup(typ, name string) (any, bool)
}

// ConstantLookupFunc adapts a function to [ConstantLookup].
type ConstantLookupFunc func(typ, name string) (any, bool)

// Lookup implements [ConstantLookup].
func (f ConstantLookupFunc) Lookup(typ, name string) (any, bool) {
	return f(typ, name)
}

// Constants is a [ConstantLookup] backed by a map of identifier to constant
// name to value.
type Constants map[string]map[string]any

// Lookup implements [ConstantLookup].
func (c Constants) Lookup(typ, name string) (any, bool) {
	v, ok := c[typ][name]

	return v, ok
}

// Set adds a constant.
func (c Constants) Set(typ, name string, value any) {
	if c[typ] == nil {
		c[typ] = make(map[string]any)
	}

	c[typ][name] = value
}

// ChainLookup asks each lookup in order and returns the first hit.
type ChainLookup []ConstantLookup

// Lookup implements [ConstantLookup].
func (c ChainLookup) Lookup(typ, name string) (any, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}

		if v, ok := l.Lookup(typ, name); ok {
			return v, true
		}
	}

	return nil, false
}

type cachedConstant struct {
	value any
	found bool
}

// CachedLookup memoises another [ConstantLookup], including misses. It is
// safe for concurrent use.
//
// Create instances with [NewCachedLookup].
type CachedLookup struct {
	next  ConstantLookup
	cache *lru.Cache[string, cachedConstant]
}

// NewCachedLookup wraps next with an LRU cache holding size entries.
func NewCachedLookup(next ConstantLookup, size int) (*CachedLookup, error) {
	cache, err := lru.New[string, cachedConstant](size)
	if err != nil {
		return nil, fmt.Errorf("create constant cache: %w", err)
	}

	return &CachedLookup{next: next, cache: cache}, nil
}

// Lookup implements [ConstantLookup].
func (c *CachedLookup) Lookup(typ, name string) (any, bool) {
	key := typ + "::" + name

	if hit, ok := c.cache.Get(key); ok {
		return hit.value, hit.found
	}

	v, found := c.next.Lookup(typ, name)
	c.cache.Add(key, cachedConstant{value: v, found: found})

	return v, found
}
