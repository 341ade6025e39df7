package spec

import (
	"regexp"
	"sync"

	"golang.org/x/sync/singleflight"
)

// regexCache is the process-wide, append-only compiled-regex cache from
// spec.md §3/§5: purely functional, read-heavy, safe to share across
// requests. singleflight collapses concurrent first-compiles of the
// same pattern (e.g. many documents sharing a common spec loaded at
// once) the way the teacher's MCP manager collapses concurrent
// reconnect attempts per server name (internal/mcp/manager.go).
type regexCache struct {
	group singleflight.Group
	store sync.Map // pattern string -> *regexp.Regexp
}

var cache regexCache

func (c *regexCache) get(pattern string) (*regexp.Regexp, error) {
	if v, ok := c.store.Load(pattern); ok {
		return v.(*regexp.Regexp), nil
	}

	v, err, _ := c.group.Do(pattern, func() (any, error) {
		if v, ok := c.store.Load(pattern); ok {
			return v.(*regexp.Regexp), nil
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		c.store.Store(pattern, re)
		return re, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*regexp.Regexp), nil
}
