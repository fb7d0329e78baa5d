package buildconfig

import (
	"fmt"
	"sort"
)

// Cache kinds understood by the shipped plugins.
const (
	CacheBundler     = "bundler"
	CacheCocoapods   = "cocoapods"
	CacheComposer    = "composer"
	CacheDirectories = "directories"
)

// CacheSettings is the normalized form of the cache key.
//
// The key accepts a single kind ("cache: bundler"), a list of kinds, or a
// mapping with per-kind booleans, an "enabled" master switch and a
// "directories" list.
type CacheSettings struct {
	Enabled     bool
	Kinds       map[string]bool
	Directories []string
}

// Cache returns the normalized cache settings.
func (c *Config) Cache() CacheSettings {
	s := CacheSettings{Enabled: true, Kinds: map[string]bool{}}

	switch v := c.data[KeyCache].(type) {
	case nil:
	case bool:
		s.Enabled = v
	case string:
		s.Kinds[v] = true
	case []any:
		for _, item := range v {
			if kind, ok := item.(string); ok {
				s.Kinds[kind] = true
			}
		}
	case map[string]any:
		for key, value := range v {
			switch key {
			case "enabled":
				if b, ok := value.(bool); ok {
					s.Enabled = b
				}
			case "targets":
				for _, kind := range stringList(value) {
					s.Kinds[kind] = true
				}
			case CacheDirectories:
				s.Directories = stringList(value)
			default:
				if b, ok := value.(bool); ok {
					s.Kinds[key] = b
				}
			}
		}
	}
	return s
}

// CacheEnabled reports whether caching of kind is requested.
func (c *Config) CacheEnabled(kind string) bool {
	s := c.Cache()
	if !s.Enabled {
		return false
	}
	if kind == CacheDirectories {
		return len(s.Directories) > 0
	}
	return s.Kinds[kind]
}

// EnabledKinds returns the requested cache kinds in sorted order.
func (s CacheSettings) EnabledKinds() []string {
	if !s.Enabled {
		return nil
	}
	var kinds []string
	for k, on := range s.Kinds {
		if on {
			kinds = append(kinds, k)
		}
	}
	sort.Strings(kinds)
	return kinds
}

func (s CacheSettings) String() string {
	return fmt.Sprintf("enabled=%t kinds=%v directories=%v", s.Enabled, s.EnabledKinds(), s.Directories)
}
