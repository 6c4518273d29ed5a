// Package store provides the scoped key-value persistence behind the comparison set.
package store

import (
	"fmt"
	"regexp"

	"github.com/evora/catalog/internal/domain"
)

// Config selects and configures a store backend
type Config struct {
	Type  string // "file", "sqlite" or "memory"
	Path  string // directory for file, database file for sqlite
	Scope string // isolates stores sharing one path, e.g. the storefront origin
}

var unsafeScopeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeName makes a scope or key safe to use as a path element
func sanitizeName(s string) string {
	s = unsafeScopeChars.ReplaceAllString(s, "_")
	if s == "" || s == "." || s == ".." {
		return "default"
	}
	return s
}

// New opens the store backend named by cfg.Type
func New(cfg Config) (domain.KeyValueStore, error) {
	switch cfg.Type {
	case "file":
		return NewFileStore(cfg.Path, cfg.Scope)
	case "sqlite":
		return NewSQLiteStore(cfg.Path, cfg.Scope)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}
