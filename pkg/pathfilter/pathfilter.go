// Package pathfilter decides whether a filesystem path should be
// considered for watching or seeding.
//
// A path is rejected when any of its segments starts with the reserved
// prefix (conventionally "."), which excludes hidden files and everything
// below hidden directories.
//
// Example usage:
//
//	f := pathfilter.New(".")
//	f.Accept("notes/a.md")          // true
//	f.Accept(".obsidian/config")    // false
//	f.Accept("notes/.trash/a.md")   // false
package pathfilter

import (
	"path/filepath"
	"strings"
)

// Filter applies the reserved-prefix exclusion rule.
//
// Filter is a pure predicate over the path string: it never touches the
// filesystem. It is safe for concurrent use.
type Filter struct {
	prefix string
}

// New creates a Filter with the given reserved prefix.
//
// An empty prefix falls back to ".".
func New(prefix string) *Filter {
	if prefix == "" {
		prefix = "."
	}
	return &Filter{prefix: prefix}
}

// Accept reports whether the path passes the exclusion rule.
//
// Callers are expected to pass paths relative to the watch root so that a
// hidden root directory does not reject its own subtree. The "." and ".."
// segments are path navigation, not entry names, and are never matched
// against the prefix.
func (f *Filter) Accept(path string) bool {
	cleaned := filepath.ToSlash(filepath.Clean(path))

	for _, segment := range strings.Split(cleaned, "/") {
		if segment == "" || segment == "." || segment == ".." {
			continue
		}
		if strings.HasPrefix(segment, f.prefix) {
			return false
		}
	}

	return true
}

// Prefix returns the reserved prefix this filter rejects.
func (f *Filter) Prefix() string {
	return f.prefix
}
