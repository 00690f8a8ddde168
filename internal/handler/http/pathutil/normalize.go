// Package pathutil maps request paths onto route templates for metric and
// span labels.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// Patterns are evaluated in order; /books/load must precede the isbn route.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/books/load$`), Template: "/books/load"},
	{Pattern: regexp.MustCompile(`^/books/[^/]+$`), Template: "/books/:isbn"},
	{Pattern: regexp.MustCompile(`^/admin/checkouts/[^/]+$`), Template: "/admin/checkouts/:isbn"},
}

// NormalizePath converts paths carrying an isbn to their template so
// Prometheus label cardinality stays bounded.
//
//	NormalizePath("/books/123-456-789-0")   // "/books/:isbn"
//	NormalizePath("/books?search=go")       // "/books"
//	NormalizePath("/checkouts/")            // "/checkouts"
//	NormalizePath("/health")                // "/health"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return path
}
