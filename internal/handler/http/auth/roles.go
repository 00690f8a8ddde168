package auth

import (
	"slices"
	"strings"
)

// Roles carried in the "role" claim.
const (
	// RoleAdmin may call every route, including DELETE /admin/state.
	RoleAdmin = "admin"
	// RoleLibrarian may add books and record checkouts and returns.
	RoleLibrarian = "librarian"
)

// Permission lists what a role may do. Paths ending in "/*" match the
// prefix and everything below it.
type Permission struct {
	AllowedMethods []string
	AllowedPaths   []string
}

var RolePermissions = map[string]Permission{
	RoleAdmin: {
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "PATCH"},
		AllowedPaths:   []string{"/*"},
	},
	RoleLibrarian: {
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedPaths:   []string{"/books/*", "/checkouts"},
	},
}

// PublicEndpoints never require a token.
var PublicEndpoints = []string{"/health", "/ready", "/live", "/metrics"}

// IsPublicEndpoint matches exactly or with a trailing slash, never subpaths.
func IsPublicEndpoint(path string) bool {
	path = strings.TrimSuffix(path, "/")
	return slices.Contains(PublicEndpoints, path)
}

// KnownRole reports whether role has an entry in RolePermissions.
func KnownRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

// checkRolePermission denies unknown and empty roles.
//
//	checkRolePermission("librarian", "POST", "/checkouts")     // true
//	checkRolePermission("librarian", "DELETE", "/admin/state") // false
func checkRolePermission(role, method, path string) bool {
	perm, ok := RolePermissions[role]
	if !ok {
		return false
	}
	if !slices.Contains(perm.AllowedMethods, method) {
		return false
	}
	return matchesPathPattern(path, perm.AllowedPaths)
}

func matchesPathPattern(path string, patterns []string) bool {
	for _, pattern := range patterns {
		if pattern == "/*" {
			return true
		}
		if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
			continue
		}
		if path == pattern {
			return true
		}
	}
	return false
}
