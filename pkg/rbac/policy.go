// Package rbac is the client-side role/permission policy for the admin
// console. It gates UI only: the backend remains the real authorization
// boundary, and this table can drift from it.
package rbac

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
)

// MenuItem describes one sidebar entry of the admin console.
type MenuItem struct {
	Key                 string   `json:"key"`
	Path                string   `json:"path"`
	RequiredRoles       []string `json:"requiredRoles"`
	RequiredPermissions []string `json:"requiredPermissions,omitempty"`
}

// RouteRule maps a route pattern to the roles allowed on it. Segments
// prefixed with ':' match any single path segment.
type RouteRule struct {
	Pattern string   `json:"pattern"`
	Roles   []string `json:"roles"`
}

// Policy is a static data asset: loaded once at startup, immutable after.
type Policy struct {
	RoleMenus map[string][]string `json:"roleMenus"`
	MenuItems []MenuItem          `json:"menuItems"`
	// Routes is ordered so pattern fallback is deterministic.
	Routes []RouteRule `json:"routes"`

	AdminBasePath  string `json:"adminBasePath"`
	AdminLoginPath string `json:"adminLoginPath"`
}

// Load reads a policy table from a JSON file.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse policy: %w", err)
	}
	if p.AdminBasePath == "" {
		p.AdminBasePath = "/admins-otolor"
	}
	if p.AdminLoginPath == "" {
		p.AdminLoginPath = p.AdminBasePath + "/login"
	}
	return &p, nil
}

// HasMenuAccess reports whether the role may see the menu entry. Unknown or
// absent roles are denied.
func (p *Policy) HasMenuAccess(menuKey, role string) bool {
	if role == "" {
		return false
	}
	return slices.Contains(p.RoleMenus[role], menuKey)
}

// AllowedMenuItems returns the menu keys visible to the role.
func (p *Policy) AllowedMenuItems(role string) []string {
	if role == "" {
		return nil
	}
	return slices.Clone(p.RoleMenus[role])
}

// MenuFor derives the ordered sidebar for a role: the configured item order
// filtered down to the role's allow-list.
func (p *Policy) MenuFor(role string) []MenuItem {
	var out []MenuItem
	for _, item := range p.MenuItems {
		if p.HasMenuAccess(item.Key, role) {
			out = append(out, item)
		}
	}
	return out
}

// CanAccessRoute checks the route table: exact match first, then pattern
// match in table order. A path matching no rule is ALLOWED for any
// authenticated role. That fail-open default mirrors the production table and
// is pinned by tests; do not tighten it without a product decision.
func (p *Policy) CanAccessRoute(path, role string) bool {
	if role == "" {
		return false
	}
	for _, r := range p.Routes {
		if r.Pattern == path {
			return slices.Contains(r.Roles, role)
		}
	}
	for _, r := range p.Routes {
		if matchPattern(r.Pattern, path) {
			return slices.Contains(r.Roles, role)
		}
	}
	return true
}

// DefaultRedirectPath is where a role lands after login.
func (p *Policy) DefaultRedirectPath(role string) string {
	if role == "" {
		return p.AdminLoginPath
	}
	return p.AdminBasePath
}

func matchPattern(pattern, path string) bool {
	if !strings.Contains(pattern, ":") {
		return false
	}
	pp := strings.Split(pattern, "/")
	sp := strings.Split(path, "/")
	if len(pp) != len(sp) {
		return false
	}
	for i := range pp {
		if strings.HasPrefix(pp[i], ":") {
			if sp[i] == "" {
				return false
			}
			continue
		}
		if pp[i] != sp[i] {
			return false
		}
	}
	return true
}
