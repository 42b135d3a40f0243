package rbac

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otolor/clinic-client/models"
)

func TestHasMenuAccess(t *testing.T) {
	t.Parallel()
	p := DefaultPolicy()

	tests := []struct {
		name    string
		menuKey string
		role    string
		want    bool
	}{
		{"superadmin sees users", "users", models.RoleSuperAdmin, true},
		{"admin does not see users", "users", models.RoleAdmin, false},
		{"doctor sees appointments", "appointments", models.RoleDoctor, true},
		{"patient sees profile", "profile", models.RoleUser, true},
		{"patient does not see doctors", "doctors", models.RoleUser, false},
		{"unknown role denied", "dashboard", "ghost", false},
		{"absent role denied", "dashboard", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.HasMenuAccess(tt.menuKey, tt.role))
		})
	}
}

func TestMenuFor_OrderedAndFiltered(t *testing.T) {
	t.Parallel()
	p := DefaultPolicy()

	var keys []string
	for _, item := range p.MenuFor(models.RoleDoctor) {
		keys = append(keys, item.Key)
	}
	// Configured item order, narrowed to the doctor's allow-list.
	assert.Equal(t, []string{"dashboard", "profile", "services", "appointments", "blogs"}, keys)

	assert.Empty(t, p.MenuFor(""))
	assert.Empty(t, p.MenuFor("ghost"))
}

func TestCanAccessRoute(t *testing.T) {
	t.Parallel()
	p := DefaultPolicy()

	tests := []struct {
		name string
		path string
		role string
		want bool
	}{
		{"dashboard open to patient", "/admins-otolor", models.RoleUser, true},
		{"doctors page closed to doctor", "/admins-otolor/doctors", models.RoleDoctor, false},
		{"doctors page open to admin", "/admins-otolor/doctors", models.RoleAdmin, true},
		{"edit pattern matches id", "/admins-otolor/doctors/abc123/edit", models.RoleAdmin, true},
		{"edit pattern closed to doctor", "/admins-otolor/doctors/abc123/edit", models.RoleDoctor, false},
		{"users page superadmin only", "/admins-otolor/users", models.RoleAdmin, false},
		{"no role denied everywhere", "/admins-otolor", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.CanAccessRoute(tt.path, tt.role))
		})
	}
}

// The production table deliberately allows any authenticated role onto a
// path it has no rule for. This pins the fail-open default so a change to it
// is a conscious decision, not an accident.
func TestCanAccessRoute_UnregisteredPathFailOpen(t *testing.T) {
	t.Parallel()
	p := DefaultPolicy()

	for _, role := range []string{models.RoleUser, models.RoleDoctor, models.RoleAdmin, models.RoleSuperAdmin} {
		assert.True(t, p.CanAccessRoute("/admins-otolor/not-registered-anywhere", role), "role %s", role)
	}
	assert.False(t, p.CanAccessRoute("/admins-otolor/not-registered-anywhere", ""))
}

func TestCanAccessRoute_ExactMatchBeatsPattern(t *testing.T) {
	t.Parallel()

	// The pattern admits doctors, the exact rule for "special" does not.
	p := &Policy{
		Routes: []RouteRule{
			{Pattern: "/a/:id", Roles: []string{models.RoleDoctor, models.RoleAdmin}},
			{Pattern: "/a/special", Roles: []string{models.RoleAdmin}},
		},
	}

	assert.False(t, p.CanAccessRoute("/a/special", models.RoleDoctor))
	assert.True(t, p.CanAccessRoute("/a/special", models.RoleAdmin))
	assert.True(t, p.CanAccessRoute("/a/other", models.RoleDoctor))
}

func TestDefaultRedirectPath(t *testing.T) {
	t.Parallel()
	p := DefaultPolicy()

	assert.Equal(t, "/admins-otolor", p.DefaultRedirectPath(models.RoleDoctor))
	assert.Equal(t, "/admins-otolor/login", p.DefaultRedirectPath(""))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(DefaultPolicy())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy().RoleMenus, loaded.RoleMenus)
	assert.Equal(t, "/admins-otolor", loaded.AdminBasePath)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
