package rbac

import "github.com/otolor/clinic-client/models"

// DefaultPolicy is the shipped admin-console table. It is the single source
// of truth for client-side RBAC.
func DefaultPolicy() *Policy {
	base := "/admins-otolor"
	all := []string{models.RoleUser, models.RoleDoctor, models.RoleAdmin, models.RoleSuperAdmin}
	staff := []string{models.RoleDoctor, models.RoleAdmin, models.RoleSuperAdmin}
	admins := []string{models.RoleAdmin, models.RoleSuperAdmin}
	super := []string{models.RoleSuperAdmin}

	return &Policy{
		AdminBasePath:  base,
		AdminLoginPath: base + "/login",
		RoleMenus: map[string][]string{
			models.RoleSuperAdmin: {"dashboard", "doctors", "services", "appointments", "blogs", "users", "roles", "settings"},
			models.RoleAdmin:      {"dashboard", "doctors", "services", "appointments", "blogs"},
			models.RoleDoctor:     {"dashboard", "profile", "services", "appointments", "blogs"},
			models.RoleUser:       {"dashboard", "profile"},
		},
		MenuItems: []MenuItem{
			{Key: "dashboard", Path: base, RequiredRoles: all},
			{Key: "profile", Path: base + "/profile", RequiredRoles: all},
			{Key: "doctors", Path: base + "/doctors", RequiredRoles: admins, RequiredPermissions: []string{models.PermDoctorsRead}},
			{Key: "services", Path: base + "/services", RequiredRoles: staff, RequiredPermissions: []string{models.PermServicesRead}},
			{Key: "appointments", Path: base + "/appointments", RequiredRoles: staff, RequiredPermissions: []string{models.PermAppointmentsRead}},
			{Key: "blogs", Path: base + "/blogs", RequiredRoles: staff},
			{Key: "users", Path: base + "/users", RequiredRoles: super, RequiredPermissions: []string{models.PermUsersManage}},
			{Key: "roles", Path: base + "/roles", RequiredRoles: super, RequiredPermissions: []string{models.PermUsersManage}},
			{Key: "settings", Path: base + "/settings", RequiredRoles: super},
		},
		Routes: []RouteRule{
			{Pattern: base, Roles: all},
			{Pattern: base + "/profile", Roles: all},
			{Pattern: base + "/doctors", Roles: admins},
			{Pattern: base + "/doctors/create", Roles: admins},
			{Pattern: base + "/doctors/:id/edit", Roles: admins},
			{Pattern: base + "/services", Roles: staff},
			{Pattern: base + "/appointments", Roles: staff},
			{Pattern: base + "/blogs", Roles: staff},
			{Pattern: base + "/users", Roles: super},
			{Pattern: base + "/roles", Roles: super},
			{Pattern: base + "/settings", Roles: super},
		},
	}
}
