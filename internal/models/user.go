package models

import (
	"time"

	"gorm.io/datatypes"
)

// Role constants recognised by the platform.
const (
	RoleStudent    = "student"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Capabilities guarding the admin surface. Students may carry individual
// grants (e.g. a teaching assistant with submissions:review).
const (
	PermManageProjects     = "projects:manage"
	PermReviewSubmissions  = "submissions:review"
	PermRecomputeStandings = "leaderboard:recompute"
	PermManageChallenges   = "challenges:manage"
)

// RolePermissions maps each role to its derived capabilities.
var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermManageProjects,
		PermReviewSubmissions,
		PermRecomputeStandings,
		PermManageChallenges,
	},
}

// User is the minimal identity record this core operates on. Full profile
// management lives with the identity provider.
type User struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	Name        string                      `gorm:"size:255;not null" json:"name"`
	Email       string                      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role        string                      `gorm:"size:32;not null;default:student" json:"role"`
	ClassID     *uint                       `json:"class_id"`
	Permissions datatypes.JSONSlice[string] `json:"permissions"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// IsSuperAdmin reports whether the user bypasses all permission checks.
func (u User) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// HasPermission resolves a capability with explicit priority: super-admin
// bypass, direct user permission, then the legacy role string.
func (u User) HasPermission(permission string, rolePermissions map[string][]string) bool {
	if u.IsSuperAdmin() {
		return true
	}
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	for _, p := range rolePermissions[u.Role] {
		if p == permission {
			return true
		}
	}
	// Legacy deployments carry no permission tables; admins keep full access.
	return u.Role == RoleAdmin && len(rolePermissions) == 0 && len(u.Permissions) == 0
}
