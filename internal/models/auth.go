package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles recognised by the RBAC layer.
type UserRole string

const (
	RolePlatformAdmin UserRole = "platform_admin"
	RoleOwner         UserRole = "owner"
	RoleAdmin         UserRole = "admin"
	RoleManager       UserRole = "manager"
	RoleService       UserRole = "service"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID         string   `json:"user_id"`
	OrganizationID string   `json:"organization_id,omitempty"`
	Role           UserRole `json:"role"`
	Email          string   `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// CanAccessOrganization reports whether the caller may act on the given tenant.
func (c *JWTClaims) CanAccessOrganization(orgID string) bool {
	if c == nil {
		return false
	}
	if c.Role == RolePlatformAdmin || c.Role == RoleService {
		return true
	}
	return orgID != "" && c.OrganizationID == orgID
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
