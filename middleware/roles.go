package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type RoleMiddleware struct{}

func NewRoleMiddleware() *RoleMiddleware {
	return &RoleMiddleware{}
}

func (r *RoleMiddleware) RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		role := GetRole(c)
		if role == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error_code": "unauthorized",
				"message":    "User role not found",
			})
			c.Abort()
			return
		}

		hasRole := false
		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				hasRole = true
				break
			}
		}

		if !hasRole {
			c.JSON(http.StatusForbidden, gin.H{
				"error_code": "forbidden",
				"message":    "Insufficient permissions",
				"details": gin.H{
					"required_roles": allowedRoles,
					"user_role":      role,
				},
			})
			c.Abort()
			return
		}

		c.Next()
	})
}

func (r *RoleMiddleware) SuperAdminGuard() gin.HandlerFunc {
	return r.RequireRole("superadmin")
}

func (r *RoleMiddleware) AdminGuard() gin.HandlerFunc {
	return r.RequireRole("admin", "superadmin")
}

// RequireWorkspaceAccess restricts workspace-scoped routes: superadmins see
// everything, admins only their own workspace.
func (r *RoleMiddleware) RequireWorkspaceAccess() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		role := GetRole(c)
		if role == "superadmin" {
			c.Next()
			return
		}

		userWorkspaceID := GetWorkspaceID(c)
		if userWorkspaceID == "" {
			c.JSON(http.StatusForbidden, gin.H{
				"error_code": "forbidden",
				"message":    "Workspace ID required for this operation",
			})
			c.Abort()
			return
		}

		requestedWorkspaceID := c.Param("workspace_id")
		if requestedWorkspaceID == "" {
			requestedWorkspaceID = c.Query("workspace_id")
		}

		if requestedWorkspaceID != "" && requestedWorkspaceID != userWorkspaceID {
			c.JSON(http.StatusForbidden, gin.H{
				"error_code": "forbidden",
				"message":    "Access denied to this workspace",
			})
			c.Abort()
			return
		}

		c.Next()
	})
}

func IsSuperAdmin(c *gin.Context) bool {
	return GetRole(c) == "superadmin"
}

// CanAccessWorkspace checks workspace ownership for handler-level guards.
func CanAccessWorkspace(c *gin.Context, targetWorkspaceID string) bool {
	if IsSuperAdmin(c) {
		return true
	}
	return GetWorkspaceID(c) == targetWorkspaceID
}
