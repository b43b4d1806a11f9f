package admin

import (
	"errors"

	"github.com/aurelia-jewelry/internal/http/response"
	"github.com/aurelia-jewelry/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "username and password are required", nil)
		return
	}

	result, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, response.CodeUnauthorized, "invalid username or password", nil)
			return
		}
		respondError(c, response.CodeInternal, "login failed", err)
		return
	}
	response.Success(c, gin.H{
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
		"user": gin.H{
			"id":       result.Admin.ID,
			"username": result.Admin.Username,
			"role":     result.Admin.Role,
		},
	})
}

// GetAdminMe 当前管理员信息与权限
func (h *Handler) GetAdminMe(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}
	admin, err := h.AuthService.GetAdmin(adminID)
	if err != nil {
		if errors.Is(err, service.ErrAdminNotFound) {
			respondError(c, response.CodeUnauthorized, "unauthorized", nil)
			return
		}
		respondError(c, response.CodeInternal, "admin fetch failed", err)
		return
	}
	policies, err := h.AuthzService.GetRolePolicies(admin.Role)
	if err != nil {
		respondError(c, response.CodeInternal, "permission fetch failed", err)
		return
	}
	response.Success(c, gin.H{
		"id":            admin.ID,
		"username":      admin.Username,
		"role":          admin.Role,
		"last_login_at": admin.LastLoginAt,
		"policies":      policies,
	})
}
