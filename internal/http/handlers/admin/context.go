package admin

import (
	handlershared "github.com/aurelia-jewelry/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入的上下文键
const (
	ContextKeyAdminID  = "admin_id"
	ContextKeyUsername = "username"
	ContextKeyRole     = "admin_role"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, ContextKeyAdminID)
}
