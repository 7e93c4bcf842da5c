package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schedule-board/backend/internal/api/middleware"
	"schedule-board/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.ContextUserID)
	if s == "" {
		response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, "未认证")
		return "", false
	}
	return s, true
}
