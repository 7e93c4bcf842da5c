package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"schedule-board/backend/pkg/jwt"
	"schedule-board/backend/pkg/response"
)

// 上下文键
const (
	ContextUserID   = "user_id"
	ContextRole     = "role"
	ContextTokenJTI = "token_jti"
)

// RevocationChecker Token 吊销名单
type RevocationChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token
// revoked 为 nil 时不检查吊销名单；查询出错时降级放行
func JWTAuth(jwtMgr *jwt.Manager, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, "缺少认证头")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, "认证头格式无效")
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				response.AbortError(c, http.StatusUnauthorized, response.CodeTokenExpired, "Token 已过期")
				return
			}
			response.AbortError(c, http.StatusUnauthorized, response.CodeUnauthorized, "Token 无效")
			return
		}

		if revoked != nil && claims.ID != "" {
			if hit, err := revoked.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && hit {
				response.AbortError(c, http.StatusUnauthorized, response.CodeTokenRevoked, "Token 已注销")
				return
			}
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Set(ContextTokenJTI, claims.ID)

		c.Next()
	}
}
