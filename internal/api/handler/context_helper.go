package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"nesttask/backend/internal/api/middleware"
	"nesttask/backend/internal/service"
	"nesttask/backend/pkg/jwt"
	"nesttask/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.ContextUserID)
	if s == "" {
		response.Unauthorized(c, response.CodeUnauthorized, "not authenticated")
		return "", false
	}
	return s, true
}

// authContext 由 JWT 中间件注入的身份构造 AuthContext
// 未认证时 Role 为空，交由 Service 层的权限检查处理
func authContext(c *gin.Context) service.AuthContext {
	return service.AuthContext{
		UserID:    c.GetString(middleware.ContextUserID),
		Role:      c.GetString(middleware.ContextRole),
		SectionID: c.GetString(middleware.ContextSectionID),
	}
}

// currentClaims 当前 Access Token 的 claims，不存在时返回 nil
func currentClaims(c *gin.Context) *jwt.Claims {
	v, ok := c.Get(middleware.ContextClaims)
	if !ok {
		return nil
	}
	claims, _ := v.(*jwt.Claims)
	return claims
}

// writePermissionError 权限检查失败时写入 403 并返回 true
func writePermissionError(c *gin.Context, err error) bool {
	var pe *service.PermissionDeniedError
	if errors.As(err, &pe) {
		response.Forbidden(c, response.CodeForbidden, pe.Error())
		return true
	}
	return false
}
