package http

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/auth/domain"
	"github.com/wyfcoding/storefront/pkg/errorx"
)

// Authenticator 令牌校验
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Identity, error)
}

// ErrorWriter 输出错误响应
type ErrorWriter func(c *gin.Context, err error)

// BearerToken 解析 Authorization 头，未携带时返回 ok=false
func BearerToken(header string) (token string, ok bool, err error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false, nil
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", true, errorx.Unauthenticated("malformed authorization header")
	}
	return strings.TrimSpace(token), true, nil
}

// Authenticate 解析 Bearer 令牌并把身份写入请求 context；未携带令牌时按匿名放行，令牌无效时拒绝
func Authenticate(auth Authenticator, onError ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok, err := BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			onError(c, err)
			return
		}
		if !ok {
			c.Next()
			return
		}

		id, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			onError(c, err)
			return
		}
		c.Request = c.Request.WithContext(domain.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// RequireAuth 要求请求已认证
func RequireAuth(onError ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := domain.RequireUser(c.Request.Context()); err != nil {
			onError(c, err)
			return
		}
		c.Next()
	}
}
