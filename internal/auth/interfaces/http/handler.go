package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/storefront/internal/auth/application"
	"github.com/wyfcoding/storefront/internal/auth/domain"
	userdomain "github.com/wyfcoding/storefront/internal/user/domain"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// Handler 认证 REST 接口
type Handler struct {
	svc *application.AuthService
}

// NewHandler 创建认证处理器
func NewHandler(svc *application.AuthService) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/v1/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)

	authed := g.Group("", Authenticate(h.svc, WriteError), RequireAuth(WriteError))
	authed.GET("/me", h.Me)
	authed.POST("/logout", h.Logout)
}

type userResponse struct {
	ID      uint   `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Role    string `json:"role"`
}

func toUserResponse(u *userdomain.User) userResponse {
	return userResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Phone:   u.Phone,
		Address: u.Address,
		Role:    string(u.Role),
	}
}

func authResponse(res *application.AuthResult) gin.H {
	return gin.H{
		"token":      res.Token,
		"type":       "Bearer",
		"expires_at": res.ExpiresAt,
		"user":       toUserResponse(res.User),
	}
}

// Register 处理注册
func (h *Handler) Register(c *gin.Context) {
	var req application.RegisterCommand
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, errorx.Validation("invalid request body: %v", err))
		return
	}
	res, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, authResponse(res))
}

// Login 处理登录
func (h *Handler) Login(c *gin.Context) {
	var req application.LoginCommand
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, errorx.Validation("invalid request body: %v", err))
		return
	}
	res, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, authResponse(res))
}

// Me 返回当前用户
func (h *Handler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	user, err := h.svc.Me(ctx, domain.IdentityFrom(ctx))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

// Logout 注销当前令牌
func (h *Handler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.svc.Logout(ctx, domain.IdentityFrom(ctx)); err != nil {
		WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// WriteError 按错误类别输出 JSON 错误
func WriteError(c *gin.Context, err error) {
	kind := errorx.KindOf(err)
	if kind == errorx.KindInternal {
		logger.Error(c.Request.Context(), "Request failed", "error", err)
	}
	c.AbortWithStatusJSON(errorx.HTTPStatus(err), gin.H{
		"error": errorx.Public(err).Error(),
		"code":  string(kind),
	})
}
