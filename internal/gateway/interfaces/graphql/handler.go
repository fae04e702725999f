package graphql

import (
	"net/http"

	"github.com/gin-gonic/gin"
	graphql "github.com/graph-gophers/graphql-go"
	gqlerrors "github.com/graph-gophers/graphql-go/errors"
	authhttp "github.com/wyfcoding/storefront/internal/auth/interfaces/http"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// Handler GraphQL HTTP 入口
type Handler struct {
	schema *graphql.Schema
}

// NewHandler 创建 GraphQL 处理器
func NewHandler(schema *graphql.Schema) *Handler {
	return &Handler{schema: schema}
}

// RegisterRoutes 注册 /graphql；携带令牌时先完成认证，匿名请求直接放行
func (h *Handler) RegisterRoutes(r gin.IRouter, auth authhttp.Authenticator) {
	r.POST("/graphql", authhttp.Authenticate(auth, WriteError), h.Serve)
}

type request struct {
	Query         string         `json:"query" binding:"required"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// Serve 执行一次 GraphQL 请求，业务错误统一以 200 返回并在 extensions.code 中标明类别
func (h *Handler) Serve(c *gin.Context) {
	var req request
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteError(c, errorx.Validation("invalid graphql request: %v", err))
		return
	}

	ctx := c.Request.Context()
	resp := h.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)
	for i, qe := range resp.Errors {
		resp.Errors[i] = present(c, qe)
	}
	c.JSON(http.StatusOK, resp)
}

// present 屏蔽内部错误细节，为每个错误补上类别
func present(c *gin.Context, qe *gqlerrors.QueryError) *gqlerrors.QueryError {
	if qe.ResolverError == nil {
		if qe.Extensions == nil {
			qe.Extensions = map[string]any{"code": string(errorx.KindValidation)}
		}
		return qe
	}

	kind := errorx.KindOf(qe.ResolverError)
	if kind == errorx.KindInternal {
		logger.Error(c.Request.Context(), "GraphQL resolver failed", "path", qe.Path, "error", qe.ResolverError)
	}
	qe.Message = errorx.Public(qe.ResolverError).Error()
	qe.Extensions = map[string]any{"code": string(kind)}
	return qe
}

type errorBody struct {
	Errors []errorEntry `json:"errors"`
}

type errorEntry struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions"`
}

// WriteError 在进入执行前失败时输出 GraphQL 形态的错误
func WriteError(c *gin.Context, err error) {
	kind := errorx.KindOf(err)
	if kind == errorx.KindInternal {
		logger.Error(c.Request.Context(), "GraphQL request rejected", "error", err)
	}
	c.AbortWithStatusJSON(errorx.HTTPStatus(err), errorBody{Errors: []errorEntry{{
		Message:    errorx.Public(err).Error(),
		Extensions: map[string]any{"code": string(kind)},
	}}})
}
