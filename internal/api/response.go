package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobboard/internal/api/middleware"
	"jobboard/internal/errcode"
)

// errorBody 是所有 JSON 错误响应的统一结构。
type errorBody struct {
	Error  string            `json:"error"`
	Code   int               `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

func Error(c *gin.Context, status int, code int, msg string) {
	c.JSON(status, errorBody{Error: msg, Code: code})
}

func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "unauthorized", Code: errcode.Unauthorized})
}

func BadRequest(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, errcode.Validation, msg)
}
func NotFound(c *gin.Context, msg string) { Error(c, http.StatusNotFound, errcode.ResourceMissing, msg) }
func Internal(c *gin.Context) {
	Error(c, http.StatusInternalServerError, errcode.SystemError, "internal error")
}

// respondError 把服务层错误映射为 HTTP 状态码；存储错误只记录日志，不向客户端暴露细节。
func respondError(c *gin.Context, err error) {
	switch code := errcode.Code(err); code {
	case errcode.Validation:
		var validationErr *errcode.ValidationError
		errors.As(err, &validationErr)
		c.JSON(http.StatusBadRequest, errorBody{
			Error:  "validation failed",
			Code:   code,
			Fields: validationErr.Fields,
		})
	case errcode.InvalidCredentials:
		Error(c, http.StatusBadRequest, code, errcode.ErrInvalidCredentials.Error())
	case errcode.ResourceMissing:
		NotFound(c, err.Error())
	case errcode.Unauthorized:
		AbortUnauthorized(c)
	case errcode.Conflict:
		Error(c, http.StatusConflict, code, err.Error())
	default:
		middleware.LoggerFromContext(c).Error("request failed", slog.Any("error", err))
		Internal(c)
	}
}

// bindJSON 解析请求体；失败时直接写 400 并返回 false。
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		BadRequest(c, "invalid request body")
		return false
	}
	return true
}

// idParam 解析路径参数 :id；非正整数时写 400 并返回 false。
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}
