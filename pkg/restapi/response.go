package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"separation-service/pkg/errno"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(ctx *gin.Context, data interface{}) {
	ctx.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Failed 失败响应，按错误类型映射HTTP状态码和业务码
func Failed(ctx *gin.Context, err error) {
	code := errno.ErrUnknown.Code
	message := err.Error()

	var en *errno.Errno
	var biz *errno.BizError
	switch {
	case errors.As(err, &biz):
		code = biz.Errno.Code
		message = biz.Error()
	case errors.As(err, &en):
		code = en.Code
		message = en.Message
	}

	ctx.JSON(httpStatus(code), Response{
		Code:    code,
		Message: message,
	})
}

// httpStatus 业务码映射HTTP状态码，2xxxx业务错误统一返回200由前端判code
func httpStatus(code int) int {
	switch {
	case code >= 200 && code < 600:
		return code
	default:
		return http.StatusOK
	}
}
