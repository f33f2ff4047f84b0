package response

import (
	"net/http"

	apperrors "NeighborGuard/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response 统一的响应格式
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Created 201 响应
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// Fail 以 400 返回失败
func Fail(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusBadRequest, Response{Code: apperrors.CodeInvalidInput, Message: message, Data: data})
}

// AbortWithError 根据错误码选择 HTTP 状态
func AbortWithError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	msg := apperrors.GetMessage(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, Response{Code: status, Message: msg})
}
