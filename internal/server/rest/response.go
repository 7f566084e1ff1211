package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes carried in ApiResponse.ErrorCode.
const (
	CodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	CodeAuthFail           = "AUTH_FAIL"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeNotFound           = "NOT_FOUND"
	CodeServerError        = "SERVER_ERROR"
)

// ApiResponse is the envelope of every response body.
type ApiResponse struct {
	Status    int    `json:"status"`
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, ApiResponse{Status: status, Success: true, Message: message, Data: data})
}

func respondError(c *gin.Context, status int, code, message string, data any) {
	c.AbortWithStatusJSON(status, ApiResponse{Status: status, Success: false, Message: message, Data: data, ErrorCode: code})
}

func respondServerError(c *gin.Context) {
	respondError(c, http.StatusInternalServerError, CodeServerError, "internal server error", nil)
}
