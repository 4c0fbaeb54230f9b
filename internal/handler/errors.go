package handler

import (
	"net/http"

	"precast-erp/internal/apperror"
	"precast-erp/internal/logger"
	"precast-erp/pkg/response"

	"github.com/gin-gonic/gin"
)

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindInvalidState:
		return http.StatusConflict
	case apperror.KindBusinessRule, apperror.KindReferentialIntegrity:
		return http.StatusUnprocessableEntity
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err in the response envelope. Errors outside the
// domain taxonomy are logged and hidden behind a generic message.
func respondError(c *gin.Context, funcName string, err error) {
	status := statusFor(apperror.KindOf(err))
	if status == http.StatusInternalServerError {
		logger.LogError("handler", funcName, c.Request.Method+" "+c.FullPath(), nil, err)
		c.JSON(status, response.Error(status, "Internal server error"))
		return
	}
	c.JSON(status, response.ErrorWithCode(status, apperror.CodeOf(err), err.Error()))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, msg))
}
