// Package handlers contains the gin HTTP handlers for the REST API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veriflowhq/veriflow/pkg/errors"
)

// errorBody is the JSON error envelope returned on every failure.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// respondError maps an application error onto its HTTP status and writes
// the error envelope.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatus(code)

	message := err.Error()
	if appErr, ok := err.(*errors.AppError); ok {
		message = appErr.Message
	}

	c.AbortWithStatusJSON(status, errorResponse{
		Error: errorBody{Code: string(code), Message: message},
	})
}

// respondBadRequest rejects malformed input with a COMMON_002 envelope.
func respondBadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Error: errorBody{Code: string(errors.CodeBadRequest), Message: message},
	})
}
