// Package response renders protocol success and error bodies onto a gin
// context. Success responses are the bare resource JSON; only errors carry
// an envelope.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"acp-checkout-gateway/pkg/apperror"
)

// errorBody is the wire shape of a single error.
type errorBody struct {
	Type    apperror.Type `json:"type"`
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Param   string        `json:"param,omitempty"`
}

// envelope wraps errorBody under "error", matching the protocol's error envelope.
type envelope struct {
	Error errorBody `json:"error"`
}

// OK sends a 200 response with the bare resource as the body.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends a 201 response with the bare resource as the body.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// Error renders err as the protocol error envelope. Any error that is not
// an *apperror.AppError is rendered as an opaque 500 api_error — internals
// are never leaked.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, envelope{Error: errorBody{
			Type:    appErr.Type,
			Code:    appErr.Code,
			Message: appErr.Message,
			Param:   appErr.Param,
		}})
		return
	}
	internal := apperror.InternalError(err)
	c.JSON(internal.HTTPStatus, envelope{Error: errorBody{
		Type:    internal.Type,
		Code:    internal.Code,
		Message: internal.Message,
	}})
}
