package server

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/wellmind/authcore/errors"
)

// Response is the success envelope. Fields beyond Success are populated
// per-endpoint; the zero values are omitted from the JSON body.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	User    any    `json:"user,omitempty"`
	Users   any    `json:"users,omitempty"`
}

// RespondWithError inspects err: if it is an *apperrors.AppError the status
// and structured body are derived automatically; otherwise a generic 500 is
// sent.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		c.JSON(appErr.HTTPStatus, appErr.ToResponse())
		return
	}
	resp := apperrors.Internal(err)
	c.JSON(resp.HTTPStatus, resp.ToResponse())
}

// Respond sends the given status with a success envelope.
func Respond(c *gin.Context, status int, resp Response) {
	resp.Success = true
	c.JSON(status, resp)
}
