// Package middleware provides the Gin middleware stack for the HTTP
// surface: panic recovery, request IDs, CORS, request logging, and bearer
// token authentication backed by the auth service.
package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/wellmind/authcore/errors"
)

// Context keys set by this package.
const (
	// ContextAccount holds the *auth.AccountInfo of the verified session.
	ContextAccount = "account"
	// ContextRequestID holds the request id assigned by RequestID.
	ContextRequestID = "request_id"
)

// abort terminates the request with the error's HTTP status and envelope.
func abort(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.Internal(err)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
