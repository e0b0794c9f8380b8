package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wellmind/authcore/auth"
	"github.com/wellmind/authcore/errors"
)

// Auth returns a Gin middleware that validates the Bearer token against the
// auth service and stores the resolved account in the request context. A
// missing or malformed Authorization header fails exactly like an invalid
// token.
func Auth(sessions *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abort(c, errors.InvalidToken())
			return
		}

		info, err := sessions.VerifySession(c.Request.Context(), token)
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(ContextAccount, info)
		c.Next()
	}
}

// RequireRole returns middleware that gates the route to sessions whose
// account holds exactly the given role. Must run after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		info := AccountFrom(c)
		if info == nil {
			abort(c, errors.InvalidToken())
			return
		}
		if info.Role != role {
			abort(c, errors.Forbidden(""))
			return
		}
		c.Next()
	}
}

// AccountFrom returns the verified account stored by Auth, or nil.
func AccountFrom(c *gin.Context) *auth.AccountInfo {
	v, ok := c.Get(ContextAccount)
	if !ok {
		return nil
	}
	info, _ := v.(*auth.AccountInfo)
	return info
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
