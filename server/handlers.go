package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wellmind/authcore/auth"
	"github.com/wellmind/authcore/errors"
	"github.com/wellmind/authcore/logger"
	"github.com/wellmind/authcore/server/middleware"
	"github.com/wellmind/authcore/store"
	"github.com/wellmind/authcore/validation"
	"github.com/wellmind/authcore/version"
)

// AuthHandler exposes the auth service over /api/auth.
type AuthHandler struct {
	svc *auth.Service
	log *logger.Logger
}

// NewAuthHandler creates the handler around an auth service.
func NewAuthHandler(svc *auth.Service, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		svc: svc,
		log: log.WithComponent("http"),
	}
}

// RegisterRoutes mounts all routes on the engine: the public auth
// endpoints, the session-protected ones, and the admin-only account
// management group.
func (h *AuthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/", h.index)
	r.GET("/health", h.health)
	r.GET("/api/health", h.health)

	grp := r.Group("/api/auth")
	grp.POST("/register", h.register)
	grp.POST("/login", h.login)
	grp.POST("/forgot-password", h.forgotPassword)
	grp.POST("/reset-password", h.resetPassword)

	authed := grp.Group("", middleware.Auth(h.svc))
	authed.GET("/verify", h.verify)
	authed.POST("/logout", h.logout)
	authed.PUT("/profile", h.updateProfile)

	admin := authed.Group("", middleware.RequireRole(validation.RoleAdmin))
	admin.GET("/users", h.listUsers)
	admin.DELETE("/users/:id", h.deleteUser)
}

// bindJSON decodes the request body and runs struct-tag validation on the
// result.
func bindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return errors.Validation("Request body must be valid JSON")
	}
	return validation.Validate(req)
}

// registerRequest carries no validate tags: registration field checks and
// their fixed-order messages belong to the credential policy in the core.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		RespondWithError(c, err)
		return
	}

	sess, err := h.svc.Register(c.Request.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	Respond(c, http.StatusCreated, Response{
		Message: "User registered successfully",
		Token:   sess.Token,
		User:    sess.Account,
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		RespondWithError(c, err)
		return
	}

	sess, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	Respond(c, http.StatusOK, Response{
		Message: "Login successful",
		Token:   sess.Token,
		User:    sess.Account,
	})
}

func (h *AuthHandler) verify(c *gin.Context) {
	Respond(c, http.StatusOK, Response{
		User: middleware.AccountFrom(c),
	})
}

// logout acknowledges the request; tokens are stateless and simply expire.
// The client is expected to discard its copy.
func (h *AuthHandler) logout(c *gin.Context) {
	Respond(c, http.StatusOK, Response{
		Message: "Logout successful",
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

func (h *AuthHandler) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		RespondWithError(c, err)
		return
	}

	msg, err := h.svc.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	Respond(c, http.StatusOK, Response{Message: msg})
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

func (h *AuthHandler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		RespondWithError(c, err)
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		RespondWithError(c, err)
		return
	}
	Respond(c, http.StatusOK, Response{Message: "Password has been reset"})
}

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

// updateProfile lets a session change its own name or email. Role changes
// are not exposed here. Field values are validated by the core against the
// same policy as registration.
func (h *AuthHandler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		RespondWithError(c, err)
		return
	}

	account := middleware.AccountFrom(c)
	info, err := h.svc.UpdateAccount(c.Request.Context(), account.ID, store.AccountPatch{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		RespondWithError(c, err)
		return
	}
	Respond(c, http.StatusOK, Response{
		Message: "Profile updated successfully",
		User:    info,
	})
}

func (h *AuthHandler) listUsers(c *gin.Context) {
	infos, err := h.svc.ListAccounts(c.Request.Context())
	if err != nil {
		RespondWithError(c, err)
		return
	}
	Respond(c, http.StatusOK, Response{Users: infos})
}

func (h *AuthHandler) deleteUser(c *gin.Context) {
	id := c.Param("id")

	// Admins cannot delete their own account through this endpoint.
	if account := middleware.AccountFrom(c); account != nil && account.ID == id {
		RespondWithError(c, errors.Forbidden("You cannot delete your own account."))
		return
	}

	if err := h.svc.DeleteAccount(c.Request.Context(), id); err != nil {
		RespondWithError(c, err)
		return
	}
	Respond(c, http.StatusOK, Response{Message: "User deleted successfully"})
}

func (h *AuthHandler) index(c *gin.Context) {
	Respond(c, http.StatusOK, Response{
		Message: "Mental Wellness Auth API",
	})
}

func (h *AuthHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "authcore",
		"version": version.Get(),
	})
}
