package auth

import (
	"context"
	"time"

	"github.com/wellmind/authcore/errors"
	"github.com/wellmind/authcore/logger"
	"github.com/wellmind/authcore/password"
	"github.com/wellmind/authcore/store"
	"github.com/wellmind/authcore/token"
	"github.com/wellmind/authcore/validation"
)

// ForgotPasswordMessage is returned for every forgot-password request,
// whether or not the account exists.
const ForgotPasswordMessage = "If an account exists with this email, a password reset link has been sent."

// AccountInfo is the sanitized account projection exposed to callers.
type AccountInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session is the result of a successful registration or login.
type Session struct {
	Account AccountInfo `json:"user"`
	Token   string      `json:"token"`
}

// Service orchestrates the authentication use cases. It is stateless
// across requests; all shared state lives in the store and the token
// service's signing configuration.
type Service struct {
	store  store.AccountStore
	hasher password.Hasher
	tokens *token.Service
	log    *logger.Logger
}

// NewService creates the auth orchestrator.
func NewService(accounts store.AccountStore, hasher password.Hasher, tokens *token.Service, log *logger.Logger) *Service {
	return &Service{
		store:  accounts,
		hasher: hasher,
		tokens: tokens,
		log:    log.WithComponent("auth"),
	}
}

// Register creates a new account and issues a token for it. Role defaults
// to student when empty. Validation failures map to 400-equivalent errors
// and duplicate emails to 409-equivalent conflicts.
func (s *Service) Register(ctx context.Context, name, email, pass, role string) (*Session, error) {
	acct, err := s.store.Create(ctx, store.NewAccount{
		Name:     name,
		Email:    email,
		Password: pass,
		Role:     role,
	})
	if err != nil {
		return nil, err
	}

	tok, err := s.tokens.Issue(acct.ID.Hex())
	if err != nil {
		return nil, errors.Internal(err)
	}

	s.log.Info("Account registered", logger.Fields(
		logger.FieldAccountID, acct.ID.Hex(),
		logger.FieldEmail, acct.Email,
		logger.FieldRole, acct.Role,
	))
	return &Session{Account: sanitize(acct), Token: tok}, nil
}

// Login verifies credentials and issues a token. An unknown email and a
// wrong password both return InvalidCredentials.
func (s *Service) Login(ctx context.Context, email, pass string) (*Session, error) {
	if !validation.ValidateEmail(email) {
		return nil, errors.Validation(validation.ReasonInvalidEmail)
	}

	acct, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrCodeNotFound {
			return nil, errors.InvalidCredentials()
		}
		return nil, err
	}

	if err := s.hasher.Verify(pass, acct.PasswordHash); err != nil {
		s.log.Warn("Login failed", logger.Fields(logger.FieldEmail, acct.Email))
		return nil, errors.InvalidCredentials()
	}

	tok, err := s.tokens.Issue(acct.ID.Hex())
	if err != nil {
		return nil, errors.Internal(err)
	}

	s.log.Info("Login successful", logger.Fields(
		logger.FieldAccountID, acct.ID.Hex(),
		logger.FieldEmail, acct.Email,
	))
	return &Session{Account: sanitize(acct), Token: tok}, nil
}

// VerifySession validates a bearer token and resolves its account. A valid
// token whose account was deleted since issuance is stale and yields
// AccountNotFound.
func (s *Service) VerifySession(ctx context.Context, tokenString string) (*AccountInfo, error) {
	accountID, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	acct, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	info := sanitize(acct)
	return &info, nil
}

// RequireRole verifies the session and additionally requires an exact role
// match. A mismatch yields Forbidden.
func (s *Service) RequireRole(ctx context.Context, tokenString, requiredRole string) (*AccountInfo, error) {
	info, err := s.VerifySession(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if info.Role != requiredRole {
		return nil, errors.Forbidden("")
	}
	return info, nil
}

// ListAccounts returns every account without password hashes. The caller
// must have established the admin role before invoking.
func (s *Service) ListAccounts(ctx context.Context) ([]AccountInfo, error) {
	accounts, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]AccountInfo, len(accounts))
	for i := range accounts {
		infos[i] = sanitize(&accounts[i])
	}
	return infos, nil
}

// UpdateAccount applies a partial profile update. The patch type cannot
// carry a password; password changes go through a dedicated rehash path.
func (s *Service) UpdateAccount(ctx context.Context, id string, patch store.AccountPatch) (*AccountInfo, error) {
	v := validation.New()
	if patch.Name != nil {
		v.Custom(validation.ValidateName(*patch.Name), "name", validation.ReasonInvalidName)
	}
	if patch.Email != nil {
		v.Custom(validation.ValidateEmail(*patch.Email), "email", validation.ReasonInvalidEmail)
	}
	if patch.Role != nil {
		v.Custom(validation.ValidateRole(*patch.Role), "role", validation.ReasonInvalidRole)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	// A patch with nothing to change is a no-op, not a missing account:
	// return the current state (or NotFound if the id really is unknown).
	if patch.IsEmpty() {
		acct, err := s.store.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		info := sanitize(acct)
		return &info, nil
	}

	modified, err := s.store.UpdateFields(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if !modified {
		return nil, errors.AccountNotFound()
	}

	acct, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	info := sanitize(acct)
	return &info, nil
}

// DeleteAccount removes an account. Reserved for admin callers.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return errors.AccountNotFound()
	}
	s.log.Info("Account deleted", logger.Fields(logger.FieldAccountID, id))
	return nil
}

// ForgotPassword accepts a reset request. The response is identical
// whether or not the account exists; only the email shape is validated.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	if !validation.ValidateEmail(email) {
		return "", errors.Validation(validation.ReasonInvalidEmail)
	}

	if _, err := s.store.FindByEmail(ctx, email); err != nil {
		if errors.CodeOf(err) != errors.ErrCodeNotFound {
			return "", err
		}
		// Unknown account: fall through to the same response.
	} else {
		s.log.Info("Password reset requested", logger.Fields(logger.FieldEmail, validation.NormalizeEmail(email)))
	}
	return ForgotPasswordMessage, nil
}

// ResetPassword fails closed. Reset tokens have no generation or
// validation design yet, so the operation refuses rather than guessing at
// stateful semantics.
func (s *Service) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if resetToken == "" {
		return errors.MissingField("token")
	}
	if !validation.ValidatePassword(newPassword) {
		return errors.Validation(validation.ReasonInvalidPassword)
	}
	return errors.NotImplemented("Password reset")
}

// sanitize strips the hash and flattens the id for external exposure.
func sanitize(acct *store.Account) AccountInfo {
	return AccountInfo{
		ID:        acct.ID.Hex(),
		Name:      acct.Name,
		Email:     acct.Email,
		Role:      acct.Role,
		CreatedAt: acct.CreatedAt,
		UpdatedAt: acct.UpdatedAt,
	}
}
