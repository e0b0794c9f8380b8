package token

import (
	stderrors "errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/wellmind/authcore/errors"
)

// Service issues and verifies bearer tokens.
type Service struct {
	cfg Config
	now func() time.Time
}

// Option configures the token service.
type Option func(*Service)

// WithClock overrides the time source used for the issuedAt/expiresAt
// claims and for expiry checks during verification. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new token service.
func NewService(cfg *Config, opts ...Option) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	s := &Service{cfg: *cfg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.cfg.TTL
}

// Issue creates a signed token bound to the given account identity,
// expiring at now + TTL.
func (s *Service) Issue(accountID string) (string, error) {
	if accountID == "" {
		return "", fmt.Errorf("token: empty account id")
	}
	now := s.now()
	claims := gojwt.RegisteredClaims{
		Subject:   accountID,
		Issuer:    s.cfg.Issuer,
		IssuedAt:  gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(s.cfg.TTL)),
	}
	signed, err := gojwt.NewWithClaims(s.cfg.signingMethod(), claims).SignedString(s.cfg.key())
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify validates a token string and returns the bound account identity.
// It returns errors.TokenExpired when the token's expiry has passed and
// errors.InvalidToken for every other failure (bad signature, malformed
// payload, wrong algorithm, missing subject).
func (s *Service) Verify(tokenString string) (string, error) {
	claims := &gojwt.RegisteredClaims{}
	parsed, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc, s.parserOptions()...)
	if err != nil {
		if stderrors.Is(err, gojwt.ErrTokenExpired) {
			return "", errors.TokenExpired()
		}
		return "", errors.InvalidToken().WithCause(err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", errors.InvalidToken()
	}
	return claims.Subject, nil
}

// keyFunc is the jwt.Keyfunc used during token parsing.
func (s *Service) keyFunc(token *gojwt.Token) (interface{}, error) {
	expected := s.cfg.signingMethod()
	if token.Method.Alg() != expected.Alg() {
		return nil, fmt.Errorf("token: unexpected signing method: %s", token.Method.Alg())
	}
	return s.cfg.key(), nil
}

// parserOptions returns jwt.ParserOption based on config.
func (s *Service) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	return opts
}
