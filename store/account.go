package store

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/wellmind/authcore/errors"
	"github.com/wellmind/authcore/password"
	"github.com/wellmind/authcore/validation"
)

// Account represents one registered identity. PasswordHash is the opaque
// output of the password hasher; it is never serialized to JSON and is
// stripped before any account leaves the orchestrator.
type Account struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"-"`
	Name         string        `bson:"name" json:"name"`
	Email        string        `bson:"email" json:"email"`
	PasswordHash string        `bson:"password_hash" json:"-"`
	Role         string        `bson:"role" json:"role"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
}

// NewAccount carries the registration fields accepted by Create. Password
// is plaintext here and nowhere else; Create hashes it and the plaintext
// is not retained.
type NewAccount struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AccountPatch is a partial update. Only the fields enumerated here can be
// changed through UpdateFields; the password hash and id are not
// representable, so a generic update can never overwrite them. Password
// changes must go through a dedicated rehash path.
type AccountPatch struct {
	Name  *string
	Email *string
	Role  *string
}

// IsEmpty reports whether the patch changes nothing.
func (p AccountPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Role == nil
}

// AccountStore is the persistence abstraction over a document store.
type AccountStore interface {
	// Create validates the registration data, hashes the password, and
	// inserts the record with createdAt = updatedAt = now. Email
	// uniqueness is enforced atomically with the insert; a duplicate
	// yields a CONFLICT error.
	Create(ctx context.Context, data NewAccount) (*Account, error)

	// FindByEmail looks up an account by normalized email, exact match only.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// FindByID looks up an account by identifier. Malformed identifiers
	// are treated as not found, not as a distinct error.
	FindByID(ctx context.Context, id string) (*Account, error)

	// UpdateFields applies a partial update and refreshes updatedAt.
	// It reports whether a record was modified.
	UpdateFields(ctx context.Context, id string, patch AccountPatch) (bool, error)

	// Delete removes an account and reports whether one existed.
	Delete(ctx context.Context, id string) (bool, error)

	// ListAll returns every account with the password hash excluded at
	// the projection level.
	ListAll(ctx context.Context) ([]Account, error)

	// SeedTestAccounts inserts the development fixture accounts if they
	// do not already exist.
	SeedTestAccounts(ctx context.Context) error
}

// newAccountRecord runs the shared write-time pipeline used by every
// implementation: validate, normalize the email, hash the password, and
// stamp the timestamps. The returned record has no ID yet.
func newAccountRecord(data NewAccount, hasher password.Hasher) (*Account, error) {
	if data.Role == "" {
		data.Role = validation.RoleStudent
	}
	ok, reason := validation.ValidateUserData(validation.UserData{
		Name:     data.Name,
		Email:    data.Email,
		Password: data.Password,
		Role:     data.Role,
	})
	if !ok {
		return nil, errors.Validation(reason)
	}

	hash, err := hasher.Hash(data.Password)
	if err != nil {
		// Algorithm input limits are about the submitted password, not a
		// system fault; surface them like any other rejected credential.
		if stderrors.Is(err, password.ErrTooLong) {
			return nil, errors.Validation(validation.ReasonPasswordTooLong)
		}
		return nil, errors.Internal(err)
	}

	now := time.Now().UTC()
	return &Account{
		Name:         validation.SanitizeName(data.Name),
		Email:        validation.NormalizeEmail(data.Email),
		PasswordHash: hash,
		Role:         data.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// seedAccount is a development fixture record. Seed passwords predate the
// current strength policy, so seeding bypasses ValidateUserData and hashes
// directly, exactly like production records otherwise.
type seedAccount struct {
	name     string
	email    string
	password string
	role     string
}

func seedAccounts() []seedAccount {
	return []seedAccount{
		{name: "Test Student", email: "student@test.com", password: "password123", role: validation.RoleStudent},
		{name: "Test Admin", email: "admin@test.com", password: "admin123", role: validation.RoleAdmin},
	}
}

func (s seedAccount) record(hasher password.Hasher) (*Account, error) {
	hash, err := hasher.Hash(s.password)
	if err != nil {
		return nil, errors.Internal(err)
	}
	now := time.Now().UTC()
	return &Account{
		Name:         s.name,
		Email:        s.email,
		PasswordHash: hash,
		Role:         s.role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
