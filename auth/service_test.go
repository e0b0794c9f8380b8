package auth

import (
	"context"
	"testing"
	"time"

	"github.com/wellmind/authcore/errors"
	"github.com/wellmind/authcore/logger"
	"github.com/wellmind/authcore/password"
	"github.com/wellmind/authcore/store"
	"github.com/wellmind/authcore/token"
)

const testSecret = "test-secret-key-for-auth-service"

func newTestService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()

	hasher := password.NewBcryptHasher(password.WithCost(4))
	accounts := store.NewMemoryStore(hasher)

	tokens, err := token.NewService(&token.Config{Secret: testSecret})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	return NewService(accounts, hasher, tokens, logger.NewDefault("test")), accounts
}

func register(t *testing.T, svc *Service, email string) *Session {
	t.Helper()
	sess, err := svc.Register(context.Background(), "Jordan Smith", email, "Abcde1", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	return sess
}

func TestService_Register_Success(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "Jordan Smith", "Jordan@Example.com", "Abcde1", "")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if sess.Account.Email != "jordan@example.com" {
		t.Errorf("expected normalized email, got %q", sess.Account.Email)
	}
	if sess.Account.Role != "student" {
		t.Errorf("expected default role student, got %q", sess.Account.Role)
	}
	if sess.Token == "" {
		t.Fatal("expected a session token")
	}

	// The issued token must resolve back to the new account.
	info, err := svc.VerifySession(ctx, sess.Token)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if info.ID != sess.Account.ID {
		t.Errorf("token resolved to %q, want %q", info.ID, sess.Account.ID)
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	register(t, svc, "jordan@example.com")
	_, err := svc.Register(ctx, "Jordan Smith", "jordan@example.com", "Abcde1", "")
	if errors.CodeOf(err) != errors.ErrCodeConflict {
		t.Errorf("expected CONFLICT, got %v", err)
	}
}

func TestService_Register_InvalidRole(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Register(context.Background(), "Jordan Smith", "jordan@example.com", "Abcde1", "superuser")
	if errors.CodeOf(err) != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestService_Login_Success(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	register(t, svc, "jordan@example.com")

	sess, err := svc.Login(ctx, "JORDAN@example.com", "Abcde1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if sess.Token == "" {
		t.Error("expected a session token")
	}
	if sess.Account.Email != "jordan@example.com" {
		t.Errorf("unexpected account email %q", sess.Account.Email)
	}
}

func TestService_Login_EnumerationResistance(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	register(t, svc, "jordan@example.com")

	_, wrongPass := svc.Login(ctx, "jordan@example.com", "Wrong123")
	_, unknownUser := svc.Login(ctx, "nobody@example.com", "Wrong123")

	for _, err := range []error{wrongPass, unknownUser} {
		if errors.CodeOf(err) != errors.ErrCodeInvalidCredentials {
			t.Fatalf("expected INVALID_CREDENTIALS, got %v", err)
		}
	}

	// An attacker must not be able to tell the two failures apart.
	a, _ := errors.AsAppError(wrongPass)
	b, _ := errors.AsAppError(unknownUser)
	if a.Message != b.Message || a.HTTPStatus != b.HTTPStatus {
		t.Errorf("failure responses differ: %+v vs %+v", a, b)
	}
}

func TestService_Login_MalformedEmail(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "not-an-email", "Abcde1")
	if errors.CodeOf(err) != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestService_VerifySession_InvalidToken(t *testing.T) {
	svc, _ := newTestService(t)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.VerifySession(context.Background(), tok)
		if errors.CodeOf(err) != errors.ErrCodeInvalidToken {
			t.Errorf("VerifySession(%q): expected INVALID_TOKEN, got %v", tok, err)
		}
	}
}

func TestService_VerifySession_ExpiredToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess := register(t, svc, "jordan@example.com")

	// Issue a token from two TTLs in the past with the same secret.
	past := time.Now().Add(-14 * 24 * time.Hour)
	backdated, err := token.NewService(&token.Config{Secret: testSecret},
		token.WithClock(func() time.Time { return past }))
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	stale, err := backdated.Issue(sess.Account.ID)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	_, err = svc.VerifySession(ctx, stale)
	if errors.CodeOf(err) != errors.ErrCodeTokenExpired {
		t.Errorf("expected TOKEN_EXPIRED, got %v", err)
	}
}

func TestService_VerifySession_DeletedAccount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess := register(t, svc, "jordan@example.com")
	if err := svc.DeleteAccount(ctx, sess.Account.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// The token is still cryptographically valid but points nowhere.
	_, err := svc.VerifySession(ctx, sess.Token)
	if errors.CodeOf(err) != errors.ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND for stale session, got %v", err)
	}
}

func TestService_RequireRole(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	student := register(t, svc, "student@example.com")
	admin, err := svc.Register(ctx, "Site Admin", "admin@example.com", "Admin123", "admin")
	if err != nil {
		t.Fatalf("admin register failed: %v", err)
	}

	if _, err := svc.RequireRole(ctx, admin.Token, "admin"); err != nil {
		t.Errorf("expected admin token to satisfy admin role: %v", err)
	}
	if _, err := svc.RequireRole(ctx, student.Token, "student"); err != nil {
		t.Errorf("expected student token to satisfy student role: %v", err)
	}

	_, err = svc.RequireRole(ctx, student.Token, "admin")
	if errors.CodeOf(err) != errors.ErrCodeForbidden {
		t.Errorf("expected FORBIDDEN for student on admin check, got %v", err)
	}

	// Roles are matched exactly; admin is not a superset of student.
	_, err = svc.RequireRole(ctx, admin.Token, "student")
	if errors.CodeOf(err) != errors.ErrCodeForbidden {
		t.Errorf("expected FORBIDDEN for admin on student check, got %v", err)
	}
}

func TestService_ListAccounts(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	register(t, svc, "one@example.com")
	register(t, svc, "two@example.com")

	infos, err := svc.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(infos) != 2 {
		t.Errorf("expected 2 accounts, got %d", len(infos))
	}
}

func TestService_UpdateAccount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess := register(t, svc, "jordan@example.com")

	name := "Jordan Q. Smith"
	info, err := svc.UpdateAccount(ctx, sess.Account.ID, store.AccountPatch{Name: &name})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if info.Name != "Jordan Q. Smith" {
		t.Errorf("expected updated name, got %q", info.Name)
	}

	bad := "not-an-email"
	_, err = svc.UpdateAccount(ctx, sess.Account.ID, store.AccountPatch{Email: &bad})
	if errors.CodeOf(err) != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT for bad email patch, got %v", err)
	}

	_, err = svc.UpdateAccount(ctx, "64f1c0ffee0000abcdef1234", store.AccountPatch{Name: &name})
	if errors.CodeOf(err) != errors.ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND for unknown id, got %v", err)
	}
}

func TestService_UpdateAccount_EmptyPatch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess := register(t, svc, "jordan@example.com")

	// Nothing to change: the existing account comes back unchanged.
	info, err := svc.UpdateAccount(ctx, sess.Account.ID, store.AccountPatch{})
	if err != nil {
		t.Fatalf("expected empty patch to be a no-op, got %v", err)
	}
	if info.ID != sess.Account.ID || info.Name != sess.Account.Name {
		t.Errorf("expected current account back, got %+v", info)
	}

	_, err = svc.UpdateAccount(ctx, "64f1c0ffee0000abcdef1234", store.AccountPatch{})
	if errors.CodeOf(err) != errors.ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND for unknown id, got %v", err)
	}
}

func TestService_DeleteAccount_Unknown(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.DeleteAccount(context.Background(), "64f1c0ffee0000abcdef1234")
	if errors.CodeOf(err) != errors.ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestService_ForgotPassword_UniformResponse(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	register(t, svc, "jordan@example.com")

	known, err := svc.ForgotPassword(ctx, "jordan@example.com")
	if err != nil {
		t.Fatalf("forgot-password failed for known account: %v", err)
	}
	unknown, err := svc.ForgotPassword(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("forgot-password failed for unknown account: %v", err)
	}
	if known != unknown {
		t.Errorf("responses differ: %q vs %q", known, unknown)
	}

	_, err = svc.ForgotPassword(ctx, "not-an-email")
	if errors.CodeOf(err) != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestService_ResetPassword_FailsClosed(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.ResetPassword(ctx, "some-reset-token", "Abcde1")
	if errors.CodeOf(err) != errors.ErrCodeNotImplemented {
		t.Errorf("expected NOT_IMPLEMENTED, got %v", err)
	}

	err = svc.ResetPassword(ctx, "", "Abcde1")
	if errors.CodeOf(err) != errors.ErrCodeMissingField {
		t.Errorf("expected MISSING_FIELD, got %v", err)
	}

	err = svc.ResetPassword(ctx, "some-reset-token", "weak")
	if errors.CodeOf(err) != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT for weak password, got %v", err)
	}
}
