package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wellmind/authcore/auth"
	"github.com/wellmind/authcore/logger"
	"github.com/wellmind/authcore/password"
	"github.com/wellmind/authcore/store"
	"github.com/wellmind/authcore/token"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewDefault("test")
	hasher := password.NewBcryptHasher(password.WithCost(4))
	accounts := store.NewMemoryStore(hasher)
	tokens, err := token.NewService(&token.Config{Secret: "handler-test-secret"})
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	svc := auth.NewService(accounts, hasher, tokens, log)

	engine := gin.New()
	NewAuthHandler(svc, log).RegisterRoutes(engine)
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any, bearer string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var decoded map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, decoded
}

func registerUser(t *testing.T, engine *gin.Engine, email, role string) (id, bearer string) {
	t.Helper()
	w, body := doJSON(t, engine, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Jordan Smith",
		"email":    email,
		"password": "Abcde1",
		"role":     role,
	}, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("register returned %d: %s", w.Code, w.Body.String())
	}
	user := body["user"].(map[string]any)
	return user["id"].(string), body["token"].(string)
}

func errorCode(body map[string]any) string {
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		return ""
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestHandler_Register_Success(t *testing.T) {
	engine := newTestEngine(t)

	w, body := doJSON(t, engine, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Jordan Smith",
		"email":    "Jordan@Example.com",
		"password": "Abcde1",
	}, "")

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if body["success"] != true {
		t.Error("expected success true")
	}
	if body["token"] == "" || body["token"] == nil {
		t.Error("expected a token in the response")
	}
	user := body["user"].(map[string]any)
	if user["email"] != "jordan@example.com" {
		t.Errorf("expected normalized email, got %v", user["email"])
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Error("password hash must never appear in responses")
	}
}

func TestHandler_Register_Duplicate(t *testing.T) {
	engine := newTestEngine(t)
	registerUser(t, engine, "jordan@example.com", "")

	w, body := doJSON(t, engine, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     "Jordan Smith",
		"email":    "jordan@example.com",
		"password": "Abcde1",
	}, "")

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if errorCode(body) != "CONFLICT" {
		t.Errorf("expected CONFLICT, got %q", errorCode(body))
	}
}

func TestHandler_Register_MalformedBody(t *testing.T) {
	engine := newTestEngine(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandler_Login_WrongPassword(t *testing.T) {
	engine := newTestEngine(t)
	registerUser(t, engine, "jordan@example.com", "")

	w, body := doJSON(t, engine, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "jordan@example.com",
		"password": "Wrong123",
	}, "")

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if errorCode(body) != "INVALID_CREDENTIALS" {
		t.Errorf("expected INVALID_CREDENTIALS, got %q", errorCode(body))
	}
}

func TestHandler_Login_MissingFields(t *testing.T) {
	engine := newTestEngine(t)

	w, body := doJSON(t, engine, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "jordan@example.com",
	}, "")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing password, got %d", w.Code)
	}
	if errorCode(body) != "INVALID_INPUT" {
		t.Errorf("expected INVALID_INPUT, got %q", errorCode(body))
	}
}

func TestHandler_Login_Success(t *testing.T) {
	engine := newTestEngine(t)
	registerUser(t, engine, "jordan@example.com", "")

	w, body := doJSON(t, engine, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "jordan@example.com",
		"password": "Abcde1",
	}, "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["token"] == "" || body["token"] == nil {
		t.Error("expected a token")
	}
}

func TestHandler_Verify(t *testing.T) {
	engine := newTestEngine(t)
	_, bearer := registerUser(t, engine, "jordan@example.com", "")

	w, body := doJSON(t, engine, http.MethodGet, "/api/auth/verify", nil, bearer)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	user := body["user"].(map[string]any)
	if user["email"] != "jordan@example.com" {
		t.Errorf("expected session account, got %v", user["email"])
	}

	// No header and a garbage token both read as invalid.
	for _, bad := range []string{"", "garbage"} {
		w, body = doJSON(t, engine, http.MethodGet, "/api/auth/verify", nil, bad)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401 for token %q, got %d", bad, w.Code)
		}
		if errorCode(body) != "INVALID_TOKEN" {
			t.Errorf("expected INVALID_TOKEN, got %q", errorCode(body))
		}
	}
}

func TestHandler_ListUsers_AdminOnly(t *testing.T) {
	engine := newTestEngine(t)
	_, studentBearer := registerUser(t, engine, "student@example.com", "")
	_, adminBearer := registerUser(t, engine, "admin@example.com", "admin")

	w, body := doJSON(t, engine, http.MethodGet, "/api/auth/users", nil, studentBearer)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for student, got %d", w.Code)
	}
	if errorCode(body) != "FORBIDDEN" {
		t.Errorf("expected FORBIDDEN, got %q", errorCode(body))
	}

	w, body = doJSON(t, engine, http.MethodGet, "/api/auth/users", nil, adminBearer)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", w.Code, w.Body.String())
	}
	users := body["users"].([]any)
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}

func TestHandler_ForgotPassword_UniformBody(t *testing.T) {
	engine := newTestEngine(t)
	registerUser(t, engine, "jordan@example.com", "")

	w1, known := doJSON(t, engine, http.MethodPost, "/api/auth/forgot-password",
		map[string]string{"email": "jordan@example.com"}, "")
	w2, unknown := doJSON(t, engine, http.MethodPost, "/api/auth/forgot-password",
		map[string]string{"email": "nobody@example.com"}, "")

	if w1.Code != http.StatusOK || w2.Code != http.StatusOK {
		t.Fatalf("expected 200/200, got %d/%d", w1.Code, w2.Code)
	}
	if known["message"] != unknown["message"] {
		t.Errorf("responses differ: %v vs %v", known["message"], unknown["message"])
	}

	w, body := doJSON(t, engine, http.MethodPost, "/api/auth/forgot-password", map[string]string{}, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing email, got %d", w.Code)
	}
	if errorCode(body) != "INVALID_INPUT" {
		t.Errorf("expected INVALID_INPUT, got %q", errorCode(body))
	}
}

func TestHandler_ResetPassword_NotImplemented(t *testing.T) {
	engine := newTestEngine(t)

	w, body := doJSON(t, engine, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"token":        "some-reset-token",
		"new_password": "Abcde1",
	}, "")

	if w.Code != http.StatusNotImplemented {
		t.Errorf("expected 501, got %d", w.Code)
	}
	if errorCode(body) != "NOT_IMPLEMENTED" {
		t.Errorf("expected NOT_IMPLEMENTED, got %q", errorCode(body))
	}
}

func TestHandler_UpdateProfile(t *testing.T) {
	engine := newTestEngine(t)
	_, bearer := registerUser(t, engine, "jordan@example.com", "")

	w, body := doJSON(t, engine, http.MethodPut, "/api/auth/profile", map[string]string{
		"name": "Jordan Q. Smith",
	}, bearer)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	user := body["user"].(map[string]any)
	if user["name"] != "Jordan Q. Smith" {
		t.Errorf("expected updated name, got %v", user["name"])
	}

	// An empty body is a no-op, not a missing account.
	w, body = doJSON(t, engine, http.MethodPut, "/api/auth/profile", map[string]string{}, bearer)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty patch, got %d: %s", w.Code, w.Body.String())
	}
	user = body["user"].(map[string]any)
	if user["name"] != "Jordan Q. Smith" {
		t.Errorf("expected current account back, got %v", user["name"])
	}
}

func TestHandler_DeleteUser(t *testing.T) {
	engine := newTestEngine(t)
	studentID, _ := registerUser(t, engine, "student@example.com", "")
	adminID, adminBearer := registerUser(t, engine, "admin@example.com", "admin")

	// Self-deletion is refused.
	w, _ := doJSON(t, engine, http.MethodDelete, "/api/auth/users/"+adminID, nil, adminBearer)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for self-delete, got %d", w.Code)
	}

	w, _ = doJSON(t, engine, http.MethodDelete, "/api/auth/users/"+studentID, nil, adminBearer)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}

	w, body := doJSON(t, engine, http.MethodDelete, "/api/auth/users/"+studentID, nil, adminBearer)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for repeat delete, got %d", w.Code)
	}
	if errorCode(body) != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %q", errorCode(body))
	}
}

func TestHandler_Health(t *testing.T) {
	engine := newTestEngine(t)

	w, body := doJSON(t, engine, http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["status"] != "healthy" {
		t.Errorf("expected healthy status, got %v", body["status"])
	}
}
