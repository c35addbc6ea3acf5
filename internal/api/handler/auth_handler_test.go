package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/vidvault/streaming-api/internal/core/domain"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password, role string, maxDevices int) (*domain.User, string, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.User, error)
	currentFn  func(ctx context.Context, userID string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password, role string, maxDevices int) (*domain.User, string, error) {
	return s.registerFn(ctx, username, password, role, maxDevices)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.currentFn(ctx, userID)
}

func newAuthContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, role string, maxDevices int) (*domain.User, string, error) {
			if username != "alice" || role != domain.RoleUser || maxDevices != 5 {
				t.Fatalf("unexpected args: %s %s %d", username, role, maxDevices)
			}
			return &domain.User{ID: "user_1", Username: username, Role: role, MaxDevices: maxDevices}, "tok", nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newAuthContext(http.MethodPost, "/auth/register",
		`{"username":"alice","password":"secret1","role":"user","maxDevices":5}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "tok" {
		t.Fatalf("unexpected token: %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatal("expected user in response")
	}
	if user["username"] != "alice" {
		t.Fatalf("unexpected user payload: %+v", user)
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Fatal("password hash leaked in response")
	}
}

func TestAuthHandler_Register_ShortPasswordRejected(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password, role string, maxDevices int) (*domain.User, string, error) {
			t.Fatal("service should not be called")
			return nil, "", nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newAuthContext(http.MethodPost, "/auth/register",
		`{"username":"alice","password":"short"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, *domain.User, error) {
			return "tok", &domain.User{ID: "user_1", Username: username}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newAuthContext(http.MethodPost, "/auth/login",
		`{"username":"alice","password":"secret1"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"token":"tok"`) {
		t.Fatalf("token missing from response: %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_WrongPasswordSurfacesDomainError(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newAuthContext(http.MethodPost, "/auth/login",
		`{"username":"alice","password":"wrongpw"}`)

	err := h.Login(c)
	if err == nil {
		t.Fatal("expected error to bubble to the error handler")
	}
	if !strings.Contains(err.Error(), "invalid credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthHandler_Me_ReturnsStoreUser(t *testing.T) {
	stub := &stubAuthService{
		currentFn: func(ctx context.Context, userID string) (*domain.User, error) {
			if userID != "user_7" {
				t.Fatalf("unexpected user id: %s", userID)
			}
			return &domain.User{ID: userID, Username: "carol", Role: domain.RoleAdmin}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newAuthContext(http.MethodGet, "/auth/me", "")
	c.Set("user_id", "user_7")
	c.Set("role", domain.RoleAdmin)

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"carol"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
