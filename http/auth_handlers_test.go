package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"exoserve/auth"
	"exoserve/db"
)

func setupAuthTest(t *testing.T) (*http.ServeMux, func()) {
	t.Helper()
	if err := db.Init(":memory:"); err != nil {
		t.Fatalf("init db: %v", err)
	}
	tokenService := auth.NewTokenService("test-secret", time.Hour)
	SetTokenVerifier(tokenService)
	SetTokenIssuer(tokenService)

	mux := http.NewServeMux()
	RegisterAuthHandlers(mux)

	return mux, func() {
		SetTokenVerifier(nil)
		SetTokenIssuer(nil)
		db.Close()
	}
}

func postJSON(mux *http.ServeMux, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestSignupLoginMe(t *testing.T) {
	mux, teardown := setupAuthTest(t)
	defer teardown()

	w := postJSON(mux, "/api/auth/signup",
		`{"username":"stella","email":"Stella@Example.com","password":"orbit123"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var signup struct {
		AccessToken string  `json:"access_token"`
		TokenType   string  `json:"token_type"`
		User        db.User `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &signup); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if signup.AccessToken == "" || signup.TokenType != "Bearer" {
		t.Fatalf("unexpected token payload: %+v", signup)
	}
	if signup.User.Email != "stella@example.com" {
		t.Fatalf("email not normalized: %q", signup.User.Email)
	}

	w = postJSON(mux, "/api/auth/login",
		`{"email":"stella@example.com","password":"orbit123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var login struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.AccessToken)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var me struct {
		User db.User `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if me.User.Username != "stella" {
		t.Fatalf("unexpected user: %+v", me.User)
	}
}

func TestSignupValidation(t *testing.T) {
	mux, teardown := setupAuthTest(t)
	defer teardown()

	w := postJSON(mux, "/api/auth/signup", `{"username":"ab","email":"not-an-email","password":"123"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var payload struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, field := range []string{"username", "email", "password"} {
		if len(payload.Errors[field]) == 0 {
			t.Fatalf("expected error for %s, got %v", field, payload.Errors)
		}
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	mux, teardown := setupAuthTest(t)
	defer teardown()

	body := `{"username":"stella","email":"stella@example.com","password":"orbit123"}`
	if w := postJSON(mux, "/api/auth/signup", body); w.Code != http.StatusCreated {
		t.Fatalf("first signup: got %d", w.Code)
	}
	w := postJSON(mux, "/api/auth/signup",
		`{"username":"stella2","email":"stella@example.com","password":"orbit123"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	mux, teardown := setupAuthTest(t)
	defer teardown()

	body := `{"username":"stella","email":"stella@example.com","password":"orbit123"}`
	if w := postJSON(mux, "/api/auth/signup", body); w.Code != http.StatusCreated {
		t.Fatalf("signup: got %d", w.Code)
	}
	w := postJSON(mux, "/api/auth/login", `{"email":"stella@example.com","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

// The login form posts urlencoded fields with the email under "username".
func TestLoginFormEncoded(t *testing.T) {
	mux, teardown := setupAuthTest(t)
	defer teardown()

	body := `{"username":"stella","email":"stella@example.com","password":"orbit123"}`
	if w := postJSON(mux, "/api/auth/signup", body); w.Code != http.StatusCreated {
		t.Fatalf("signup: got %d", w.Code)
	}

	form := url.Values{"username": {"stella@example.com"}, "password": {"orbit123"}}
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMeRejectsBadToken(t *testing.T) {
	mux, teardown := setupAuthTest(t)
	defer teardown()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
