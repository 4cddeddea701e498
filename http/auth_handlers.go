package http

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"exoserve/auth"
	"exoserve/db"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func RegisterAuthHandlers(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/signup", handleSignup)
	mux.HandleFunc("POST /api/auth/login", handleLogin)
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(handleMe)))
}

// requireAuth resolves the bearer token to a user and stores it on the
// request context. The handlers behind it never authenticate on their own.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tokens == nil {
			writeError(w, http.StatusServiceUnavailable, "Authentication not configured", "")
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "Token is missing", "")
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, "Invalid token format", "")
			return
		}

		userID, err := tokens.Verify(parts[1])
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Token is invalid or expired", "")
			return
		}

		user, err := db.FindUserByID(userID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "User not found", "")
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No data provided", "")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	fieldErrors := map[string][]string{}
	if len(req.Username) < 3 {
		fieldErrors["username"] = append(fieldErrors["username"], "Username must be at least 3 characters long.")
	}
	if !emailPattern.MatchString(req.Email) {
		fieldErrors["email"] = append(fieldErrors["email"], "Not a valid email address.")
	}
	if len(req.Password) < 6 {
		fieldErrors["password"] = append(fieldErrors["password"], "Password must be at least 6 characters long.")
	}
	if len(fieldErrors) > 0 {
		writeValidationError(w, fieldErrors)
		return
	}

	if _, err := db.FindUserByEmail(req.Email); err == nil {
		writeError(w, http.StatusConflict, "User with this email already exists", "")
		return
	}
	if _, err := db.FindUserByUsername(req.Username); err == nil {
		writeError(w, http.StatusConflict, "Username already taken", "")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user", "")
		return
	}

	user, err := db.CreateUser(req.Username, req.Email, hash)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user - database error", "")
		return
	}

	token, err := issueToken(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", "")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "User created successfully",
		"user":         user,
		"access_token": token,
		"token_type":   "Bearer",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest

	// The frontend login form posts urlencoded fields with the email under
	// "username"; JSON clients send the documented shape.
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "No data provided", "")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "No data provided", "")
			return
		}
		req.Email = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required", "")
		return
	}

	user, err := db.FindUserByEmail(req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password", "")
		return
	}

	token, err := issueToken(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", "")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Login successful",
		"user":         user,
		"access_token": token,
		"token_type":   "Bearer",
	})
}

func handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": userFrom(r)})
}

// TokenIssuer is what signup/login need from the identity collaborator.
type TokenIssuer interface {
	Generate(userID string) (string, error)
}

var tokenIssuer TokenIssuer

func SetTokenIssuer(issuer TokenIssuer) { tokenIssuer = issuer }

func issueToken(userID string) (string, error) {
	if tokenIssuer == nil {
		return "", errNoIssuer
	}
	return tokenIssuer.Generate(userID)
}

var errNoIssuer = &configError{"token issuer not configured"}

type configError struct{ msg string }

func (e *configError) Error() string { return e.msg }
