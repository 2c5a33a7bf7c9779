package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/sladash/sladash/internal/config"
)

// AuthHandler issues dashboard access tokens
type AuthHandler struct {
	cfg config.AuthConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/auth/token", h.IssueToken).Methods("POST")
}

// TokenRequest represents a token request
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// IssueToken handles credential exchange for a bearer token
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if req.Username != h.cfg.Username {
		writeErrorResponse(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.cfg.PasswordHash), []byte(req.Password)); err != nil {
		writeErrorResponse(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password")
		return
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": req.Username,
		"iat": now.Unix(),
		"exp": now.Add(h.cfg.JWTExpiration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.cfg.JWTSecret))
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, "token_signing", "Failed to sign token")
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Token issued successfully", map[string]interface{}{
		"token":      signed,
		"expires_at": now.Add(h.cfg.JWTExpiration).UTC(),
	})
}

// authMiddleware enforces bearer tokens on every route except the
// health check and the token endpoint itself.
func authMiddleware(cfg config.AuthConfig) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/health" || r.URL.Path == "/api/v1/auth/token" {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeErrorResponse(w, http.StatusUnauthorized, "missing_token", "Authorization token is required")
				return
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")
			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(cfg.JWTSecret), nil
			})
			if err != nil || !token.Valid {
				writeErrorResponse(w, http.StatusUnauthorized, "invalid_token", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
