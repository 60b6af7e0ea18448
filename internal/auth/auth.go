package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"ops-console/internal/config"
	"ops-console/internal/logger"
	"ops-console/internal/store"
	"ops-console/pkg/validation"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// OperatorContextKey carries the authenticated operator's id through the
// request context. The id is the opaque operator identifier; nothing below
// the middleware touches credentials.
const OperatorContextKey contextKey = "operator"

// Claims are the JWT claims issued to operators
type Claims struct {
	OperatorID string `json:"operatorId"`
	Username   string `json:"username"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Handlers serves operator registration, login and the auth middleware
type Handlers struct {
	store     store.Store
	config    *config.AuthConfig
	validator *validation.AuthRequestValidator
}

// NewHandlers creates new auth Handlers
func NewHandlers(st store.Store, authConfig *config.AuthConfig) *Handlers {
	return &Handlers{
		store:     st,
		config:    authConfig,
		validator: validation.NewAuthRequestValidator(),
	}
}

// sendError sends a standardized JSON error response
func sendError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errResp := ErrorResponse{
		Code:    status,
		Message: message,
	}
	if err != nil {
		errResp.Error = err.Error()
	}
	json.NewEncoder(w).Encode(errResp)
}

// GenerateToken issues a signed JWT for the operator
func (h *Handlers) GenerateToken(operatorID, username string) (string, error) {
	claims := Claims{
		OperatorID: operatorID,
		Username:   username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.config.TokenExpiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.config.JWTSecret)
}

// ValidateToken parses and verifies a JWT, returning its claims
func (h *Handlers) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return h.config.JWTSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

// LoginHandler authenticates an operator and returns a JWT token
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.ValidateLoginRequest(req.Username, req.Password); err != nil {
		sendError(w, http.StatusBadRequest, "Username and password are required", err)
		return
	}

	operator, err := h.store.GetOperatorByUsername(req.Username)
	if err != nil {
		logger.Log.WithField("username", req.Username).Warn("Login failed: operator not found")
		sendError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	if !operator.VerifyPassword(req.Password) {
		logger.Log.WithField("username", req.Username).Warn("Login failed: invalid password")
		sendError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	token, err := h.GenerateToken(operator.ID, operator.Username)
	if err != nil {
		logger.Log.WithError(err).Error("Error generating token")
		sendError(w, http.StatusInternalServerError, "Error generating token", err)
		return
	}

	logger.Log.WithField("username", operator.Username).Info("Operator logged in")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{Token: token})
}

// RegisterHandler creates a new operator account
func (h *Handlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.validator.ValidateRegisterRequest(req.Username, req.Email, req.Password); err != nil {
		sendError(w, http.StatusBadRequest, "Invalid registration request", err)
		return
	}

	operator, err := h.store.CreateOperator(req.Username, req.Email, req.Password)
	if err != nil {
		logger.Log.WithField("username", req.Username).WithError(err).Warn("Registration failed")
		if err.Error() == "username already exists" {
			sendError(w, http.StatusConflict, "Username already exists", err)
			return
		}
		sendError(w, http.StatusInternalServerError, "Error creating operator", err)
		return
	}

	token, err := h.GenerateToken(operator.ID, operator.Username)
	if err != nil {
		logger.Log.WithError(err).Error("Error generating token")
		sendError(w, http.StatusInternalServerError, "Error generating token", err)
		return
	}

	logger.Log.WithField("username", operator.Username).Info("Operator registered")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(RegisterResponse{
		Message: "Operator registered successfully",
		Token:   token,
	})
}

// Middleware validates the bearer token and injects the operator id into the
// request context
func (h *Handlers) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			sendError(w, http.StatusUnauthorized, "Missing authorization header", nil)
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 || bearerToken[0] != "Bearer" {
			sendError(w, http.StatusUnauthorized, "Invalid authorization header format", nil)
			return
		}

		claims, err := h.ValidateToken(bearerToken[1])
		if err != nil {
			sendError(w, http.StatusUnauthorized, "Invalid token", err)
			return
		}

		ctx := context.WithValue(r.Context(), OperatorContextKey, claims.OperatorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// OperatorID extracts the authenticated operator id from the request context
func OperatorID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(OperatorContextKey).(string)
	return id, ok
}
