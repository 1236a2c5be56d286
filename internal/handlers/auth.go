package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/forklift-safety/internal/auth"
	"github.com/ukydev/forklift-safety/internal/cache"
	"github.com/ukydev/forklift-safety/internal/db"
	"github.com/ukydev/forklift-safety/internal/middleware"
	"github.com/ukydev/forklift-safety/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHandler serves registration, login, token refresh and profile
// lookups. tokens may be nil when Redis is unavailable; refresh then
// answers 503 while login and registration keep working.
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
	tokens         *cache.TokenStore
}

func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection, tokens *cache.TokenStore) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
		tokens:         tokens,
	}
}

// issueTokens builds the login response: a signed access token plus a
// rotating refresh token persisted in the token store when one is wired.
func (h *AuthHandler) issueTokens(ctx context.Context, user *models.User) (*models.LoginResponse, error) {
	token, err := h.authService.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	if h.tokens != nil {
		if err := h.tokens.Save(ctx, user.ID.Hex(), refreshToken); err != nil {
			return nil, err
		}
	}

	return &models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         *user,
	}, nil
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var loginReq models.LoginRequest
	if !readBody(w, r, &loginReq) {
		return
	}
	if loginReq.Username == "" || loginReq.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.userCollection.FindUserByUsername(r.Context(), loginReq.Username)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if !user.IsActive {
		http.Error(w, "Account is deactivated", http.StatusUnauthorized)
		return
	}
	if !h.authService.CheckPassword(loginReq.Password, user.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	response, err := h.issueTokens(r.Context(), user)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	// Login already succeeded, a stale last_login is not worth failing it.
	if err := h.userCollection.UpdateLastLogin(r.Context(), user.ID.Hex()); err != nil {
		log.WithError(err).WithField("user_id", user.ID.Hex()).Warn("Failed to update last login")
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var registerReq models.RegisterRequest
	if !readBody(w, r, &registerReq) {
		return
	}
	if msg := h.validateRegistration(&registerReq); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	if _, err := h.userCollection.FindUserByUsername(r.Context(), registerReq.Username); err == nil {
		http.Error(w, "Username already exists", http.StatusConflict)
		return
	}
	if _, err := h.userCollection.FindUserByEmail(r.Context(), registerReq.Email); err == nil {
		http.Error(w, "Email already exists", http.StatusConflict)
		return
	}

	passwordHash, err := h.authService.HashPassword(registerReq.Password)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	now := time.Now()
	user := models.User{
		ID:           primitive.NewObjectID(),
		BusinessID:   registerReq.BusinessID,
		Username:     registerReq.Username,
		Email:        registerReq.Email,
		PasswordHash: passwordHash,
		Role:         registerReq.Role,
		FirstName:    registerReq.FirstName,
		LastName:     registerReq.LastName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.userCollection.InsertUser(r.Context(), user); err != nil {
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	response, err := h.issueTokens(r.Context(), &user)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

// validateRegistration returns a client-facing message for the first
// failing field, or "" when the request is acceptable.
func (h *AuthHandler) validateRegistration(req *models.RegisterRequest) string {
	if req.BusinessID == "" {
		return "Business is required"
	}
	if err := h.authService.ValidateUsername(req.Username); err != nil {
		return err.Error()
	}
	if err := h.authService.ValidateEmail(req.Email); err != nil {
		return err.Error()
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		return err.Error()
	}
	if !models.IsValidRole(req.Role) {
		return "Invalid role"
	}
	return ""
}

// Refresh exchanges a valid refresh token for a fresh token pair. The
// stored token rotates on every successful refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.tokens == nil {
		http.Error(w, "Refresh not available", http.StatusServiceUnavailable)
		return
	}

	var refreshReq models.RefreshRequest
	if !readBody(w, r, &refreshReq) {
		return
	}
	if refreshReq.UserID == "" || refreshReq.RefreshToken == "" {
		http.Error(w, "User and refresh token are required", http.StatusBadRequest)
		return
	}

	if err := h.tokens.Validate(r.Context(), refreshReq.UserID, refreshReq.RefreshToken); err != nil {
		http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), refreshReq.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusUnauthorized)
		return
	}
	if !user.IsActive {
		http.Error(w, "Account is deactivated", http.StatusUnauthorized)
		return
	}

	response, err := h.issueTokens(r.Context(), user)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// GetProfile returns the authenticated user's account record.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		http.Error(w, "User context not found", http.StatusUnauthorized)
		return
	}

	user, err := h.userCollection.FindUserByID(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// readBody decodes a JSON request body into v, writing the 400 itself
// on failure.
func readBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}
