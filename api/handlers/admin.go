package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/admitdesk/admissions-api/api"
	"github.com/admitdesk/admissions-api/config"
	"github.com/admitdesk/admissions-api/databases"
)

type adminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type adminLoginResponse struct {
	Token string `json:"token"`
	Admin struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"admin"`
}

// Admin handles admissions-office authentication
type Admin struct {
	ADB databases.AdminDatabase
}

// AdminLoginHandler handles admin login via email/password and returns a JWT
func (h Admin) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		config.ErrorStatus("email and password required", http.StatusBadRequest, w, errors.New("missing credentials"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	admin, err := h.ADB.FindOne(ctx, bson.M{"email": email, "active": true})
	if err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		config.ErrorStatus("invalid credentials", http.StatusUnauthorized, w, err)
		return
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		config.ErrorStatus("server misconfigured", http.StatusInternalServerError, w, errors.New("JWT_SECRET not set"))
		return
	}

	claims := jwt.MapClaims{
		"sub":   admin.ID.Hex(),
		"email": admin.Email,
		"scope": "admin",
		"typ":   "access",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret)
	if err != nil {
		config.ErrorStatus("token generation failed", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("admin logged in", "email", admin.Email)

	var resp adminLoginResponse
	resp.Token = signed
	resp.Admin.ID = admin.ID.Hex()
	resp.Admin.Email = admin.Email

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

// AdminLogoutHandler denylists the caller's JWT until its natural expiry
func (h Admin) AdminLogoutHandler(w http.ResponseWriter, r *http.Request) {
	token := api.BearerToken(r)

	expiresAt := time.Now().Add(24 * time.Hour)
	if claims, err := api.ParseAdminToken(token); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			expiresAt = exp.Time
		}
	}
	api.RevokeAdminToken(token, expiresAt)

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}
