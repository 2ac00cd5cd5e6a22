package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/admitdesk/admissions-api/api"
	"github.com/admitdesk/admissions-api/databases/mocks"
	"github.com/admitdesk/admissions-api/models"
)

func adminWithPassword(t *testing.T, password string) *models.AdminUser {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	assert.NoError(t, err)
	return &models.AdminUser{
		ID:           primitive.NewObjectID(),
		Email:        "dean@admitdesk.edu",
		PasswordHash: string(hash),
		Active:       true,
	}
}

func TestAdmin_LoginHandlerMissingCredentials(t *testing.T) {
	adb := mocks.NewAdminDatabase(t)
	h := Admin{ADB: adb}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login", strings.NewReader(`{"email": "dean@admitdesk.edu"}`))
	rr := httptest.NewRecorder()

	h.AdminLoginHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdmin_LoginHandlerUnknownAdmin(t *testing.T) {
	adb := mocks.NewAdminDatabase(t)
	h := Admin{ADB: adb}

	adb.On("FindOne", mock.Anything, bson.M{"email": "dean@admitdesk.edu", "active": true}).
		Return(nil, mongo.ErrNoDocuments)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login",
		strings.NewReader(`{"email": "dean@admitdesk.edu", "password": "hunter2"}`))
	rr := httptest.NewRecorder()

	h.AdminLoginHandler(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid credentials")
}

func TestAdmin_LoginHandlerWrongPassword(t *testing.T) {
	adb := mocks.NewAdminDatabase(t)
	h := Admin{ADB: adb}

	adb.On("FindOne", mock.Anything, bson.M{"email": "dean@admitdesk.edu", "active": true}).
		Return(adminWithPassword(t, "correct-horse"), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login",
		strings.NewReader(`{"email": "dean@admitdesk.edu", "password": "wrong-horse"}`))
	rr := httptest.NewRecorder()

	h.AdminLoginHandler(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid credentials")
}

func TestAdmin_LoginHandlerSuccess(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	adb := mocks.NewAdminDatabase(t)
	h := Admin{ADB: adb}

	admin := adminWithPassword(t, "correct-horse")
	adb.On("FindOne", mock.Anything, bson.M{"email": "dean@admitdesk.edu", "active": true}).Return(admin, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login",
		strings.NewReader(`{"email": "Dean@AdmitDesk.edu", "password": "correct-horse"}`))
	rr := httptest.NewRecorder()

	h.AdminLoginHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Token string `json:"token"`
		Admin struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"admin"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, admin.ID.Hex(), resp.Admin.ID)
	assert.Equal(t, "dean@admitdesk.edu", resp.Admin.Email)

	claims, err := api.ParseAdminToken(resp.Token)
	assert.NoError(t, err)
	assert.Equal(t, "admin", claims["scope"])
	assert.Equal(t, "dean@admitdesk.edu", claims["email"])
}

func TestAdmin_LogoutDenylistsToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	adb := mocks.NewAdminDatabase(t)
	h := Admin{ADB: adb}

	admin := adminWithPassword(t, "correct-horse")
	adb.On("FindOne", mock.Anything, bson.M{"email": "dean@admitdesk.edu", "active": true}).Return(admin, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/login",
		strings.NewReader(`{"email": "dean@admitdesk.edu", "password": "correct-horse"}`))
	rr := httptest.NewRecorder()
	h.AdminLoginHandler(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Token string `json:"token"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))

	protected := api.AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rr = httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/logout", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rr = httptest.NewRecorder()
	h.AdminLogoutHandler(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	rr = httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdmin_MiddlewareRejectsMissingToken(t *testing.T) {
	protected := api.AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/list", nil)
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error": "unauthorized"}`, rr.Body.String())
}

func TestAdmin_MiddlewareRejectsGarbageToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	protected := api.AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/list", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
