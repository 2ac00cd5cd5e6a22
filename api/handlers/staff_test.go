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

	"github.com/admitdesk/admissions-api/databases/mocks"
	mailmocks "github.com/admitdesk/admissions-api/mail/mocks"
	"github.com/admitdesk/admissions-api/models"
)

func TestStaff_CreateHandlerValidationError(t *testing.T) {
	db := mocks.NewStaffDatabase(t)
	mailer := mailmocks.NewMailer(t)
	s := Staff{DB: db, Mail: mailer}

	body := `{"firstName": "Meera", "lastName": "Nair", "email": "meera@example.edu"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registration/staff", strings.NewReader(body))
	rr := httptest.NewRecorder()

	s.CreateStaffApplicationHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "role is required")
}

func TestStaff_CreateHandlerSuccess(t *testing.T) {
	db := mocks.NewStaffDatabase(t)
	mailer := mailmocks.NewMailer(t)
	s := Staff{DB: db, Mail: mailer}

	db.On("FindOne", mock.Anything, bson.M{"email": "meera@example.edu"}).Return(nil, mongo.ErrNoDocuments)
	db.On("InsertOne", mock.Anything, mock.AnythingOfType("models.StaffApplication")).Return(primitive.NewObjectID(), nil)
	mailer.On("Send", mock.Anything, "meera@example.edu", "Application Received", mock.Anything, mock.Anything).Return(nil)

	body := `{"firstName": "Meera", "lastName": "Nair", "role": "Lab Assistant", "email": "meera@example.edu"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registration/staff", strings.NewReader(body))
	rr := httptest.NewRecorder()

	s.CreateStaffApplicationHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.StaffApplication
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, "Lab Assistant", created.Role)
}

func TestStaff_ListHandlerEmptyReturnsEmptyArray(t *testing.T) {
	db := mocks.NewStaffDatabase(t)
	s := Staff{DB: db}

	db.On("Find", mock.Anything, bson.M{}, mock.AnythingOfType("*options.FindOptions")).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/staff", nil)
	rr := httptest.NewRecorder()

	s.StaffListHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}
