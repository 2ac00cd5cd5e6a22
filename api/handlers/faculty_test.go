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

func TestFaculty_CreateHandlerValidationError(t *testing.T) {
	db := mocks.NewFacultyDatabase(t)
	mailer := mailmocks.NewMailer(t)
	f := Faculty{DB: db, Mail: mailer}

	body := `{"firstName": "Anil", "email": "anil@example.edu"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registration/faculty", strings.NewReader(body))
	rr := httptest.NewRecorder()

	f.CreateFacultyApplicationHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid registration")
}

func TestFaculty_CreateHandlerSuccess(t *testing.T) {
	db := mocks.NewFacultyDatabase(t)
	mailer := mailmocks.NewMailer(t)
	f := Faculty{DB: db, Mail: mailer}

	db.On("FindOne", mock.Anything, bson.M{"email": "anil@example.edu"}).Return(nil, mongo.ErrNoDocuments)
	db.On("InsertOne", mock.Anything, mock.AnythingOfType("models.FacultyApplication")).Return(primitive.NewObjectID(), nil)
	mailer.On("Send", mock.Anything, "anil@example.edu", "Application Received", mock.Anything, mock.Anything).Return(nil)

	body := `{"firstName": "Anil", "lastName": "Kumar", "department": "Physics", "email": "anil@example.edu"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registration/faculty", strings.NewReader(body))
	rr := httptest.NewRecorder()

	f.CreateFacultyApplicationHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.FacultyApplication
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, models.StatusPending, created.Status)
	assert.Equal(t, "Physics", created.Department)
}

func TestFaculty_CreateHandlerDuplicateEmail(t *testing.T) {
	db := mocks.NewFacultyDatabase(t)
	mailer := mailmocks.NewMailer(t)
	f := Faculty{DB: db, Mail: mailer}

	db.On("FindOne", mock.Anything, bson.M{"email": "anil@example.edu"}).
		Return(&models.FacultyApplication{Email: "anil@example.edu"}, nil)

	body := `{"firstName": "Anil", "lastName": "Kumar", "department": "Physics", "email": "anil@example.edu"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registration/faculty", strings.NewReader(body))
	rr := httptest.NewRecorder()

	f.CreateFacultyApplicationHandler(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestFaculty_ListHandlerEmptyReturnsEmptyArray(t *testing.T) {
	db := mocks.NewFacultyDatabase(t)
	f := Faculty{DB: db}

	db.On("Find", mock.Anything, bson.M{}, mock.AnythingOfType("*options.FindOptions")).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/faculty", nil)
	rr := httptest.NewRecorder()

	f.FacultyListHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}
