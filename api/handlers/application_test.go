package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/admitdesk/admissions-api/api"
	"github.com/admitdesk/admissions-api/databases/mocks"
	mailmocks "github.com/admitdesk/admissions-api/mail/mocks"
	"github.com/admitdesk/admissions-api/models"
)

func TestApplication_CreateHandlerValidationError(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	mailer := mailmocks.NewMailer(t)
	a := Application{DB: db, Mail: mailer}

	body := `{"firstName": "Priya", "email": "not-an-email"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registration", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.CreateApplicationHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid registration")
}

func TestApplication_CreateHandlerDuplicateEmail(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	mailer := mailmocks.NewMailer(t)
	a := Application{DB: db, Mail: mailer}

	existing := &models.StudentApplication{Email: "priya@example.edu"}
	db.On("FindOne", mock.Anything, bson.M{"email": "priya@example.edu"}).Return(existing, nil)

	body := `{"firstName": "Priya", "lastName": "Sharma", "course": "BSc Physics", "email": "Priya@Example.edu"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registration", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.CreateApplicationHandler(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "email already registered")
}

func TestApplication_CreateHandlerSuccess(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	mailer := mailmocks.NewMailer(t)
	a := Application{DB: db, Mail: mailer}

	db.On("FindOne", mock.Anything, bson.M{"email": "priya@example.edu"}).Return(nil, mongo.ErrNoDocuments)
	db.On("InsertOne", mock.Anything, mock.AnythingOfType("models.StudentApplication")).Return(primitive.NewObjectID(), nil)
	mailer.On("Send", mock.Anything, "priya@example.edu", "Application Received", mock.Anything, mock.Anything).Return(nil)

	body := `{"firstName": "Priya", "lastName": "Sharma", "course": "BSc Physics", "email": "priya@example.edu"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registration", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.CreateApplicationHandler(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.StudentApplication
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, models.StatusPending, created.Status)
	assert.False(t, created.ID.IsZero())
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))
	assert.False(t, created.FeePaid)
	assert.Empty(t, created.PhotoURL)
}

func TestApplication_CreateHandlerMailFailureStillCreated(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	mailer := mailmocks.NewMailer(t)
	a := Application{DB: db, Mail: mailer}

	db.On("FindOne", mock.Anything, bson.M{"email": "priya@example.edu"}).Return(nil, mongo.ErrNoDocuments)
	db.On("InsertOne", mock.Anything, mock.AnythingOfType("models.StudentApplication")).Return(primitive.NewObjectID(), nil)
	mailer.On("Send", mock.Anything, "priya@example.edu", "Application Received", mock.Anything, mock.Anything).
		Return(errors.New("mail provider returned status 500"))

	body := `{"firstName": "Priya", "lastName": "Sharma", "course": "BSc Physics", "email": "priya@example.edu"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registration", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.CreateApplicationHandler(rr, req)

	// the record is persisted before the send, so the request still succeeds
	assert.Equal(t, http.StatusCreated, rr.Code)
	db.AssertCalled(t, "InsertOne", mock.Anything, mock.AnythingOfType("models.StudentApplication"))
}

func TestApplication_CreateHandlerConcurrentDuplicate(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	mailer := mailmocks.NewMailer(t)
	a := Application{DB: db, Mail: mailer}

	dupErr := mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
	db.On("FindOne", mock.Anything, bson.M{"email": "priya@example.edu"}).Return(nil, mongo.ErrNoDocuments)
	db.On("InsertOne", mock.Anything, mock.AnythingOfType("models.StudentApplication")).Return(nil, dupErr)

	body := `{"firstName": "Priya", "lastName": "Sharma", "course": "BSc Physics", "email": "priya@example.edu"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/registration", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.CreateApplicationHandler(rr, req)

	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestApplication_ByIDHandlerBadHex(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	a := Application{DB: db}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/application/nope", nil)
	req = mux.SetURLVars(req, map[string]string{"application_id": "nope"})
	rr := httptest.NewRecorder()

	a.ApplicationByIDHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestApplication_ByIDHandlerNotFound(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	a := Application{DB: db}

	id := primitive.NewObjectID()
	db.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(nil, mongo.ErrNoDocuments)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/application/"+id.Hex(), nil)
	req = mux.SetURLVars(req, map[string]string{"application_id": id.Hex()})
	rr := httptest.NewRecorder()

	a.ApplicationByIDHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestApplication_ListHandlerInvalidStatusFilter(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	a := Application{DB: db}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/list?status=bogus", nil)
	rr := httptest.NewRecorder()

	a.ListApplicationsHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid status filter")
}

func TestApplication_ListHandlerFiltersByStatus(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	a := Application{DB: db}

	apps := []models.StudentApplication{
		{ID: primitive.NewObjectID(), Email: "a@example.edu", Status: models.StatusApproved},
	}
	db.On("Find", mock.Anything, bson.M{"status": "approved"}, mock.AnythingOfType("*options.FindOptions")).Return(apps, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/list?status=approved", nil)
	rr := httptest.NewRecorder()

	a.ListApplicationsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got []models.StudentApplication
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Len(t, got, 1)
	assert.Equal(t, "a@example.edu", got[0].Email)
}

func TestApplication_ListHandlerEmptyReturnsEmptyArray(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	a := Application{DB: db}

	db.On("Find", mock.Anything, bson.M{}, mock.AnythingOfType("*options.FindOptions")).Return(nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/list", nil)
	rr := httptest.NewRecorder()

	a.ListApplicationsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestApplication_UpdateStatusHandlerRejectsPendingTarget(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	a := Application{DB: db}

	body := `{"studentId": "` + primitive.NewObjectID().Hex() + `", "status": "pending"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/update-status", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.UpdateStatusHandler(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid status")
}

func TestApplication_UpdateStatusHandlerNotFound(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	a := Application{DB: db}

	id := primitive.NewObjectID()
	db.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(nil, mongo.ErrNoDocuments)

	body := `{"studentId": "` + id.Hex() + `", "status": "approved"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/update-status", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.UpdateStatusHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestApplication_UpdateStatusHandlerIdempotentNoOp(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	a := Application{DB: db}

	id := primitive.NewObjectID()
	current := &models.StudentApplication{ID: id, Email: "priya@example.edu", Status: models.StatusApproved}
	db.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(current, nil)

	body := `{"studentId": "` + id.Hex() + `", "status": "approved"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/update-status", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.UpdateStatusHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	db.AssertNotCalled(t, "FindOneAndUpdate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	var got models.StudentApplication
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, models.StatusApproved, got.Status)
}

func TestApplication_UpdateStatusHandlerApprovesPending(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	a := Application{DB: db}

	id := primitive.NewObjectID()
	current := &models.StudentApplication{ID: id, Email: "priya@example.edu", Status: models.StatusPending}
	updated := &models.StudentApplication{ID: id, Email: "priya@example.edu", Status: models.StatusApproved}
	db.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(current, nil)
	db.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": id}, mock.Anything, mock.AnythingOfType("*options.FindOneAndUpdateOptions")).Return(updated, nil)

	body := `{"studentId": "` + id.Hex() + `", "status": "approved"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/update-status", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.UpdateStatusHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.StudentApplication
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, models.StatusApproved, got.Status)
}

func TestApplication_UpdateStatusHandlerReversesDecision(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	a := Application{DB: db}

	id := primitive.NewObjectID()
	current := &models.StudentApplication{ID: id, Email: "priya@example.edu", Status: models.StatusApproved}
	updated := &models.StudentApplication{ID: id, Email: "priya@example.edu", Status: models.StatusDeclined}
	db.On("FindOne", mock.Anything, bson.M{"_id": id}).Return(current, nil)
	db.On("FindOneAndUpdate", mock.Anything, bson.M{"_id": id}, mock.Anything, mock.AnythingOfType("*options.FindOneAndUpdateOptions")).Return(updated, nil)

	body := `{"studentId": "` + id.Hex() + `", "status": "declined"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/update-status", strings.NewReader(body))
	rr := httptest.NewRecorder()

	a.UpdateStatusHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.StudentApplication
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, models.StatusDeclined, got.Status)
}

func TestApplication_StudentProfileHandlerReturnsOwnApplication(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	a := Application{DB: db}

	app := &models.StudentApplication{ID: primitive.NewObjectID(), Email: "priya@example.edu", Status: models.StatusPending}
	db.On("FindOne", mock.Anything, bson.M{"email": "priya@example.edu"}).Return(app, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/profile", nil)
	req = req.WithContext(api.ContextWithStudentEmail(req.Context(), "priya@example.edu"))
	rr := httptest.NewRecorder()

	a.StudentProfileHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got models.StudentApplication
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "priya@example.edu", got.Email)
}

func TestApplication_StudentProfileHandlerRejectsOtherEmail(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	a := Application{DB: db}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/profile?email=someone-else@example.edu", nil)
	req = req.WithContext(api.ContextWithStudentEmail(req.Context(), "priya@example.edu"))
	rr := httptest.NewRecorder()

	a.StudentProfileHandler(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestApplication_StatsHandlerTotalIsSumOfBuckets(t *testing.T) {
	db := mocks.NewApplicationDatabase(t)
	a := Application{DB: db}

	db.On("CountDocuments", mock.Anything, bson.M{"status": models.StatusPending}).Return(int64(7), nil)
	db.On("CountDocuments", mock.Anything, bson.M{"status": models.StatusApproved}).Return(int64(4), nil)
	db.On("CountDocuments", mock.Anything, bson.M{"status": models.StatusDeclined}).Return(int64(2), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/student/stats", nil)
	rr := httptest.NewRecorder()

	a.StatsHandler(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var stats models.ApplicationStats
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, int64(7), stats.Pending)
	assert.Equal(t, int64(4), stats.Approved)
	assert.Equal(t, int64(2), stats.Declined)
	assert.Equal(t, stats.Pending+stats.Approved+stats.Declined, stats.Total)
}
