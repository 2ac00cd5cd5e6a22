package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/admitdesk/admissions-api/api"
	"github.com/admitdesk/admissions-api/config"
	"github.com/admitdesk/admissions-api/databases"
	"github.com/admitdesk/admissions-api/mail"
	"github.com/admitdesk/admissions-api/models"
	templates "github.com/admitdesk/admissions-api/templates/html"
)

// Faculty handles faculty registration requests
type Faculty struct {
	DB   databases.FacultyDatabase
	Mail mail.Mailer
}

// CreateFacultyApplicationHandler creates a new faculty application with status pending
func (f Faculty) CreateFacultyApplicationHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var app models.FacultyApplication
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	app.Email = normalizeEmail(app.Email)
	var problems []string
	if strings.TrimSpace(app.FirstName) == "" {
		problems = append(problems, "firstName is required")
	}
	if strings.TrimSpace(app.LastName) == "" {
		problems = append(problems, "lastName is required")
	}
	if strings.TrimSpace(app.Department) == "" {
		problems = append(problems, "department is required")
	}
	if !emailRegexp.MatchString(app.Email) {
		problems = append(problems, "email is missing or malformed")
	}
	if len(problems) > 0 {
		config.ErrorStatus("invalid registration", http.StatusBadRequest, w, errors.New(strings.Join(problems, ", ")))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := f.DB.FindOne(ctx, bson.M{"email": app.Email}); err == nil {
		config.ErrorStatus("email already registered", http.StatusConflict, w, errors.New("an application already exists for this email"))
		return
	}

	now := time.Now().UTC()
	app.ID = primitive.NewObjectID()
	app.Status = models.StatusPending
	app.CreatedAt = now
	app.UpdatedAt = now

	if _, err := f.DB.InsertOne(ctx, app); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			config.ErrorStatus("email already registered", http.StatusConflict, w, err)
			return
		}
		config.ErrorStatus("failed to create application", http.StatusInternalServerError, w, err)
		return
	}

	if err := f.Mail.Send(r.Context(), app.Email, "Application Received",
		"Thank you for your interest in joining the faculty. Your application is pending review.",
		templates.RenderGenericEmail("Application Received", "Thank you for your interest in joining the faculty. Your application is pending review by the admissions office.")); err != nil {
		zap.S().Errorw("failed to send confirmation email, application already created",
			"email", app.Email,
			"error", err)
	}

	b, err := json.Marshal(app)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// FacultyListHandler returns all faculty applications, newest first
func (f Faculty) FacultyListHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := f.DB.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		config.ErrorStatus("failed to get faculty applications", http.StatusInternalServerError, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.FacultyApplication{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
