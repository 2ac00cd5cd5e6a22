package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gorilla/mux"
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

var emailRegexp = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Application handles student application requests
type Application struct {
	DB   databases.ApplicationDatabase
	Mail mail.Mailer
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func validateRegistration(app models.StudentApplication) []string {
	var problems []string
	if strings.TrimSpace(app.FirstName) == "" {
		problems = append(problems, "firstName is required")
	}
	if strings.TrimSpace(app.LastName) == "" {
		problems = append(problems, "lastName is required")
	}
	if strings.TrimSpace(app.Course) == "" {
		problems = append(problems, "course is required")
	}
	if !emailRegexp.MatchString(app.Email) {
		problems = append(problems, "email is missing or malformed")
	}
	return problems
}

// CreateApplicationHandler creates a new student application with status pending.
// The confirmation email is best-effort: the record is already persisted, so a
// mail-provider failure is logged and the request still succeeds.
func (a Application) CreateApplicationHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var app models.StudentApplication
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	app.Email = normalizeEmail(app.Email)
	if problems := validateRegistration(app); len(problems) > 0 {
		config.ErrorStatus("invalid registration", http.StatusBadRequest, w, errors.New(strings.Join(problems, ", ")))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := a.DB.FindOne(ctx, bson.M{"email": app.Email}); err == nil {
		config.ErrorStatus("email already registered", http.StatusConflict, w, errors.New("an application already exists for this email"))
		return
	}

	now := time.Now().UTC()
	app.ID = primitive.NewObjectID()
	app.Status = models.StatusPending
	app.CreatedAt = now
	app.UpdatedAt = now
	app.PhotoURL = ""
	app.FeePaid = false

	if _, err := a.DB.InsertOne(ctx, app); err != nil {
		// the unique index arbitrates concurrent submissions for the same email
		if mongo.IsDuplicateKeyError(err) {
			config.ErrorStatus("email already registered", http.StatusConflict, w, err)
			return
		}
		config.ErrorStatus("failed to create application", http.StatusInternalServerError, w, err)
		return
	}

	if err := a.Mail.Send(r.Context(), app.Email, "Application Received",
		"Thank you for applying. Your application is pending review.",
		templates.RenderApplicationReceived(app.FirstName, app.Course)); err != nil {
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

// ApplicationByIDHandler returns an application by ID
func (a Application) ApplicationByIDHandler(w http.ResponseWriter, r *http.Request) {
	appID := mux.Vars(r)["application_id"]

	zap.S().Debugf("application_id: %v", appID)

	aID, err := primitive.ObjectIDFromHex(appID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := a.DB.FindOne(context.Background(), bson.M{"_id": aID})
	if err != nil {
		config.ErrorStatus("failed to get application by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ListApplicationsHandler returns applications for the review dashboard,
// newest first, optionally filtered by status
func (a Application) ListApplicationsHandler(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	filter := bson.M{}
	if status != "" && status != "all" {
		if !models.ValidStatus(status) {
			config.ErrorStatus("invalid status filter", http.StatusBadRequest, w, errors.New("status must be one of all, pending, approved, declined"))
			return
		}
		filter = bson.M{"status": status}
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := a.DB.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		config.ErrorStatus("failed to get applications", http.StatusInternalServerError, w, err)
		return
	}
	// Because the frontend requires that the data elements exist, if
	// len == 0 then we will just return an empty data object
	if len(dbResp) == 0 {
		dbResp = []models.StudentApplication{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type updateStatusRequest struct {
	StudentID string `json:"studentId"`
	Status    string `json:"status"`
}

// UpdateStatusHandler moves an application to approved or declined. Setting the
// status it already has is an idempotent no-op success. Admins may flip a
// decision, so approved and declined both remain reachable from each other.
func (a Application) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	// pending is the initial state only, never a transition target
	if req.Status != models.StatusApproved && req.Status != models.StatusDeclined {
		config.ErrorStatus("invalid status", http.StatusBadRequest, w, errors.New("status must be approved or declined"))
		return
	}

	aID, err := primitive.ObjectIDFromHex(req.StudentID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	current, err := a.DB.FindOne(ctx, bson.M{"_id": aID})
	if err != nil {
		config.ErrorStatus("failed to get application by ID", http.StatusNotFound, w, err)
		return
	}

	if current.Status == req.Status {
		b, _ := json.Marshal(current)
		w.WriteHeader(http.StatusOK)
		w.Write(b)
		return
	}

	updated, err := a.DB.FindOneAndUpdate(ctx,
		bson.M{"_id": aID},
		bson.M{"$set": bson.M{"status": req.Status, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if err != nil {
		config.ErrorStatus("failed to update application status", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("application status updated",
		"applicationId", req.StudentID,
		"from", current.Status,
		"to", req.Status)

	b, err := json.Marshal(updated)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// StatsHandler returns the aggregate application counts. Public on the student
// route for the homepage ticker, admin-guarded on the dashboard route.
func (a Application) StatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	stats, err := computeStats(ctx, a.DB)
	if err != nil {
		config.ErrorStatus("failed to compute stats", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(stats)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// computeStats counts applications per status. Total is derived from the three
// buckets so the invariant total == pending+approved+declined always holds.
func computeStats(ctx context.Context, db databases.ApplicationDatabase) (models.ApplicationStats, error) {
	var stats models.ApplicationStats
	var err error

	if stats.Pending, err = db.CountDocuments(ctx, bson.M{"status": models.StatusPending}); err != nil {
		return stats, err
	}
	if stats.Approved, err = db.CountDocuments(ctx, bson.M{"status": models.StatusApproved}); err != nil {
		return stats, err
	}
	if stats.Declined, err = db.CountDocuments(ctx, bson.M{"status": models.StatusDeclined}); err != nil {
		return stats, err
	}
	stats.Total = stats.Pending + stats.Approved + stats.Declined
	return stats, nil
}

// StudentProfileHandler returns the authenticated student's own application
func (a Application) StudentProfileHandler(w http.ResponseWriter, r *http.Request) {
	authEmail, ok := api.StudentEmailFromContext(r.Context())
	if !ok {
		config.ErrorStatus("no authenticated student", http.StatusUnauthorized, w, errors.New("missing session"))
		return
	}

	email := normalizeEmail(r.URL.Query().Get("email"))
	if email == "" {
		email = authEmail
	}
	if email != authEmail {
		config.ErrorStatus("cannot read another student's profile", http.StatusUnauthorized, w, errors.New("email does not match session"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := a.DB.FindOne(ctx, bson.M{"email": email})
	if err != nil {
		config.ErrorStatus("failed to get application by email", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type profileUpdateRequest struct {
	Mobile         string                  `json:"mobile"`
	DOB            string                  `json:"dob"`
	Gender         string                  `json:"gender"`
	Category       string                  `json:"category"`
	CurrentAddress string                  `json:"currentAddress"`
	AbcID          string                  `json:"abcId"`
	PhotoURL       string                  `json:"photoUrl"`
	ClassX         *models.EducationRecord `json:"classX"`
	ClassXII       *models.EducationRecord `json:"classXII"`
}

// UpdateStudentProfileHandler updates the mutable fields of the authenticated
// student's own application. Status, email and createdAt are server-owned.
func (a Application) UpdateStudentProfileHandler(w http.ResponseWriter, r *http.Request) {
	authEmail, ok := api.StudentEmailFromContext(r.Context())
	if !ok {
		config.ErrorStatus("no authenticated student", http.StatusUnauthorized, w, errors.New("missing session"))
		return
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if req.Mobile != "" {
		set["mobile"] = req.Mobile
	}
	if req.DOB != "" {
		set["dob"] = req.DOB
	}
	if req.Gender != "" {
		set["gender"] = req.Gender
	}
	if req.Category != "" {
		set["category"] = req.Category
	}
	if req.CurrentAddress != "" {
		set["currentAddress"] = req.CurrentAddress
	}
	if req.AbcID != "" {
		set["abcId"] = req.AbcID
	}
	if req.PhotoURL != "" {
		set["photoUrl"] = req.PhotoURL
	}
	if req.ClassX != nil {
		set["classX"] = *req.ClassX
	}
	if req.ClassXII != nil {
		set["classXII"] = *req.ClassXII
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	updated, err := a.DB.FindOneAndUpdate(ctx,
		bson.M{"email": authEmail},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After))
	if err != nil {
		config.ErrorStatus("failed to update profile", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(updated)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
