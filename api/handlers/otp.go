package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/admitdesk/admissions-api/api"
	"github.com/admitdesk/admissions-api/config"
	"github.com/admitdesk/admissions-api/databases"
	"github.com/admitdesk/admissions-api/mail"
	"github.com/admitdesk/admissions-api/models"
	templates "github.com/admitdesk/admissions-api/templates/html"
)

// otpTTL is how long a login code stays valid
const otpTTL = 5 * time.Minute

// Otp handles the passwordless student login flow
type Otp struct {
	ODB  databases.OtpDatabase
	ADB  databases.ApplicationDatabase
	Mail mail.Mailer
}

// SendLoginOtpHandler generates a one-time login code for a registered student
// and emails it. Unlike the registration confirmation, delivery failure here is
// fatal: without the code the login cannot proceed, so the stored code is
// removed and the provider error surfaced.
func (o Otp) SendLoginOtpHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var requestBody struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	email := normalizeEmail(requestBody.Email)
	if email == "" {
		config.ErrorStatus("email is required", http.StatusBadRequest, w, errors.New("missing email"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// students must register before they can log in
	if _, err := o.ADB.FindOne(ctx, bson.M{"email": email}); err != nil {
		config.ErrorStatus("no application found for this email", http.StatusNotFound, w, err)
		return
	}

	// Generate a 6-digit code
	code := fmt.Sprintf("%06d", 100000+rand.Intn(900000))

	now := time.Now().UTC()
	otp := models.LoginOtp{
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(otpTTL),
		CreatedAt: now,
	}

	// one live code per email: a fresh request replaces any previous code
	if _, err := o.ODB.ReplaceOne(ctx, bson.M{"email": email}, otp, options.Replace().SetUpsert(true)); err != nil {
		config.ErrorStatus("failed to store login code", http.StatusInternalServerError, w, err)
		return
	}

	plainText := "Your login code is " + code + ". It expires in 5 minutes."
	if err := o.Mail.Send(r.Context(), email, "Your Login Code", plainText, templates.RenderLoginCode(code)); err != nil {
		// a code that was never delivered must not stay live
		if _, delErr := o.ODB.DeleteOne(ctx, bson.M{"email": email}); delErr != nil {
			zap.S().Errorw("failed to remove undelivered login code",
				"email", email,
				"error", delErr)
		}
		config.ErrorStatus("failed to deliver login code", http.StatusBadGateway, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}

// VerifyLoginOtpHandler verifies a login code and issues a bearer token for the
// student dashboard. The code is consumed atomically, so a replayed or raced
// verification always fails.
func (o Otp) VerifyLoginOtpHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var requestBody struct {
		Email string `json:"email"`
		Otp   string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	email := normalizeEmail(requestBody.Email)
	if email == "" || requestBody.Otp == "" {
		config.ErrorStatus("email and otp are required", http.StatusBadRequest, w, errors.New("missing email or otp"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := time.Now().UTC()

	// single atomic check-and-consume: only a live matching code is deleted
	_, err := o.ODB.FindOneAndDelete(ctx, bson.M{
		"email":     email,
		"code":      requestBody.Otp,
		"expiresAt": bson.M{"$gt": now},
	})
	if err != nil {
		// distinguish a wrong guess from an expired or never-requested code;
		// a wrong guess must not consume the live code
		if _, liveErr := o.ODB.FindOne(ctx, bson.M{"email": email, "expiresAt": bson.M{"$gt": now}}); liveErr != nil {
			config.ErrorStatus("login code expired or not requested", http.StatusGone, w, err)
			return
		}
		config.ErrorStatus("invalid login code", http.StatusUnauthorized, w, err)
		return
	}

	application, err := o.ADB.FindOne(ctx, bson.M{"email": email})
	if err != nil {
		config.ErrorStatus("failed to get application by email", http.StatusNotFound, w, err)
		return
	}

	token := api.IssueStudentToken(r, email, application.ID.Hex())

	response := map[string]string{
		"token":  token,
		"id":     application.ID.Hex(),
		"status": application.Status,
	}
	b, err := json.Marshal(response)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// StudentLogoutHandler revokes the caller's bearer token
func (o Otp) StudentLogoutHandler(w http.ResponseWriter, r *http.Request) {
	token := api.BearerToken(r)
	api.RevokeStudentToken(r, token)
	body := fmt.Sprintf(`{"revoked token": "%s"}`, token)
	w.Write([]byte(body))
}
