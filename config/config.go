package config

import (
	"encoding/json"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/admitdesk/admissions-api/models"
)

// Config holds the project config values
type Config struct {
	URL                  string
	DatabaseName         string
	BaseURL              string
	Port                 string
	SendgridAPIKey       string
	FromEmail            string
	JWTSecret            string
	StripeSecretKey      string
	AdmissionsOfficeMail string
}

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	logger, err := setLogger(os.Getenv("APP_ENV"))
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:                  os.Getenv("DB_URI"),
		DatabaseName:         os.Getenv("DB_NAME"),
		BaseURL:              os.Getenv("BASE_URL"),
		Port:                 os.Getenv("PORT"),
		SendgridAPIKey:       os.Getenv("SENDGRID_API_KEY"),
		FromEmail:            os.Getenv("FROM_EMAIL"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		StripeSecretKey:      os.Getenv("STRIPE_SECRET_KEY"),
		AdmissionsOfficeMail: os.Getenv("ADMISSIONS_OFFICE_EMAIL"),
	}
}

func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	default:
		return zap.NewExample(), nil
	}
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: err.Error()}})
	w.Write(b)
}
