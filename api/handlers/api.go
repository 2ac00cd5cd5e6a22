package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/admitdesk/admissions-api/api"
	"github.com/admitdesk/admissions-api/api/scheduler"
	"github.com/admitdesk/admissions-api/config"
	"github.com/admitdesk/admissions-api/databases"
	"github.com/admitdesk/admissions-api/mail"
)

// App stores the router, db connection and mailer, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	Mailer   mail.Mailer
	dbHelper databases.DatabaseHelper
	sched    *scheduler.Scheduler
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// setup go-guardian for the student session middleware
	api.SetupGoGuardian()

	r := api.NewRouter()

	app := Application{DB: databases.NewApplicationDatabase(a.dbHelper), Mail: a.Mailer}
	otp := Otp{ODB: databases.NewOtpDatabase(a.dbHelper), ADB: databases.NewApplicationDatabase(a.dbHelper), Mail: a.Mailer}
	adm := Admin{ADB: databases.NewAdminDatabase(a.dbHelper)}
	fac := Faculty{DB: databases.NewFacultyDatabase(a.dbHelper), Mail: a.Mailer}
	st := Staff{DB: databases.NewStaffDatabase(a.dbHelper), Mail: a.Mailer}
	pay := Payment{DB: databases.NewApplicationDatabase(a.dbHelper)}
	feed := StatsFeed{DB: databases.NewApplicationDatabase(a.dbHelper)}
	cloudinaryHandler := CloudinaryHandler{}

	apiCreate := r.PathPrefix("/api/v1").Subrouter()
	// the websocket feed stays off this subrouter, a request timeout would kill it
	apiCreate.Use(api.TimeoutMiddleware(30 * time.Second))

	apiCreate.Handle("/registration", http.HandlerFunc(app.CreateApplicationHandler)).Methods("POST")
	apiCreate.Handle("/registration/faculty", http.HandlerFunc(fac.CreateFacultyApplicationHandler)).Methods("POST")
	apiCreate.Handle("/registration/staff", http.HandlerFunc(st.CreateStaffApplicationHandler)).Methods("POST")

	apiCreate.Handle("/student/stats", http.HandlerFunc(app.StatsHandler)).Methods("GET")
	apiCreate.Handle("/student/send-login-otp", http.HandlerFunc(otp.SendLoginOtpHandler)).Methods("POST")
	apiCreate.Handle("/student/verify-login-otp", http.HandlerFunc(otp.VerifyLoginOtpHandler)).Methods("POST")
	apiCreate.Handle("/student/logout", api.StudentMiddleware(http.HandlerFunc(otp.StudentLogoutHandler))).Methods("POST")
	apiCreate.Handle("/student/profile", api.StudentMiddleware(http.HandlerFunc(app.StudentProfileHandler))).Methods("GET")
	apiCreate.Handle("/student/profile", api.StudentMiddleware(http.HandlerFunc(app.UpdateStudentProfileHandler))).Methods("PUT")
	apiCreate.Handle("/student/fee/checkout-session", api.StudentMiddleware(http.HandlerFunc(pay.CreateFeeCheckoutHandler))).Methods("POST")
	apiCreate.Handle("/student/fee/confirm", api.StudentMiddleware(http.HandlerFunc(pay.ConfirmFeePaymentHandler))).Methods("POST")
	apiCreate.Handle("/student/photo/signature", api.StudentMiddleware(http.HandlerFunc(cloudinaryHandler.GenerateSignature))).Methods("POST")

	apiCreate.Handle("/admin/login", http.HandlerFunc(adm.AdminLoginHandler)).Methods("POST")
	apiCreate.Handle("/admin/logout", api.AdminMiddleware(http.HandlerFunc(adm.AdminLogoutHandler))).Methods("POST")
	apiCreate.Handle("/admin/stats", api.AdminMiddleware(http.HandlerFunc(app.StatsHandler))).Methods("GET")
	apiCreate.Handle("/admin/list", api.AdminMiddleware(http.HandlerFunc(app.ListApplicationsHandler))).Methods("GET")
	apiCreate.Handle("/admin/application/{application_id}", api.AdminMiddleware(http.HandlerFunc(app.ApplicationByIDHandler))).Methods("GET")
	apiCreate.Handle("/admin/update-status", api.AdminMiddleware(http.HandlerFunc(app.UpdateStatusHandler))).Methods("POST")
	apiCreate.Handle("/admin/faculty", api.AdminMiddleware(http.HandlerFunc(fac.FacultyListHandler))).Methods("GET")
	apiCreate.Handle("/admin/staff", api.AdminMiddleware(http.HandlerFunc(st.StaffListHandler))).Methods("GET")

	// live stats feed for the homepage ticker
	r.Handle("/ws/stats", http.HandlerFunc(feed.StatsFeedHandler))

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("admissions-api has connected to the database")

	// unique email indexes arbitrate concurrent registrations
	ctx, cancel := api.WithQueryTimeout(context.Background())
	defer cancel()
	for _, ensure := range []func(context.Context) error{
		databases.NewApplicationDatabase(a.dbHelper).EnsureIndexes,
		databases.NewOtpDatabase(a.dbHelper).EnsureIndexes,
		databases.NewFacultyDatabase(a.dbHelper).EnsureIndexes,
		databases.NewStaffDatabase(a.dbHelper).EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			zap.S().With(err).Error("failed to ensure indexes")
			return err
		}
	}

	if a.Mailer == nil {
		fromEmail := a.Config.FromEmail
		if fromEmail == "" {
			fromEmail = "no-reply@admitdesk.edu"
		}
		a.Mailer = mail.NewSendgridMailer(a.Config.SendgridAPIKey, "AdmitDesk Admissions", fromEmail)
	}

	// initialize stripe for the application-fee checkout
	stripe.Key = a.Config.StripeSecretKey
	if stripe.Key == "" {
		zap.S().Warn("stripe secret key is not set, fee checkout will be unavailable")
	}

	// initialize api router
	a.initializeRoutes()

	// background jobs: otp purge and the daily admissions digest
	a.sched = scheduler.New(
		databases.NewOtpDatabase(a.dbHelper),
		databases.NewApplicationDatabase(a.dbHelper),
		a.Mailer,
		a.Config.AdmissionsOfficeMail,
	)
	a.sched.Start()

	return nil
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}
