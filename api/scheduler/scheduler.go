package scheduler

import (
	"context"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/admitdesk/admissions-api/databases"
	"github.com/admitdesk/admissions-api/mail"
	"github.com/admitdesk/admissions-api/models"
	templates "github.com/admitdesk/admissions-api/templates/html"
)

// Scheduler handles periodic background jobs for the admissions portal
type Scheduler struct {
	cron     *cron.Cron
	ODB      databases.OtpDatabase
	ADB      databases.ApplicationDatabase
	Mail     mail.Mailer
	digestTo string
}

// New creates a new scheduler instance
func New(oDB databases.OtpDatabase, aDB databases.ApplicationDatabase, mailer mail.Mailer, digestTo string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		ODB:      oDB,
		ADB:      aDB,
		Mail:     mailer,
		digestTo: digestTo,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Purge expired login codes every 10 minutes
	_, err := s.cron.AddFunc("*/10 * * * *", s.purgeExpiredOtps)
	if err != nil {
		zap.S().Errorw("failed to register otp purge job", "error", err)
	}

	// Send the review-queue digest to the admissions office daily at 8 AM UTC
	_, err = s.cron.AddFunc("0 8 * * *", s.sendPendingDigest)
	if err != nil {
		zap.S().Errorw("failed to register digest job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("admissions scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("admissions scheduler stopped")
}

func (s *Scheduler) purgeExpiredOtps() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.ODB.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": time.Now().UTC()}})
	if err != nil {
		zap.S().Errorw("failed to purge expired login codes", "error", err)
		return
	}
	if deleted > 0 {
		zap.S().Infow("purged expired login codes", "count", deleted)
	}
}

func (s *Scheduler) sendPendingDigest() {
	if s.digestTo == "" {
		zap.S().Debug("no admissions office email configured, skipping digest")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pending, err := s.ADB.CountDocuments(ctx, bson.M{"status": models.StatusPending})
	if err != nil {
		zap.S().Errorw("failed to count pending applications for digest", "error", err)
		return
	}
	approved, err := s.ADB.CountDocuments(ctx, bson.M{"status": models.StatusApproved})
	if err != nil {
		zap.S().Errorw("failed to count approved applications for digest", "error", err)
		return
	}
	declined, err := s.ADB.CountDocuments(ctx, bson.M{"status": models.StatusDeclined})
	if err != nil {
		zap.S().Errorw("failed to count declined applications for digest", "error", err)
		return
	}

	plainText := "Pending applications awaiting review: " + strconv.FormatInt(pending, 10)
	if err := s.Mail.Send(ctx, s.digestTo, "Daily Admissions Digest", plainText,
		templates.RenderPendingDigest(pending, approved, declined)); err != nil {
		// the digest is advisory, the next run will catch up
		zap.S().Errorw("failed to send admissions digest", "error", err)
		return
	}

	zap.S().Infow("admissions digest sent", "pending", pending)
}
