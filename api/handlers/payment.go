package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/admitdesk/admissions-api/api"
	"github.com/admitdesk/admissions-api/config"
	"github.com/admitdesk/admissions-api/databases"
)

// applicationFeeCents is the fixed, one-time application fee
const applicationFeeCents int64 = 5000

// Payment handles the application-fee checkout flow
type Payment struct {
	DB databases.ApplicationDatabase
}

// CreateFeeCheckoutHandler creates a Stripe Checkout Session for the
// authenticated student's application fee
func (p Payment) CreateFeeCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	authEmail, ok := api.StudentEmailFromContext(r.Context())
	if !ok {
		config.ErrorStatus("no authenticated student", http.StatusUnauthorized, w, errors.New("missing session"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	application, err := p.DB.FindOne(ctx, bson.M{"email": authEmail})
	if err != nil {
		config.ErrorStatus("failed to get application by email", http.StatusNotFound, w, err)
		return
	}
	if application.FeePaid {
		config.ErrorStatus("application fee already paid", http.StatusBadRequest, w, errors.New("fee already paid"))
		return
	}

	baseURL := strings.TrimRight(os.Getenv("PUBLIC_WEB_BASE_URL"), "/")
	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(authEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Application fee"),
					},
					UnitAmount: stripe.Int64(applicationFeeCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(baseURL + "/fee/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(baseURL + "/fee/cancel"),
	}

	s, err := session.New(params)
	if err != nil {
		config.ErrorStatus("failed to create checkout session", http.StatusBadGateway, w, err)
		return
	}

	response := map[string]string{
		"sessionId":   s.ID,
		"checkoutUrl": s.URL,
	}
	b, err := json.Marshal(response)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ConfirmFeePaymentHandler verifies a completed checkout session with Stripe
// and marks the application fee as paid
func (p Payment) ConfirmFeePaymentHandler(w http.ResponseWriter, r *http.Request) {
	authEmail, ok := api.StudentEmailFromContext(r.Context())
	if !ok {
		config.ErrorStatus("no authenticated student", http.StatusUnauthorized, w, errors.New("missing session"))
		return
	}

	var requestBody struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if requestBody.SessionID == "" {
		config.ErrorStatus("sessionId is required", http.StatusBadRequest, w, errors.New("missing sessionId"))
		return
	}

	s, err := session.Get(requestBody.SessionID, nil)
	if err != nil {
		config.ErrorStatus("failed to fetch checkout session", http.StatusBadGateway, w, err)
		return
	}
	if s.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		config.ErrorStatus("payment not completed", http.StatusBadRequest, w, errors.New("checkout session is not paid"))
		return
	}
	if s.CustomerEmail != "" && !strings.EqualFold(s.CustomerEmail, authEmail) {
		config.ErrorStatus("checkout session does not belong to this student", http.StatusUnauthorized, w, errors.New("email mismatch"))
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	if _, err := p.DB.UpdateOne(ctx,
		bson.M{"email": authEmail},
		bson.M{"$set": bson.M{"feePaid": true, "updatedAt": time.Now().UTC()}}); err != nil {
		config.ErrorStatus("failed to record fee payment", http.StatusInternalServerError, w, err)
		return
	}

	zap.S().Infow("application fee paid", "email", authEmail, "sessionId", s.ID)

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"success": true}`))
}
