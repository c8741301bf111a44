package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/promptcraft/server/internal/module/quota"
	"github.com/promptcraft/server/internal/shared/config"
	"github.com/stripe/stripe-go/v76"
	checkoutsession "github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// TierSetter flips a user's quota tier. The quota service implements it.
type TierSetter interface {
	SetTier(ctx context.Context, userID, appID string, tier quota.Tier) error
}

// CheckoutSession is the client-facing view of a created checkout.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// Service sells the pro tier through Stripe. Quota only ever reads the tier;
// this is the single writer.
type Service struct {
	cfg    *config.StripeConfig
	tiers  TierSetter
	appID  string
	logger *zap.Logger
}

// NewService creates a new billing service.
func NewService(cfg *config.StripeConfig, tiers TierSetter, appID string, logger *zap.Logger) *Service {
	stripe.Key = cfg.SecretKey
	return &Service{
		cfg:    cfg,
		tiers:  tiers,
		appID:  appID,
		logger: logger,
	}
}

// CreateCheckout starts a subscription checkout for the pro tier. The user
// id rides along as metadata so the webhook can resolve it.
func (s *Service) CreateCheckout(ctx context.Context, userID string) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.cfg.ProPriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		ClientReferenceID: stripe.String(userID),
	}
	params.AddMetadata("user_id", userID)

	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &CheckoutSession{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}

// VerifyWebhookSignature validates a Stripe webhook payload.
func (s *Service) VerifyWebhookSignature(payload []byte, signature string) (*stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, s.cfg.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}
	return &event, nil
}

// HandleEvent applies one Stripe event. Checkout completion upgrades the
// user to pro, subscription deletion downgrades back to free. Unknown event
// types are acknowledged and ignored.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		userID := eventUserID(event)
		if userID == "" {
			s.logger.Warn("checkout completed without user reference",
				zap.String("event_id", event.ID))
			return nil
		}
		if err := s.tiers.SetTier(ctx, userID, s.appID, quota.TierPro); err != nil {
			return fmt.Errorf("upgrade tier: %w", err)
		}
		s.logger.Info("user upgraded to pro", zap.String("user_id", userID))
		return nil

	case "customer.subscription.deleted":
		userID := eventUserID(event)
		if userID == "" {
			s.logger.Warn("subscription deleted without user reference",
				zap.String("event_id", event.ID))
			return nil
		}
		if err := s.tiers.SetTier(ctx, userID, s.appID, quota.TierFree); err != nil {
			return fmt.Errorf("downgrade tier: %w", err)
		}
		s.logger.Info("user downgraded to free", zap.String("user_id", userID))
		return nil

	default:
		s.logger.Debug("ignoring webhook event", zap.String("type", string(event.Type)))
		return nil
	}
}

// eventUserID resolves the user id from event metadata, falling back to the
// checkout client reference.
func eventUserID(event *stripe.Event) string {
	var obj struct {
		Metadata          map[string]string `json:"metadata"`
		ClientReferenceID string            `json:"client_reference_id"`
	}
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil {
		return ""
	}
	if id := obj.Metadata["user_id"]; id != "" {
		return id
	}
	return obj.ClientReferenceID
}
