package billing

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/promptcraft/server/internal/module/quota"
	"github.com/promptcraft/server/internal/shared/config"
	"github.com/stripe/stripe-go/v76"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTiers struct {
	tiers map[string]quota.Tier
}

func (f *fakeTiers) SetTier(ctx context.Context, userID, appID string, tier quota.Tier) error {
	if f.tiers == nil {
		f.tiers = make(map[string]quota.Tier)
	}
	f.tiers[userID] = tier
	return nil
}

func newTestBilling(tiers *fakeTiers) *Service {
	return NewService(&config.StripeConfig{}, tiers, "promptcraft", zap.NewNop())
}

func checkoutEvent(t *testing.T, eventType string, object map[string]any) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	return &stripe.Event{
		ID:   "evt_test",
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleEvent_CheckoutCompletedUpgradesToPro(t *testing.T) {
	tiers := &fakeTiers{}
	svc := newTestBilling(tiers)

	event := checkoutEvent(t, "checkout.session.completed", map[string]any{
		"metadata": map[string]string{"user_id": "user-1"},
	})
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	assert.Equal(t, quota.TierPro, tiers.tiers["user-1"])
}

func TestHandleEvent_FallsBackToClientReference(t *testing.T) {
	tiers := &fakeTiers{}
	svc := newTestBilling(tiers)

	event := checkoutEvent(t, "checkout.session.completed", map[string]any{
		"client_reference_id": "user-2",
	})
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	assert.Equal(t, quota.TierPro, tiers.tiers["user-2"])
}

func TestHandleEvent_SubscriptionDeletedDowngrades(t *testing.T) {
	tiers := &fakeTiers{tiers: map[string]quota.Tier{"user-1": quota.TierPro}}
	svc := newTestBilling(tiers)

	event := checkoutEvent(t, "customer.subscription.deleted", map[string]any{
		"metadata": map[string]string{"user_id": "user-1"},
	})
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	assert.Equal(t, quota.TierFree, tiers.tiers["user-1"])
}

func TestHandleEvent_IgnoresUnknownTypes(t *testing.T) {
	tiers := &fakeTiers{}
	svc := newTestBilling(tiers)

	event := checkoutEvent(t, "invoice.paid", map[string]any{})
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	assert.Empty(t, tiers.tiers)
}

func TestHandleEvent_MissingUserReferenceIsAcknowledged(t *testing.T) {
	tiers := &fakeTiers{}
	svc := newTestBilling(tiers)

	event := checkoutEvent(t, "checkout.session.completed", map[string]any{})
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	assert.Empty(t, tiers.tiers)
}
