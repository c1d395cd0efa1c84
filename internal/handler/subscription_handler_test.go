package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshkonopka69/fitness-sub000/internal/models"
	"github.com/joshkonopka69/fitness-sub000/internal/service"
	"github.com/joshkonopka69/fitness-sub000/pkg/billing"
	appErrors "github.com/joshkonopka69/fitness-sub000/pkg/errors"
)

type fakeSubscriptions struct {
	checkout    service.CheckoutRequest
	checkoutErr error
}

func (f *fakeSubscriptions) Status(context.Context, string) (*models.SubscriptionStatus, error) {
	return &models.SubscriptionStatus{}, nil
}

func (f *fakeSubscriptions) TrialInfo(context.Context, string) *models.TrialInfo {
	return &models.TrialInfo{Stale: true}
}

func (f *fakeSubscriptions) Checkout(_ context.Context, _ string, req service.CheckoutRequest) (*billing.CheckoutSession, error) {
	f.checkout = req
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	return &billing.CheckoutSession{}, nil
}

func (f *fakeSubscriptions) ConfirmCheckout(context.Context, string, service.ConfirmCheckoutRequest) (*models.SubscriptionStatus, error) {
	return &models.SubscriptionStatus{}, nil
}

func TestSubscriptionTrialAlwaysOK(t *testing.T) {
	h := NewSubscriptionHandler(&fakeSubscriptions{})
	c, rec := newCoachContext(http.MethodGet, "/subscription/trial", "")
	h.Trial(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), `"stale":true`)
}

func TestSubscriptionCheckoutUpstreamFailure(t *testing.T) {
	subs := &fakeSubscriptions{checkoutErr: appErrors.Clone(appErrors.ErrUpstream, "card declined")}
	h := NewSubscriptionHandler(subs)

	c, rec := newCoachContext(http.MethodPost, "/subscription/checkout", `{"email":"coach@example.com","plan":"monthly"}`)
	h.Checkout(c)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, models.SubscriptionPlan("monthly"), subs.checkout.Plan)
	assert.Equal(t, "card declined", decodeEnvelope(t, rec).Error.Message)
}
