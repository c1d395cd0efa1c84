package billing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSubscriptionSuccess(t *testing.T) {
	var got CheckoutRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(CheckoutSession{
			SubscriptionID:  "sub_1",
			CustomerID:      "cus_1",
			ClientSecret:    "pi_1_secret",
			PaymentIntentID: "pi_1",
			EphemeralKey:    "ek_1",
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", time.Second, nil)
	session, err := client.CreateSubscription(context.Background(), CheckoutRequest{CoachID: "c1", PriceID: "price_m", Email: "a@b.pl", Plan: "monthly"})
	require.NoError(t, err)
	assert.Equal(t, "sub_1", session.SubscriptionID)
	assert.Equal(t, "pi_1_secret", session.ClientSecret)
	assert.Equal(t, "price_m", got.PriceID)
	assert.Equal(t, "c1", got.CoachID)
}

func TestCreateSubscriptionUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"No such price"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second, nil)
	_, err := client.CreateSubscription(context.Background(), CheckoutRequest{CoachID: "c1"})
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusBadRequest, upstream.StatusCode)
	assert.Equal(t, "No such price", upstream.Message)
}

func TestCreateSubscriptionNotConfigured(t *testing.T) {
	client := NewClient("", "", 0, nil)
	_, err := client.CreateSubscription(context.Background(), CheckoutRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
