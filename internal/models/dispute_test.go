package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"
)

func TestMapStripeStatus_KnownStatuses(t *testing.T) {
	known := []DisputeStatus{
		DisputeStatusWarningUnderReview,
		DisputeStatusWarningClosed,
		DisputeStatusWarningNeedsResponse,
		DisputeStatusUnderReview,
		DisputeStatusChargeRefunded,
		DisputeStatusWon,
		DisputeStatusLost,
	}

	for _, status := range known {
		t.Run(string(status), func(t *testing.T) {
			assert.Equal(t, status, MapStripeStatus(stripe.DisputeStatus(status)))
		})
	}
}

func TestMapStripeStatus_UnknownFallsBackToUnderReview(t *testing.T) {
	for _, raw := range []string{"", "needs_response", "prevented", "WON", "something_new"} {
		t.Run(raw, func(t *testing.T) {
			got := MapStripeStatus(stripe.DisputeStatus(raw))
			assert.Equal(t, DisputeStatusUnderReview, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestClosedStatus(t *testing.T) {
	assert.Equal(t, DisputeStatusWon, ClosedStatus(stripe.DisputeStatusWon))
	assert.Equal(t, DisputeStatusLost, ClosedStatus(stripe.DisputeStatusLost))
	assert.Equal(t, DisputeStatusLost, ClosedStatus(stripe.DisputeStatus("warning_closed")))
	assert.Equal(t, DisputeStatusLost, ClosedStatus(""))
}

func TestDisputeStatus_IsTerminal(t *testing.T) {
	assert.True(t, DisputeStatusWon.IsTerminal())
	assert.True(t, DisputeStatusLost.IsTerminal())
	assert.False(t, DisputeStatusUnderReview.IsTerminal())
	assert.False(t, DisputeStatusWarningClosed.IsTerminal())
}

func TestDisputeFromStripe_NormalizesAmountAndCurrency(t *testing.T) {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sd := &stripe.Dispute{
		ID:       "dp_123",
		Amount:   24500,
		Currency: stripe.Currency("usd"),
		Reason:   stripe.DisputeReason("fraudulent"),
		Status:   stripe.DisputeStatusNeedsResponse,
		Charge:   &stripe.Charge{ID: "ch_456"},
		EvidenceDetails: &stripe.DisputeEvidenceDetails{
			DueBy:           due.Unix(),
			SubmissionCount: 2,
		},
	}

	d := DisputeFromStripe(sd)

	assert.Equal(t, "dp_123", d.StripeDisputeID)
	assert.InDelta(t, 245.00, d.Amount, 0.0001)
	assert.Equal(t, "USD", d.Currency)
	assert.Equal(t, "fraudulent", d.Reason)
	assert.Equal(t, DisputeStatusUnderReview, d.Status)
	assert.Equal(t, "ch_456", d.ChargeID)
	require.NotNil(t, d.EvidenceDueBy)
	assert.True(t, due.Equal(*d.EvidenceDueBy))
	assert.Equal(t, int64(2), SubmissionCount(sd))
}

func TestDisputeFromStripe_MissingOptionalFields(t *testing.T) {
	d := DisputeFromStripe(&stripe.Dispute{ID: "dp_1", Amount: 1, Currency: "eur"})

	assert.Empty(t, d.ChargeID)
	assert.Nil(t, d.EvidenceDueBy)
	assert.InDelta(t, 0.01, d.Amount, 0.0001)
	assert.Equal(t, "EUR", d.Currency)
	assert.Equal(t, int64(0), SubmissionCount(&stripe.Dispute{}))
}

func TestStripeConnection_HasValidCredentials(t *testing.T) {
	c := &StripeConnection{Connected: true, AccessToken: "sk_live_x"}
	assert.True(t, c.HasValidCredentials())

	c.Connected = false
	assert.False(t, c.HasValidCredentials())
}
