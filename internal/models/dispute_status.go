package models

import (
	"github.com/stripe/stripe-go/v83"
)

type DisputeStatus string

// Statut historique de l'API Stripe, absent des constantes du SDK
const stripeStatusChargeRefunded stripe.DisputeStatus = "charge_refunded"

const (
	DisputeStatusWarningUnderReview   DisputeStatus = "warning_under_review"
	DisputeStatusWarningClosed        DisputeStatus = "warning_closed"
	DisputeStatusWarningNeedsResponse DisputeStatus = "warning_needs_response"
	DisputeStatusUnderReview          DisputeStatus = "under_review"
	DisputeStatusChargeRefunded       DisputeStatus = "charge_refunded"
	DisputeStatusWon                  DisputeStatus = "won"
	DisputeStatusLost                 DisputeStatus = "lost"
)

// IsTerminal : seuls won et lost sont définitifs
func (s DisputeStatus) IsTerminal() bool {
	return s == DisputeStatusWon || s == DisputeStatusLost
}

func (s DisputeStatus) IsValid() bool {
	switch s {
	case DisputeStatusWarningUnderReview,
		DisputeStatusWarningClosed,
		DisputeStatusWarningNeedsResponse,
		DisputeStatusUnderReview,
		DisputeStatusChargeRefunded,
		DisputeStatusWon,
		DisputeStatusLost:
		return true
	}
	return false
}

// MapStripeStatus convertit un statut Stripe vers le statut applicatif.
// Tout statut inconnu retombe sur under_review (litige pas encore tranché).
func MapStripeStatus(status stripe.DisputeStatus) DisputeStatus {
	switch status {
	case stripe.DisputeStatusWarningUnderReview:
		return DisputeStatusWarningUnderReview
	case stripe.DisputeStatusWarningClosed:
		return DisputeStatusWarningClosed
	case stripe.DisputeStatusWarningNeedsResponse:
		return DisputeStatusWarningNeedsResponse
	case stripe.DisputeStatusUnderReview, stripe.DisputeStatusNeedsResponse:
		// needs_response n'a pas d'équivalent applicatif : le litige est en cours
		return DisputeStatusUnderReview
	case stripeStatusChargeRefunded:
		return DisputeStatusChargeRefunded
	case stripe.DisputeStatusWon:
		return DisputeStatusWon
	case stripe.DisputeStatusLost:
		return DisputeStatusLost
	default:
		return DisputeStatusUnderReview
	}
}

// ClosedStatus : dispute.closed force won si Stripe dit won, lost dans tous les autres cas
func ClosedStatus(status stripe.DisputeStatus) DisputeStatus {
	if status == stripe.DisputeStatusWon {
		return DisputeStatusWon
	}
	return DisputeStatusLost
}
