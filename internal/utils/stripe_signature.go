package utils

import (
	"errors"
	"log"
	"time"

	"github.com/stripe/stripe-go/v83/webhook"
)

// SignatureVerifier valide l'en-tête Stripe-Signature :
// HMAC-SHA256 hex de "<t>.<body>" avec le secret du webhook, un seul v1= correspondant suffit.
type SignatureVerifier struct {
	secret    string
	tolerance time.Duration
}

// NewSignatureVerifier : tolerance = 0 désactive la vérification de fraîcheur du timestamp
func NewSignatureVerifier(secret string, tolerance time.Duration) *SignatureVerifier {
	return &SignatureVerifier{secret: secret, tolerance: tolerance}
}

// Verify ne panique jamais et échoue fermé (en-tête absent, mal formé, secret vide...)
func (v *SignatureVerifier) Verify(payload []byte, header string) bool {
	if v == nil || v.secret == "" || header == "" {
		return false
	}

	var err error
	if v.tolerance > 0 {
		err = webhook.ValidatePayloadWithTolerance(payload, header, v.secret, v.tolerance)
	} else {
		err = webhook.ValidatePayloadIgnoringTolerance(payload, header, v.secret)
	}

	if err != nil {
		if errors.Is(err, webhook.ErrTooOld) {
			log.Println("⚠️ Signature Stripe expirée (rejeu possible)")
		}
		return false
	}
	return true
}
