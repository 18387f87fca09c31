package models

import (
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/stripe/stripe-go/v83"
)

// Dispute : litige Stripe recopié localement (table disputes_stripe)
type Dispute struct {
	ID                  gocql.UUID    `json:"id" db:"id"`
	UserID              string        `json:"user_id" db:"user_id"`
	StripeConnectionID  gocql.UUID    `json:"stripe_connection_id" db:"stripe_connection_id"`
	StripeDisputeID     string        `json:"stripe_dispute_id" db:"stripe_dispute_id"`
	ChargeID            string        `json:"charge_id" db:"charge_id"`
	Amount              float64       `json:"amount" db:"amount"`
	Currency            string        `json:"currency" db:"currency"`
	Reason              string        `json:"reason" db:"reason"`
	Status              DisputeStatus `json:"status" db:"status"`
	EvidenceDueBy       *time.Time    `json:"evidence_due_by,omitempty" db:"evidence_due_by"`
	EvidenceSubmittedAt *time.Time    `json:"evidence_submitted_at,omitempty" db:"evidence_submitted_at"`
	// horodatage du dernier événement Stripe appliqué, sert à rejeter les livraisons en retard
	LastEventAt *time.Time `json:"-" db:"last_event_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// MinorToMajor : Stripe exprime les montants en unités mineures (centimes)
func MinorToMajor(amount int64) float64 {
	return float64(amount) / 100
}

func NormalizeCurrency(currency string) string {
	return strings.ToUpper(strings.TrimSpace(currency))
}

// DisputeFromStripe construit les champs issus de Stripe ; identifiants locaux et horodatages
// sont à la charge de l'appelant.
func DisputeFromStripe(sd *stripe.Dispute) Dispute {
	d := Dispute{
		StripeDisputeID: sd.ID,
		Amount:          MinorToMajor(sd.Amount),
		Currency:        NormalizeCurrency(string(sd.Currency)),
		Reason:          string(sd.Reason),
		Status:          MapStripeStatus(sd.Status),
	}
	if sd.Charge != nil {
		d.ChargeID = sd.Charge.ID
	}
	if sd.EvidenceDetails != nil && sd.EvidenceDetails.DueBy > 0 {
		due := time.Unix(sd.EvidenceDetails.DueBy, 0).UTC()
		d.EvidenceDueBy = &due
	}
	return d
}

// SubmissionCount renvoie le nombre de soumissions de preuves connu de Stripe
func SubmissionCount(sd *stripe.Dispute) int64 {
	if sd.EvidenceDetails == nil {
		return 0
	}
	return sd.EvidenceDetails.SubmissionCount
}
