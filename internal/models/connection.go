package models

import (
	"time"

	"github.com/gocql/gocql"
)

// StripeConnection : lien autorisé entre un utilisateur et un compte Stripe
type StripeConnection struct {
	ID              gocql.UUID `json:"id" db:"id"`
	UserID          string     `json:"user_id" db:"user_id"`
	StripeAccountID string     `json:"stripe_account_id" db:"stripe_account_id"`
	AccessToken     string     `json:"-" db:"access_token"`
	RefreshToken    string     `json:"-" db:"refresh_token"`
	AccountName     string     `json:"account_name" db:"account_name"`
	Connected       bool       `json:"connected" db:"connected"`
	LastSynced      *time.Time `json:"last_synced,omitempty" db:"last_synced"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// HasValidCredentials : après une déconnexion les jetons restent stockés mais ne sont plus utilisables
func (c *StripeConnection) HasValidCredentials() bool {
	return c.Connected && c.AccessToken != ""
}
