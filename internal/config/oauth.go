package config

import (
	"golang.org/x/oauth2"
)

// Endpoints Stripe Connect (OAuth standard)
var StripeConnectEndpoint = oauth2.Endpoint{
	AuthURL:   "https://connect.stripe.com/oauth/authorize",
	TokenURL:  "https://connect.stripe.com/oauth/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// StripeOAuthConfig construit la config OAuth Stripe Connect.
// Le secret client reste côté serveur : le navigateur ne voit que l'URL d'autorisation.
func (c *Config) StripeOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.Stripe.ClientID,
		ClientSecret: c.Stripe.SecretKey,
		RedirectURL:  c.Stripe.RedirectURI,
		Scopes:       []string{"read_write"},
		Endpoint:     StripeConnectEndpoint,
	}
}
