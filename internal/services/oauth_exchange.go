package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"golang.org/x/oauth2"
)

// OAuthResult : identifiants renvoyés par Stripe Connect après l'échange du code
type OAuthResult struct {
	StripeAccountID string `json:"stripe_account_id"`
	AccessToken     string `json:"stripe_access_token"`
	RefreshToken    string `json:"stripe_refresh_token"`
}

type OAuthExchanger interface {
	Exchange(ctx context.Context, code string) (*OAuthResult, error)
}

// OAuthExchangeService échange un code d'autorisation contre des jetons longue durée.
// Aucune persistance ici : c'est à l'appelant d'enregistrer la connexion.
type OAuthExchangeService struct {
	config *oauth2.Config
}

func NewOAuthExchangeService(config *oauth2.Config) *OAuthExchangeService {
	return &OAuthExchangeService{config: config}
}

func (s *OAuthExchangeService) Exchange(ctx context.Context, code string) (*OAuthResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, validationError("Authorization code is required")
	}
	if s.config == nil || s.config.ClientID == "" || s.config.ClientSecret == "" {
		log.Println("❌ STRIPE_CLIENT_ID / STRIPE_SECRET_KEY non configurés")
		return nil, configurationError("Stripe credentials not configured")
	}

	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		log.Printf("❌ Échange OAuth Stripe échoué: %v", err)
		return nil, upstreamError(err, "%s", oauthErrorMessage(err))
	}

	accountID, _ := token.Extra("stripe_user_id").(string)
	if accountID == "" || token.AccessToken == "" {
		// on ne renvoie jamais des identifiants partiels
		return nil, upstreamError(nil, "Stripe returned an incomplete token response")
	}

	log.Printf("🔗 Compte Stripe autorisé : %s", accountID)

	return &OAuthResult{
		StripeAccountID: accountID,
		AccessToken:     token.AccessToken,
		RefreshToken:    token.RefreshToken,
	}, nil
}

// oauthErrorMessage extrait le message d'erreur rapporté par Stripe
func oauthErrorMessage(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		if re.ErrorDescription != "" {
			return re.ErrorDescription
		}
		if re.ErrorCode != "" {
			return re.ErrorCode
		}
	}
	return "Failed to exchange authorization code"
}
