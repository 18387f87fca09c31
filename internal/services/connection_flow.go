package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log"
	"strings"
	"time"

	"disputeshield_back_end/internal/models"

	"github.com/gocql/gocql"
	"golang.org/x/oauth2"
)

type FlowState string

const (
	FlowIdle             FlowState = "idle"
	FlowAwaitingCallback FlowState = "awaiting_callback"
	FlowSuccess          FlowState = "success"
	FlowError            FlowState = "error"
)

const ErrInvalidState = "Invalid state parameter"

// PendingAuthorization : ce qui est gardé côté client entre la redirection et le callback.
// Un seul emplacement par navigateur : une deuxième tentative écrase la première, qui échouera au callback.
type PendingAuthorization struct {
	State       string
	AccountName string
	UserID      string
}

type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

type FlowResult struct {
	State      FlowState
	Message    string
	Connection *models.StripeConnection
}

// ConnectionFlow orchestre la poignée de main OAuth Stripe Connect
type ConnectionFlow struct {
	oauth       *oauth2.Config
	exchanger   OAuthExchanger
	connections ConnectionStore
	now         func() time.Time
}

func NewConnectionFlow(oauthConfig *oauth2.Config, exchanger OAuthExchanger, connections ConnectionStore) *ConnectionFlow {
	return &ConnectionFlow{
		oauth:       oauthConfig,
		exchanger:   exchanger,
		connections: connections,
		now:         time.Now,
	}
}

// Begin : Idle → AwaitingCallback. Renvoie l'autorisation à stocker côté client et l'URL Stripe.
func (f *ConnectionFlow) Begin(userID, accountName string) (*PendingAuthorization, string, error) {
	if userID == "" {
		return nil, "", authenticationError("User not authenticated")
	}
	if f.oauth == nil || f.oauth.ClientID == "" {
		return nil, "", configurationError("Stripe client ID not configured")
	}

	state, err := NewStateToken()
	if err != nil {
		return nil, "", configurationError("Unable to generate state token")
	}

	pending := &PendingAuthorization{
		State:       state,
		AccountName: strings.TrimSpace(accountName),
		UserID:      userID,
	}
	return pending, f.oauth.AuthCodeURL(state), nil
}

// Complete traite le retour de Stripe. Toute sortie est terminale (Success ou Error) ;
// aucune connexion n'est enregistrée tant que le state n'a pas été vérifié.
func (f *ConnectionFlow) Complete(ctx context.Context, pending *PendingAuthorization, params CallbackParams) FlowResult {
	if params.Error != "" {
		msg := params.ErrorDescription
		if msg == "" {
			msg = params.Error
		}
		return FlowResult{State: FlowError, Message: msg}
	}
	if params.Code == "" || params.State == "" {
		return FlowResult{State: FlowError, Message: "Missing code or state parameter"}
	}
	if pending == nil || pending.State == "" || pending.State != params.State {
		log.Println("⚠️ Paramètre state invalide sur le callback Stripe")
		return FlowResult{State: FlowError, Message: ErrInvalidState}
	}
	if pending.UserID == "" {
		return FlowResult{State: FlowError, Message: "User not authenticated"}
	}

	result, err := f.exchanger.Exchange(ctx, params.Code)
	if err != nil {
		return FlowResult{State: FlowError, Message: errorMessage(err)}
	}

	conn, err := f.Persist(ctx, pending.UserID, pending.AccountName, result)
	if err != nil {
		return FlowResult{State: FlowError, Message: errorMessage(err)}
	}

	return FlowResult{State: FlowSuccess, Message: "Stripe account connected", Connection: conn}
}

// Persist enregistre la connexion issue d'un échange réussi
func (f *ConnectionFlow) Persist(ctx context.Context, userID, accountName string, result *OAuthResult) (*models.StripeConnection, error) {
	now := f.now().UTC()

	existing, err := f.existingConnection(ctx, userID, result.StripeAccountID)
	if err != nil {
		log.Printf("❌ Erreur lecture connexions de %s: %v", userID, err)
		return nil, persistenceError(err, "Failed to save Stripe connection")
	}

	// Reconnexion : même ligne, donc mêmes litiges et même clé d'upsert
	if existing != nil {
		if accountName == "" {
			accountName = existing.AccountName
		}
		if err := f.connections.UpdateCredentials(ctx, existing.ID, result.AccessToken, result.RefreshToken, accountName, now); err != nil {
			log.Printf("❌ Erreur mise à jour connexion Stripe %s: %v", existing.ID, err)
			return nil, persistenceError(err, "Failed to save Stripe connection")
		}
		existing.AccessToken = result.AccessToken
		existing.RefreshToken = result.RefreshToken
		existing.AccountName = accountName
		existing.Connected = true
		existing.UpdatedAt = now
		log.Printf("🔁 Connexion Stripe %s reconnectée pour %s", existing.StripeAccountID, userID)
		return existing, nil
	}

	if accountName == "" {
		accountName = result.StripeAccountID
	}
	conn := &models.StripeConnection{
		ID:              gocql.TimeUUID(),
		UserID:          userID,
		StripeAccountID: result.StripeAccountID,
		AccessToken:     result.AccessToken,
		RefreshToken:    result.RefreshToken,
		AccountName:     accountName,
		Connected:       true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := f.connections.Create(ctx, conn); err != nil {
		log.Printf("❌ Erreur enregistrement connexion Stripe: %v", err)
		return nil, persistenceError(err, "Failed to save Stripe connection")
	}

	log.Printf("✅ Connexion Stripe %s enregistrée pour %s", conn.StripeAccountID, userID)
	return conn, nil
}

// existingConnection : la plus récente ligne de l'utilisateur pour ce compte Stripe
func (f *ConnectionFlow) existingConnection(ctx context.Context, userID, stripeAccountID string) (*models.StripeConnection, error) {
	conns, err := f.connections.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var found *models.StripeConnection
	for i := range conns {
		c := &conns[i]
		if c.StripeAccountID != stripeAccountID {
			continue
		}
		if found == nil || c.CreatedAt.After(found.CreatedAt) {
			found = c
		}
	}
	return found, nil
}

// NewStateToken génère un jeton opaque de 32 octets aléatoires
func NewStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func errorMessage(err error) string {
	if svcErr, ok := err.(*Error); ok {
		return svcErr.Message
	}
	return err.Error()
}
