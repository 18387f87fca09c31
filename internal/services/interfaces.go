package services

import (
	"context"
	"io"
	"time"

	"disputeshield_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/stripe/stripe-go/v83"
)

// ConnectionStore : accès à la table stripe_connections
type ConnectionStore interface {
	Create(ctx context.Context, conn *models.StripeConnection) error
	Get(ctx context.Context, id gocql.UUID) (*models.StripeConnection, error)
	GetByStripeAccount(ctx context.Context, stripeAccountID string) (*models.StripeConnection, error)
	ListByUser(ctx context.Context, userID string) ([]models.StripeConnection, error)
	SetConnected(ctx context.Context, id gocql.UUID, connected bool, at time.Time) error
	SetLastSynced(ctx context.Context, id gocql.UUID, at time.Time) error
	// UpdateCredentials remplace les jetons d'une connexion existante et la réactive
	UpdateCredentials(ctx context.Context, id gocql.UUID, accessToken, refreshToken, accountName string, at time.Time) error
}

// DisputeStore : accès à la table disputes_stripe.
// Upsert est indexé sur (stripe_connection_id, stripe_dispute_id). Sur une ligne existante il
// conserve id, created_at et evidence_submitted_at, et ne touche last_event_at que si d en porte un.
type DisputeStore interface {
	Upsert(ctx context.Context, d *models.Dispute) error
	Get(ctx context.Context, id gocql.UUID) (*models.Dispute, error)
	GetByStripeKey(ctx context.Context, connectionID gocql.UUID, stripeDisputeID string) (*models.Dispute, error)
	GetByStripeID(ctx context.Context, stripeDisputeID string) (*models.Dispute, error)
	ListByUser(ctx context.Context, userID string) ([]models.Dispute, error)
	Update(ctx context.Context, d *models.Dispute) error
}

type EvidenceStore interface {
	Create(ctx context.Context, e *models.Evidence) error
	Get(ctx context.Context, id gocql.UUID) (*models.Evidence, error)
	ListByDispute(ctx context.Context, disputeID gocql.UUID) ([]models.Evidence, error)
	Delete(ctx context.Context, id gocql.UUID) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, id gocql.UUID, userID string) error
}

// DisputeLister interroge l'API Stripe avec le jeton d'un compte connecté
type DisputeLister interface {
	ListDisputes(ctx context.Context, accessToken string, limit int) ([]*stripe.Dispute, error)
}

// EventDeduplicator mémorise les événements Stripe déjà traités
type EventDeduplicator interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

// DisputePublisher pousse les changements vers le flux temps réel du tableau de bord
type DisputePublisher interface {
	PublishDispute(ctx context.Context, d *models.Dispute) error
}

// DisputeIndexer alimente l'index de recherche
type DisputeIndexer interface {
	IndexDispute(ctx context.Context, d *models.Dispute) error
}

// TextGenerator appelle l'API de génération de texte
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ObjectStorage : stockage des fichiers de preuve
type ObjectStorage interface {
	Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, path string) error
	PresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

// Mailer envoie un e-mail HTML
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Notifier crée une notification applicative (utilisé par l'ingestion webhook)
type Notifier interface {
	Notify(ctx context.Context, req NotificationRequest) (*models.Notification, error)
}
