package services

import (
	"context"
	"errors"
	"log"
	"time"

	"disputeshield_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/stripe/stripe-go/v83"
)

// SyncPageSize : nombre maximal de litiges récupérés par appel de synchronisation
const SyncPageSize = 100

// StripeDisputeLister interroge /v1/disputes avec le jeton du compte connecté
type StripeDisputeLister struct{}

func NewStripeDisputeLister() *StripeDisputeLister {
	return &StripeDisputeLister{}
}

func (l *StripeDisputeLister) ListDisputes(ctx context.Context, accessToken string, limit int) ([]*stripe.Dispute, error) {
	sc := stripe.NewClient(accessToken)

	params := &stripe.DisputeListParams{}
	params.Limit = stripe.Int64(int64(limit))

	disputes := make([]*stripe.Dispute, 0, limit)
	for d, err := range sc.V1Disputes.List(ctx, params) {
		if err != nil {
			return nil, err
		}
		disputes = append(disputes, d)
		if len(disputes) >= limit {
			break
		}
	}
	return disputes, nil
}

// DisputeSyncService recopie les litiges Stripe d'une connexion dans disputes_stripe
type DisputeSyncService struct {
	connections ConnectionStore
	disputes    DisputeStore
	lister      DisputeLister
	indexer     DisputeIndexer
	publisher   DisputePublisher
	now         func() time.Time
}

func NewDisputeSyncService(connections ConnectionStore, disputes DisputeStore, lister DisputeLister, indexer DisputeIndexer, publisher DisputePublisher) *DisputeSyncService {
	return &DisputeSyncService{
		connections: connections,
		disputes:    disputes,
		lister:      lister,
		indexer:     indexer,
		publisher:   publisher,
		now:         time.Now,
	}
}

// Sync renvoie le nombre de litiges enregistrés. Un échec d'upsert individuel est journalisé
// et n'interrompt pas la boucle ; rien n'est annulé. last_synced n'est pas modifié ici.
// La synchronisation est un instantané : last_event_at et evidence_submitted_at restent
// ceux posés par les webhooks.
func (s *DisputeSyncService) Sync(ctx context.Context, userID string, connectionID gocql.UUID) (int, error) {
	conn, err := s.connections.Get(ctx, connectionID)
	if err != nil {
		log.Printf("❌ Connexion Stripe %s introuvable: %v", connectionID, err)
		return 0, persistenceError(err, "Connection not found")
	}
	if conn.UserID != userID {
		log.Printf("⚠️ Connexion Stripe %s demandée par %s, propriétaire différent", connectionID, userID)
		return 0, persistenceError(ErrNotFound, "Connection not found")
	}
	if !conn.HasValidCredentials() {
		return 0, authenticationError("Stripe connection is disconnected")
	}

	stripeDisputes, err := s.lister.ListDisputes(ctx, conn.AccessToken, SyncPageSize)
	if err != nil {
		log.Printf("❌ Récupération des litiges Stripe échouée pour %s: %v", conn.StripeAccountID, err)
		return 0, upstreamError(err, "%s", stripeErrorMessage(err))
	}

	fetchedAt := s.now().UTC()
	count := 0
	for _, sd := range stripeDisputes {
		d := models.DisputeFromStripe(sd)
		d.UserID = conn.UserID
		d.StripeConnectionID = conn.ID
		d.CreatedAt = fetchedAt
		d.UpdatedAt = fetchedAt

		if err := s.disputes.Upsert(ctx, &d); err != nil {
			log.Printf("⚠️ Upsert du litige %s échoué: %v", sd.ID, err)
			continue
		}
		count++
		propagateDispute(ctx, s.indexer, s.publisher, &d)
	}

	log.Printf("✅ %d/%d litiges synchronisés pour %s", count, len(stripeDisputes), conn.StripeAccountID)
	return count, nil
}

// MarkSynced est l'appel explicite qui met à jour last_synced
func (s *DisputeSyncService) MarkSynced(ctx context.Context, userID string, connectionID gocql.UUID) (time.Time, error) {
	conn, err := s.connections.Get(ctx, connectionID)
	if err != nil || conn.UserID != userID {
		return time.Time{}, notFoundError("Connection not found")
	}
	at := s.now().UTC()
	if err := s.connections.SetLastSynced(ctx, conn.ID, at); err != nil {
		return time.Time{}, persistenceError(err, "Failed to update last synced")
	}
	return at, nil
}

// propagateDispute : indexation et diffusion temps réel, sans effet sur le résultat
func propagateDispute(ctx context.Context, indexer DisputeIndexer, publisher DisputePublisher, d *models.Dispute) {
	if indexer != nil {
		if err := indexer.IndexDispute(ctx, d); err != nil {
			log.Printf("⚠️ Indexation du litige %s échouée: %v", d.StripeDisputeID, err)
		}
	}
	if publisher != nil {
		if err := publisher.PublishDispute(ctx, d); err != nil {
			log.Printf("⚠️ Publication du litige %s échouée: %v", d.StripeDisputeID, err)
		}
	}
}

func stripeErrorMessage(err error) string {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return se.Msg
	}
	return "Failed to fetch disputes from Stripe"
}
