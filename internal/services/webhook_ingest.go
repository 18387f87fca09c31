package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"disputeshield_back_end/internal/config"
	"disputeshield_back_end/internal/models"

	"github.com/stripe/stripe-go/v83"
)

const (
	EventDisputeCreated stripe.EventType = "charge.dispute.created"
	EventDisputeUpdated stripe.EventType = "charge.dispute.updated"
	EventDisputeClosed  stripe.EventType = "charge.dispute.closed"
)

// Noms courts acceptés en plus des noms officiels Stripe
var eventAliases = map[stripe.EventType]stripe.EventType{
	"dispute.created": EventDisputeCreated,
	"dispute.updated": EventDisputeUpdated,
	"dispute.closed":  EventDisputeClosed,
}

type WebhookOutcome string

const (
	OutcomeApplied   WebhookOutcome = "applied"
	OutcomeDuplicate WebhookOutcome = "duplicate"
	OutcomeIgnored   WebhookOutcome = "ignored"
	OutcomeStale     WebhookOutcome = "stale"
)

type SignatureChecker interface {
	Verify(payload []byte, header string) bool
}

// WebhookIngestService applique les événements Stripe aux litiges locaux
type WebhookIngestService struct {
	verifier    SignatureChecker
	connections ConnectionStore
	disputes    DisputeStore
	dedup       EventDeduplicator
	indexer     DisputeIndexer
	publisher   DisputePublisher
	notifier    Notifier
	policy      string
	now         func() time.Time
}

type WebhookDeps struct {
	Verifier    SignatureChecker
	Connections ConnectionStore
	Disputes    DisputeStore
	Dedup       EventDeduplicator
	Indexer     DisputeIndexer
	Publisher   DisputePublisher
	Notifier    Notifier
	// EvidencePolicy : config.EvidencePolicyOverwrite ou config.EvidencePolicyPreserveFirst
	EvidencePolicy string
}

func NewWebhookIngestService(deps WebhookDeps) *WebhookIngestService {
	policy := deps.EvidencePolicy
	if policy == "" {
		policy = config.EvidencePolicyOverwrite
	}
	return &WebhookIngestService{
		verifier:    deps.Verifier,
		connections: deps.Connections,
		disputes:    deps.Disputes,
		dedup:       deps.Dedup,
		indexer:     deps.Indexer,
		publisher:   deps.Publisher,
		notifier:    deps.Notifier,
		policy:      policy,
		now:         time.Now,
	}
}

// Ingest vérifie la signature puis applique l'événement. Signature invalide :
// erreur d'authentification et aucune écriture.
func (s *WebhookIngestService) Ingest(ctx context.Context, payload []byte, signature string) (WebhookOutcome, error) {
	if s.verifier == nil || !s.verifier.Verify(payload, signature) {
		log.Println("❌ Signature Stripe invalide")
		return "", authenticationError("Invalid signature")
	}

	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		log.Println("❌ JSON invalide:", err)
		return "", validationError("Invalid event payload")
	}

	eventType := event.Type
	if alias, ok := eventAliases[eventType]; ok {
		eventType = alias
	}
	log.Printf("📥 Événement Stripe reçu : %s (%s)", event.Type, event.ID)

	switch eventType {
	case EventDisputeCreated, EventDisputeUpdated, EventDisputeClosed:
	default:
		log.Printf("ℹ️ Événement ignoré : %s", event.Type)
		return OutcomeIgnored, nil
	}

	if s.dedup != nil && event.ID != "" {
		fresh, err := s.dedup.Claim(ctx, event.ID)
		if err != nil {
			log.Printf("⚠️ Déduplication indisponible pour %s: %v", event.ID, err)
		} else if !fresh {
			log.Printf("ℹ️ Événement %s déjà traité", event.ID)
			return OutcomeDuplicate, nil
		}
	}

	outcome, err := s.apply(ctx, eventType, &event)
	if err != nil && s.dedup != nil && event.ID != "" {
		if rerr := s.dedup.Release(ctx, event.ID); rerr != nil {
			log.Printf("⚠️ Libération du marqueur %s échouée: %v", event.ID, rerr)
		}
	}
	return outcome, err
}

func (s *WebhookIngestService) apply(ctx context.Context, eventType stripe.EventType, event *stripe.Event) (WebhookOutcome, error) {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return "", validationError("Event has no data object")
	}
	var sd stripe.Dispute
	if err := json.Unmarshal(event.Data.Raw, &sd); err != nil {
		log.Println("❌ Erreur décodage Dispute:", err)
		return "", validationError("Invalid dispute object")
	}
	if sd.ID == "" {
		return "", validationError("Dispute id missing from event")
	}

	eventAt := s.now().UTC()
	if event.Created > 0 {
		eventAt = time.Unix(event.Created, 0).UTC()
	}

	switch eventType {
	case EventDisputeCreated:
		return s.onCreated(ctx, event.Account, &sd, eventAt)
	case EventDisputeUpdated:
		return s.onUpdated(ctx, event.Account, &sd, eventAt)
	default:
		return s.onClosed(ctx, event.Account, &sd, eventAt)
	}
}

func (s *WebhookIngestService) onCreated(ctx context.Context, account string, sd *stripe.Dispute, eventAt time.Time) (WebhookOutcome, error) {
	if account == "" {
		log.Printf("⚠️ dispute.created %s sans compte connecté, ignoré", sd.ID)
		return OutcomeIgnored, nil
	}
	conn, err := s.connections.GetByStripeAccount(ctx, account)
	if errors.Is(err, ErrNotFound) {
		log.Printf("⚠️ Compte Stripe %s inconnu, litige %s ignoré", account, sd.ID)
		return OutcomeIgnored, nil
	}
	if err != nil {
		return "", persistenceError(err, "Failed to load Stripe connection")
	}

	existing, err := s.disputes.GetByStripeKey(ctx, conn.ID, sd.ID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", persistenceError(err, "Failed to load dispute")
	}
	if existing != nil && isStale(existing, eventAt) {
		log.Printf("ℹ️ Événement périmé pour le litige %s", sd.ID)
		return OutcomeStale, nil
	}

	now := s.now().UTC()
	d := models.DisputeFromStripe(sd)
	d.UserID = conn.UserID
	d.StripeConnectionID = conn.ID
	d.CreatedAt = now
	d.UpdatedAt = now
	d.LastEventAt = &eventAt

	if err := s.disputes.Upsert(ctx, &d); err != nil {
		log.Printf("❌ Insertion du litige %s échouée: %v", sd.ID, err)
		return "", persistenceError(err, "Failed to save dispute")
	}

	propagateDispute(ctx, s.indexer, s.publisher, &d)
	s.notify(ctx, &d, models.NotificationDisputeCreated,
		"New dispute received",
		fmt.Sprintf("A dispute of %.2f %s was opened (%s).", d.Amount, d.Currency, d.Reason))

	log.Printf("✅ Litige %s créé", sd.ID)
	return OutcomeApplied, nil
}

func (s *WebhookIngestService) onUpdated(ctx context.Context, account string, sd *stripe.Dispute, eventAt time.Time) (WebhookOutcome, error) {
	d, outcome, err := s.loadForUpdate(ctx, account, sd.ID, eventAt)
	if d == nil {
		return outcome, err
	}

	now := s.now().UTC()
	d.Status = models.MapStripeStatus(sd.Status)
	d.EvidenceSubmittedAt = s.evidenceSubmittedAt(d.EvidenceSubmittedAt, models.SubmissionCount(sd), now)

	return s.save(ctx, d, eventAt, now)
}

func (s *WebhookIngestService) onClosed(ctx context.Context, account string, sd *stripe.Dispute, eventAt time.Time) (WebhookOutcome, error) {
	d, outcome, err := s.loadForUpdate(ctx, account, sd.ID, eventAt)
	if d == nil {
		return outcome, err
	}

	d.Status = models.ClosedStatus(sd.Status)
	outcome, err = s.save(ctx, d, eventAt, s.now().UTC())
	if err != nil {
		return outcome, err
	}

	if d.Status == models.DisputeStatusWon {
		s.notify(ctx, d, models.NotificationDisputeWon, "Dispute won",
			fmt.Sprintf("You won the dispute for %.2f %s.", d.Amount, d.Currency))
	} else {
		s.notify(ctx, d, models.NotificationDisputeLost, "Dispute lost",
			fmt.Sprintf("The dispute for %.2f %s was lost.", d.Amount, d.Currency))
	}
	return outcome, nil
}

// loadForUpdate renvoie nil quand l'événement ne doit rien modifier
func (s *WebhookIngestService) loadForUpdate(ctx context.Context, account, stripeID string, eventAt time.Time) (*models.Dispute, WebhookOutcome, error) {
	d, err := s.findDispute(ctx, account, stripeID)
	if errors.Is(err, ErrNotFound) {
		log.Printf("⚠️ Litige %s inconnu, événement ignoré", stripeID)
		return nil, OutcomeIgnored, nil
	}
	if err != nil {
		return nil, "", persistenceError(err, "Failed to load dispute")
	}
	if isStale(d, eventAt) {
		log.Printf("ℹ️ Événement périmé pour le litige %s", stripeID)
		return nil, OutcomeStale, nil
	}
	return d, "", nil
}

// findDispute : la ligne de la connexion qui porte le compte de l'événement ;
// sans compte (litige du compte plateforme), recherche par identifiant Stripe seul.
func (s *WebhookIngestService) findDispute(ctx context.Context, account, stripeID string) (*models.Dispute, error) {
	if account == "" {
		return s.disputes.GetByStripeID(ctx, stripeID)
	}
	conn, err := s.connections.GetByStripeAccount(ctx, account)
	if err != nil {
		return nil, err
	}
	return s.disputes.GetByStripeKey(ctx, conn.ID, stripeID)
}

func (s *WebhookIngestService) save(ctx context.Context, d *models.Dispute, eventAt, now time.Time) (WebhookOutcome, error) {
	d.UpdatedAt = now
	d.LastEventAt = &eventAt
	if err := s.disputes.Update(ctx, d); err != nil {
		log.Printf("❌ Mise à jour du litige %s échouée: %v", d.StripeDisputeID, err)
		return "", persistenceError(err, "Failed to update dispute")
	}
	propagateDispute(ctx, s.indexer, s.publisher, d)
	log.Printf("✅ Litige %s → %s", d.StripeDisputeID, d.Status)
	return OutcomeApplied, nil
}

// evidenceSubmittedAt : overwrite réécrit à chaque événement avec soumission,
// preserve_first garde le premier horodatage connu.
func (s *WebhookIngestService) evidenceSubmittedAt(current *time.Time, submissions int64, now time.Time) *time.Time {
	if s.policy == config.EvidencePolicyPreserveFirst && current != nil {
		return current
	}
	if submissions > 0 {
		return &now
	}
	if s.policy == config.EvidencePolicyPreserveFirst {
		return current
	}
	return nil
}

func (s *WebhookIngestService) notify(ctx context.Context, d *models.Dispute, kind, title, message string) {
	if s.notifier == nil {
		return
	}
	id := d.ID
	_, err := s.notifier.Notify(ctx, NotificationRequest{
		UserID:    d.UserID,
		Type:      kind,
		Title:     title,
		Message:   message,
		DisputeID: &id,
	})
	if err != nil {
		log.Printf("⚠️ Notification %s pour %s échouée: %v", kind, d.StripeDisputeID, err)
	}
}

func isStale(d *models.Dispute, eventAt time.Time) bool {
	return d.LastEventAt != nil && eventAt.Before(*d.LastEventAt)
}
