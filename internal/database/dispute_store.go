package database

import (
	"context"
	"fmt"
	"time"

	"disputeshield_back_end/internal/models"
	"disputeshield_back_end/internal/services"

	"github.com/gocql/gocql"
)

const disputeColumns = `id, user_id, stripe_connection_id, stripe_dispute_id, charge_id, amount, currency,
	reason, status, evidence_due_by, evidence_submitted_at, last_event_at, created_at, updated_at`

// DisputeStore : table disputes_stripe + disputes_by_stripe_key pour l'unicité (connexion, litige Stripe)
type DisputeStore struct {
	session *gocql.Session
}

func NewDisputeStore(session *gocql.Session) *DisputeStore {
	return &DisputeStore{session: session}
}

// Upsert réserve l'identifiant local par LWT puis écrit la ligne complète.
// Si la paire existe déjà, seules les colonnes issues de Stripe sont réécrites :
// id, created_at et evidence_submitted_at restent ceux de la ligne existante, last_event_at
// n'avance que si d en porte un. d est ensuite rechargé depuis la base.
func (s *DisputeStore) Upsert(ctx context.Context, d *models.Dispute) error {
	if (d.ID == gocql.UUID{}) {
		d.ID = gocql.TimeUUID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	existing := map[string]interface{}{}
	applied, err := s.session.Query(`INSERT INTO disputes_by_stripe_key (stripe_connection_id, stripe_dispute_id, id, created_at)
		VALUES (?, ?, ?, ?) IF NOT EXISTS`,
		d.StripeConnectionID, d.StripeDisputeID, d.ID, d.CreatedAt,
	).WithContext(ctx).MapScanCAS(existing)
	if err != nil {
		return fmt.Errorf("réservation de la clé %s: %w", d.StripeDisputeID, err)
	}
	if applied {
		return s.write(ctx, d)
	}

	if id, ok := existing["id"].(gocql.UUID); ok {
		d.ID = id
	}
	if err := s.refresh(ctx, d); err != nil {
		return err
	}
	stored, err := s.Get(ctx, d.ID)
	if err != nil {
		return err
	}
	*d = *stored
	return nil
}

// refresh : colonnes dont Stripe est la source, sans toucher aux champs posés par les webhooks
func (s *DisputeStore) refresh(ctx context.Context, d *models.Dispute) error {
	if d.LastEventAt != nil {
		return s.session.Query(`UPDATE disputes_stripe SET user_id = ?, stripe_connection_id = ?, stripe_dispute_id = ?,
			charge_id = ?, amount = ?, currency = ?, reason = ?, status = ?, evidence_due_by = ?,
			last_event_at = ?, updated_at = ? WHERE id = ?`,
			d.UserID, d.StripeConnectionID, d.StripeDisputeID, d.ChargeID, d.Amount, d.Currency, d.Reason,
			string(d.Status), d.EvidenceDueBy, d.LastEventAt, d.UpdatedAt, d.ID,
		).WithContext(ctx).Exec()
	}
	return s.session.Query(`UPDATE disputes_stripe SET user_id = ?, stripe_connection_id = ?, stripe_dispute_id = ?,
		charge_id = ?, amount = ?, currency = ?, reason = ?, status = ?, evidence_due_by = ?,
		updated_at = ? WHERE id = ?`,
		d.UserID, d.StripeConnectionID, d.StripeDisputeID, d.ChargeID, d.Amount, d.Currency, d.Reason,
		string(d.Status), d.EvidenceDueBy, d.UpdatedAt, d.ID,
	).WithContext(ctx).Exec()
}

func (s *DisputeStore) write(ctx context.Context, d *models.Dispute) error {
	return s.session.Query(`INSERT INTO disputes_stripe (`+disputeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.UserID, d.StripeConnectionID, d.StripeDisputeID, d.ChargeID, d.Amount, d.Currency,
		d.Reason, string(d.Status), d.EvidenceDueBy, d.EvidenceSubmittedAt, d.LastEventAt, d.CreatedAt, d.UpdatedAt,
	).WithContext(ctx).Exec()
}

func scanDispute(scan func(dest ...interface{}) error) (*models.Dispute, error) {
	var d models.Dispute
	var status string
	err := scan(&d.ID, &d.UserID, &d.StripeConnectionID, &d.StripeDisputeID, &d.ChargeID, &d.Amount, &d.Currency,
		&d.Reason, &status, &d.EvidenceDueBy, &d.EvidenceSubmittedAt, &d.LastEventAt, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	d.Status = models.DisputeStatus(status)
	return &d, nil
}

func (s *DisputeStore) Get(ctx context.Context, id gocql.UUID) (*models.Dispute, error) {
	d, err := scanDispute(s.session.Query(`SELECT `+disputeColumns+` FROM disputes_stripe WHERE id = ?`, id).
		WithContext(ctx).Scan)
	return d, notFound(err)
}

// GetByStripeID : les identifiants de litige Stripe sont uniques sur toute la plateforme
func (s *DisputeStore) GetByStripeID(ctx context.Context, stripeDisputeID string) (*models.Dispute, error) {
	d, err := scanDispute(s.session.Query(`SELECT `+disputeColumns+` FROM disputes_stripe WHERE stripe_dispute_id = ? LIMIT 1`, stripeDisputeID).
		WithContext(ctx).Scan)
	return d, notFound(err)
}

// GetByStripeKey résout la ligne d'une connexion donnée via disputes_by_stripe_key
func (s *DisputeStore) GetByStripeKey(ctx context.Context, connectionID gocql.UUID, stripeDisputeID string) (*models.Dispute, error) {
	var id gocql.UUID
	err := s.session.Query(`SELECT id FROM disputes_by_stripe_key WHERE stripe_connection_id = ? AND stripe_dispute_id = ?`,
		connectionID, stripeDisputeID).WithContext(ctx).Scan(&id)
	if err != nil {
		return nil, notFound(err)
	}
	return s.Get(ctx, id)
}

func (s *DisputeStore) ListByUser(ctx context.Context, userID string) ([]models.Dispute, error) {
	iter := s.session.Query(`SELECT `+disputeColumns+` FROM disputes_stripe WHERE user_id = ?`, userID).
		WithContext(ctx).Iter()

	disputes := []models.Dispute{}
	scanner := iter.Scanner()
	for scanner.Next() {
		d, err := scanDispute(scanner.Scan)
		if err != nil {
			iter.Close()
			return nil, err
		}
		disputes = append(disputes, *d)
	}
	return disputes, scanner.Err()
}

// Update réécrit les champs modifiables d'une ligne existante
func (s *DisputeStore) Update(ctx context.Context, d *models.Dispute) error {
	return s.session.Query(`UPDATE disputes_stripe SET amount = ?, currency = ?, reason = ?, status = ?,
		evidence_due_by = ?, evidence_submitted_at = ?, last_event_at = ?, updated_at = ? WHERE id = ?`,
		d.Amount, d.Currency, d.Reason, string(d.Status),
		d.EvidenceDueBy, d.EvidenceSubmittedAt, d.LastEventAt, d.UpdatedAt, d.ID,
	).WithContext(ctx).Exec()
}

var _ services.DisputeStore = (*DisputeStore)(nil)
