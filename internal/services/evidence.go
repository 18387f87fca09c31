package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"disputeshield_back_end/internal/models"
	"disputeshield_back_end/internal/utils"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

const (
	MaxEvidenceFileSize = 10 << 20
	downloadURLExpiry   = 15 * time.Minute
)

const evidenceSystemPrompt = "You are an expert in payment disputes and chargeback representment. " +
	"You write concise, factual rebuttal letters addressed to the card issuer."

// evidencePromptTemplate : gabarit fixe envoyé au modèle
const evidencePromptTemplate = `Write a professional chargeback rebuttal letter for the following dispute.

Dispute ID: %s
Charge ID: %s
Amount: %.2f %s
Reason code: %s
Customer: %s
Product or service: %s
Merchant notes: %s

Structure the letter with: a summary of the transaction, a point-by-point response to the reason code, a list of the evidence the merchant should attach, and a closing request to reverse the chargeback. Do not invent facts that are not listed above.`

// EvidenceContext : informations transmises par le tableau de bord pour la génération
type EvidenceContext struct {
	StripeDisputeID    string  `json:"stripe_dispute_id"`
	ChargeID           string  `json:"charge_id"`
	Amount             float64 `json:"amount"`
	Currency           string  `json:"currency"`
	Reason             string  `json:"reason"`
	CustomerName       string  `json:"customer_name"`
	ProductDescription string  `json:"product_description"`
	Notes              string  `json:"notes"`
}

// EvidenceRenderer produit le PDF d'une preuve générée
type EvidenceRenderer interface {
	RenderEvidencePDF(ctx context.Context, doc utils.EvidenceDocument) ([]byte, error)
}

type EvidenceService struct {
	disputes  DisputeStore
	evidence  EvidenceStore
	storage   ObjectStorage
	generator TextGenerator
	renderer  EvidenceRenderer
	now       func() time.Time
}

func NewEvidenceService(disputes DisputeStore, evidence EvidenceStore, storage ObjectStorage, generator TextGenerator, renderer EvidenceRenderer) *EvidenceService {
	return &EvidenceService{
		disputes:  disputes,
		evidence:  evidence,
		storage:   storage,
		generator: generator,
		renderer:  renderer,
		now:       time.Now,
	}
}

// BuildEvidencePrompt complète le contexte fourni avec les valeurs enregistrées du litige
func BuildEvidencePrompt(d *models.Dispute, ec EvidenceContext) string {
	if d != nil {
		if ec.StripeDisputeID == "" {
			ec.StripeDisputeID = d.StripeDisputeID
		}
		if ec.ChargeID == "" {
			ec.ChargeID = d.ChargeID
		}
		if ec.Amount == 0 {
			ec.Amount = d.Amount
		}
		if ec.Currency == "" {
			ec.Currency = d.Currency
		}
		if ec.Reason == "" {
			ec.Reason = d.Reason
		}
	}
	return fmt.Sprintf(evidencePromptTemplate,
		orUnknown(ec.StripeDisputeID),
		orUnknown(ec.ChargeID),
		ec.Amount,
		models.NormalizeCurrency(ec.Currency),
		orUnknown(ec.Reason),
		orUnknown(ec.CustomerName),
		orUnknown(ec.ProductDescription),
		orUnknown(ec.Notes),
	)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "not provided"
	}
	return s
}

// Generate appelle le modèle et enregistre le texte comme preuve de type generated
func (s *EvidenceService) Generate(ctx context.Context, userID string, disputeID gocql.UUID, ec EvidenceContext) (*models.Evidence, error) {
	d, err := s.ownedDispute(ctx, userID, disputeID)
	if err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, configurationError("Text generation is not configured")
	}

	content, err := s.generator.Generate(ctx, BuildEvidencePrompt(d, ec))
	if err != nil {
		log.Printf("❌ Génération de preuve échouée pour %s: %v", disputeID, err)
		return nil, upstreamError(err, "Failed to generate evidence")
	}

	e := &models.Evidence{
		ID:        gocql.TimeUUID(),
		DisputeID: disputeID,
		UserID:    userID,
		Type:      models.EvidenceTypeGenerated,
		Content:   &content,
		CreatedAt: s.now().UTC(),
	}
	if err := s.evidence.Create(ctx, e); err != nil {
		return nil, persistenceError(err, "Failed to save evidence")
	}

	log.Printf("✅ Preuve générée pour le litige %s", d.StripeDisputeID)
	return e, nil
}

// Upload envoie le fichier dans MinIO sous evidence/<dispute_id>/<uuid><ext>
func (s *EvidenceService) Upload(ctx context.Context, userID string, disputeID gocql.UUID, fileName string, size int64, contentType string, r io.Reader) (*models.Evidence, error) {
	if _, err := s.ownedDispute(ctx, userID, disputeID); err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, validationError("File is empty")
	}
	if size > MaxEvidenceFileSize {
		return nil, validationError("File exceeds %d MB", MaxEvidenceFileSize>>20)
	}
	if s.storage == nil {
		return nil, configurationError("File storage is not configured")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	name := filepath.Base(fileName)
	path := fmt.Sprintf("evidence/%s/%s%s", disputeID, uuid.New().String(), strings.ToLower(filepath.Ext(name)))

	if err := s.storage.Put(ctx, path, r, size, contentType); err != nil {
		log.Printf("❌ Upload MinIO échoué (%s): %v", path, err)
		return nil, upstreamError(err, "Failed to store file")
	}

	e := &models.Evidence{
		ID:          gocql.TimeUUID(),
		DisputeID:   disputeID,
		UserID:      userID,
		Type:        models.EvidenceTypeUploaded,
		StoragePath: &path,
		FileName:    &name,
		FileSize:    &size,
		MimeType:    &contentType,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.evidence.Create(ctx, e); err != nil {
		// l'objet orphelin est retiré pour ne pas laisser de fichier sans ligne
		if rerr := s.storage.Remove(ctx, path); rerr != nil {
			log.Printf("⚠️ Suppression de l'objet orphelin %s échouée: %v", path, rerr)
		}
		return nil, persistenceError(err, "Failed to save evidence")
	}

	log.Printf("📎 Preuve %s déposée (%d octets)", name, size)
	return e, nil
}

func (s *EvidenceService) List(ctx context.Context, userID string, disputeID gocql.UUID) ([]models.Evidence, error) {
	if _, err := s.ownedDispute(ctx, userID, disputeID); err != nil {
		return nil, err
	}
	list, err := s.evidence.ListByDispute(ctx, disputeID)
	if err != nil {
		return nil, persistenceError(err, "Failed to load evidence")
	}
	return list, nil
}

func (s *EvidenceService) DownloadURL(ctx context.Context, userID string, id gocql.UUID) (string, error) {
	e, err := s.owned(ctx, userID, id)
	if err != nil {
		return "", err
	}
	if e.Type != models.EvidenceTypeUploaded || e.StoragePath == nil {
		return "", validationError("Evidence has no file")
	}
	if s.storage == nil {
		return "", configurationError("File storage is not configured")
	}
	u, err := s.storage.PresignedURL(ctx, *e.StoragePath, downloadURLExpiry)
	if err != nil {
		return "", upstreamError(err, "Failed to sign download URL")
	}
	return u, nil
}

// PDF rend une preuve générée en document imprimable
func (s *EvidenceService) PDF(ctx context.Context, userID string, id gocql.UUID) ([]byte, error) {
	e, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if e.Type != models.EvidenceTypeGenerated || e.Content == nil {
		return nil, validationError("Only generated evidence can be exported")
	}
	if s.renderer == nil {
		return nil, configurationError("PDF export is not configured")
	}

	doc := utils.EvidenceDocument{
		Title:     "Chargeback response",
		Content:   *e.Content,
		CreatedAt: e.CreatedAt,
	}
	if d, err := s.disputes.Get(ctx, e.DisputeID); err == nil {
		doc.DisputeRef = d.StripeDisputeID
		doc.Amount = fmt.Sprintf("%.2f %s", d.Amount, d.Currency)
		doc.Reason = d.Reason
	}

	pdf, err := s.renderer.RenderEvidencePDF(ctx, doc)
	if err != nil {
		log.Printf("❌ Rendu PDF échoué pour %s: %v", id, err)
		return nil, upstreamError(err, "Failed to render PDF")
	}
	return pdf, nil
}

func (s *EvidenceService) Delete(ctx context.Context, userID string, id gocql.UUID) error {
	e, err := s.owned(ctx, userID, id)
	if err != nil {
		return err
	}
	if e.StoragePath != nil && s.storage != nil {
		if err := s.storage.Remove(ctx, *e.StoragePath); err != nil {
			log.Printf("⚠️ Suppression MinIO échouée (%s): %v", *e.StoragePath, err)
		}
	}
	if err := s.evidence.Delete(ctx, id); err != nil {
		return persistenceError(err, "Failed to delete evidence")
	}
	return nil
}

func (s *EvidenceService) ownedDispute(ctx context.Context, userID string, disputeID gocql.UUID) (*models.Dispute, error) {
	d, err := s.disputes.Get(ctx, disputeID)
	if err == ErrNotFound || (err == nil && d.UserID != userID) {
		return nil, notFoundError("Dispute not found")
	}
	if err != nil {
		return nil, persistenceError(err, "Failed to load dispute")
	}
	return d, nil
}

func (s *EvidenceService) owned(ctx context.Context, userID string, id gocql.UUID) (*models.Evidence, error) {
	e, err := s.evidence.Get(ctx, id)
	if err == ErrNotFound || (err == nil && e.UserID != userID) {
		return nil, notFoundError("Evidence not found")
	}
	if err != nil {
		return nil, persistenceError(err, "Failed to load evidence")
	}
	return e, nil
}
