package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"disputeshield_back_end/internal/services"

	"github.com/gin-gonic/gin"
)

// MaxWebhookBodyBytes : Stripe n'envoie jamais d'événement de plus de 64 Ko pour un litige
const MaxWebhookBodyBytes = int64(65536)

type WebhookIngester interface {
	Ingest(ctx context.Context, payload []byte, signature string) (services.WebhookOutcome, error)
}

type WebhookHandler struct {
	ingester WebhookIngester
}

func NewWebhookHandler(ingester WebhookIngester) *WebhookHandler {
	return &WebhookHandler{ingester: ingester}
}

// Handle : POST /api/stripe/webhook
// Le corps brut est requis tel quel pour la vérification de signature.
func (h *WebhookHandler) Handle(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxWebhookBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Payload too large"})
			return
		}
		log.Printf("❌ Lecture du webhook échouée: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	outcome, err := h.ingester.Ingest(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		switch services.KindOf(err) {
		case services.KindAuthentication:
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		case services.KindValidation:
			respondErrorStatus(c, http.StatusBadRequest, err)
		default:
			// 500 : Stripe relivrera l'événement
			respondErrorStatus(c, http.StatusInternalServerError, err)
		}
		return
	}

	log.Printf("✅ Webhook traité (%s)", outcome)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
