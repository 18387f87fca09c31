package middleware

import (
	"context"
	"log"
	"time"

	"disputeshield_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// AuditResourceKey : un handler peut y placer l'identifiant créé (ex. nouvelle connexion)
const AuditResourceKey = "audit_resource_id"

type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

// AuditCriticalActions trace l'action après traitement, succès (2xx) ou échec.
// L'écriture est asynchrone et n'affecte jamais la réponse.
func AuditCriticalActions(recorder AuditRecorder, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if recorder == nil {
			return
		}

		resourceID := c.GetString(AuditResourceKey)
		if resourceID == "" {
			resourceID = c.Param("id")
		}

		status := c.Writer.Status()
		entry := &models.AuditLog{
			UserID:     c.GetString("user_id"),
			UserEmail:  c.GetString("email"),
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
			Success:    status >= 200 && status < 300,
			Timestamp:  time.Now().UTC(),
		}
		if !entry.Success {
			entry.ErrorMsg = "Action échouée"
			if len(c.Errors) > 0 {
				entry.ErrorMsg = c.Errors.Last().Error()
			}
		}

		// le contexte de la requête est annulé dès la réponse envoyée
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := recorder.Record(ctx, entry); err != nil {
				log.Printf("❌ Erreur enregistrement log audit: %v", err)
			}
		}()
	}
}
