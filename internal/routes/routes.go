package routes

import (
	"time"

	"disputeshield_back_end/internal/handlers"
	"disputeshield_back_end/internal/middleware"
	"disputeshield_back_end/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps : handlers et middlewares construits par main
type Deps struct {
	JWTSecret     string
	Limiter       middleware.RateLimiter
	Audit         middleware.AuditRecorder
	Stripe        *handlers.StripeHandler
	Webhook       *handlers.WebhookHandler
	Disputes      *handlers.DisputeHandler
	Live          *handlers.LiveHandler
	Evidence      *handlers.EvidenceHandler
	Notifications *handlers.NotificationHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	// le tableau de bord est servi depuis un autre domaine : origine libre, pas de cookie cross-site
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/health", handlers.Health)

	// retour de Stripe Connect : authentifié par le cookie de flux, pas par JWT
	r.GET("/stripe-callback",
		middleware.AuditCriticalActions(d.Audit, models.AuditStripeConnect, models.ResourceConnection),
		d.Stripe.Callback)

	// webhook : authentifié par la signature Stripe
	r.POST("/api/stripe/webhook",
		middleware.RateLimit(d.Limiter, "webhook", middleware.WebhookMaxRequests, middleware.RateLimitWindow),
		d.Webhook.Handle)

	api := r.Group("/api")
	api.Use(middleware.RateLimit(d.Limiter, "api", middleware.APIMaxRequests, middleware.RateLimitWindow))

	// ouvertes directement par le navigateur, sans en-tête : jeton en query accepté
	api.GET("/stripe/connect", middleware.AuthRequiredWithQueryToken(d.JWTSecret), d.Stripe.Connect)
	api.GET("/disputes/live", middleware.AuthRequiredWithQueryToken(d.JWTSecret), d.Live.Stream)

	authed := api.Group("", middleware.AuthRequired(d.JWTSecret))

	stripeGroup := authed.Group("/stripe")
	{
		stripeGroup.POST("/oauth/exchange", d.Stripe.Exchange)
		stripeGroup.POST("/connect", d.Stripe.Connect)
		stripeGroup.GET("/connections", d.Stripe.ListConnections)
		stripeGroup.POST("/connections/:id/disconnect",
			middleware.AuditCriticalActions(d.Audit, models.AuditStripeDisconnect, models.ResourceConnection),
			d.Stripe.Disconnect)
		stripeGroup.POST("/connections/:id/synced", d.Stripe.MarkSynced)
		stripeGroup.POST("/disputes/fetch",
			middleware.AuditCriticalActions(d.Audit, models.AuditDisputesFetch, models.ResourceConnection),
			d.Stripe.FetchDisputes)
	}

	disputes := authed.Group("/disputes")
	{
		disputes.GET("", d.Disputes.List)
		disputes.GET("/stats", d.Disputes.Stats)
		disputes.GET("/search", d.Disputes.Search)
		disputes.GET("/:id", d.Disputes.Get)
		disputes.GET("/:id/evidence", d.Evidence.List)
		disputes.POST("/:id/evidence",
			middleware.AuditCriticalActions(d.Audit, models.AuditEvidenceUpload, models.ResourceEvidence),
			d.Evidence.Upload)
	}

	evidence := authed.Group("/evidence")
	{
		evidence.POST("/generate",
			middleware.AuditCriticalActions(d.Audit, models.AuditEvidenceGenerate, models.ResourceEvidence),
			d.Evidence.Generate)
		evidence.GET("/:id/download", d.Evidence.Download)
		evidence.GET("/:id/pdf", d.Evidence.PDF)
		evidence.DELETE("/:id",
			middleware.AuditCriticalActions(d.Audit, models.AuditEvidenceDelete, models.ResourceEvidence),
			d.Evidence.Delete)
	}

	notifications := authed.Group("/notifications")
	{
		notifications.POST("/send", d.Notifications.Send)
		notifications.GET("", d.Notifications.List)
		notifications.POST("/:id/read", d.Notifications.MarkRead)
	}
}
