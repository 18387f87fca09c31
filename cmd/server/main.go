package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"disputeshield_back_end/internal/cache"
	"disputeshield_back_end/internal/config"
	"disputeshield_back_end/internal/database"
	"disputeshield_back_end/internal/handlers"
	"disputeshield_back_end/internal/routes"
	"disputeshield_back_end/internal/services"
	"disputeshield_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	if cfg.Stripe.ClientID == "" || cfg.Stripe.SecretKey == "" {
		log.Println("⚠️ STRIPE_CLIENT_ID / STRIPE_SECRET_KEY manquants: la connexion Stripe renverra une erreur de configuration")
	}
	if cfg.Stripe.WebhookSecret == "" {
		log.Println("⚠️ STRIPE_WEBHOOK_SECRET manquant: tous les webhooks seront rejetés")
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	clients, err := database.Connect(startCtx, cfg)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer clients.Close()

	redisClient, err := cache.Connect(startCtx, cfg.Redis)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	clients.Redis = redisClient
	redisStore := cache.New(redisClient)

	// stores ScyllaDB
	connectionStore := database.NewConnectionStore(clients.Scylla)
	disputeStore := database.NewDisputeStore(clients.Scylla)
	evidenceStore := database.NewEvidenceStore(clients.Scylla)
	notificationStore := database.NewNotificationStore(clients.Scylla)
	auditStore := database.NewAuditStore(clients.Scylla)

	// dépendances facultatives : jamais de nil typé derrière une interface
	var (
		indexer  services.DisputeIndexer
		searcher services.DisputeSearcher
		storage  services.ObjectStorage
		mailer   services.Mailer
	)
	if clients.Elastic != nil {
		search := services.NewDisputeSearch(clients.Elastic, cfg.Elastic.Index)
		if err := search.EnsureIndex(startCtx); err != nil {
			log.Printf("⚠️ Index Elasticsearch indisponible: %v", err)
		}
		indexer, searcher = search, search
	}
	if clients.MinIO != nil {
		minioStorage := services.NewMinIOStorage(clients.MinIO, cfg.MinIO.Bucket)
		if err := minioStorage.EnsureBucket(startCtx); err != nil {
			log.Fatalf("❌ Bucket MinIO: %v", err)
		}
		storage = minioStorage
	}
	if m := utils.NewMailer(cfg.SMTP); m != nil {
		mailer = m
	} else {
		log.Println("⚠️ SMTP_HOST non défini: notifications sans e-mail")
	}

	var generator services.TextGenerator
	if cfg.OpenAI.APIKey != "" {
		generator = services.NewOpenAIGenerator(cfg.OpenAI)
	} else {
		log.Println("⚠️ OPENAI_API_KEY non défini: génération de preuves désactivée")
	}

	// services
	oauthConfig := cfg.StripeOAuthConfig()
	exchanger := services.NewOAuthExchangeService(oauthConfig)
	flow := services.NewConnectionFlow(oauthConfig, exchanger, connectionStore)
	connectionService := services.NewConnectionService(connectionStore)
	syncService := services.NewDisputeSyncService(connectionStore, disputeStore,
		services.NewStripeDisputeLister(), indexer, redisStore)
	notificationService := services.NewNotificationService(notificationStore, mailer, cfg.FrontendURL)
	webhookService := services.NewWebhookIngestService(services.WebhookDeps{
		Verifier:       utils.NewSignatureVerifier(cfg.Stripe.WebhookSecret, cfg.Stripe.WebhookTolerance),
		Connections:    connectionStore,
		Disputes:       disputeStore,
		Dedup:          redisStore,
		Indexer:        indexer,
		Publisher:      redisStore,
		Notifier:       notificationService,
		EvidencePolicy: cfg.Stripe.EvidenceSubmittedPolicy,
	})
	disputeService := services.NewDisputeService(disputeStore, searcher)
	evidenceService := services.NewEvidenceService(disputeStore, evidenceStore, storage, generator,
		utils.NewPDFRenderer(30*time.Second))

	sessionStore := handlers.NewFlowSessionStore(cfg.SessionSecret, strings.HasPrefix(cfg.BaseURL, "https://"))

	r := gin.Default()
	routes.RegisterRoutes(r, routes.Deps{
		JWTSecret: cfg.JWTSecret,
		Limiter:   redisStore,
		Audit:     auditStore,
		Stripe: handlers.NewStripeHandler(handlers.StripeHandlerDeps{
			Exchanger:    exchanger,
			Flow:         flow,
			Connections:  connectionService,
			Syncer:       syncService,
			Sessions:     sessionStore,
			DashboardURL: cfg.FrontendURL + "/dashboard",
		}),
		Webhook:       handlers.NewWebhookHandler(webhookService),
		Disputes:      handlers.NewDisputeHandler(disputeService),
		Live:          handlers.NewLiveHandler(redisStore),
		Evidence:      handlers.NewEvidenceHandler(evidenceService),
		Notifications: handlers.NewNotificationHandler(notificationService),
	})

	// pas de WriteTimeout : il couperait les WebSockets du flux temps réel
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// retour normal de main : les defer (Scylla, Redis...) s'exécutent aussi sur échec d'écoute
	if err := serve(server, quit, 30*time.Second); err != nil {
		log.Printf("❌ %v", err)
	}
}
