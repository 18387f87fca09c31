package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"disputeshield_back_end/internal/config"
	"disputeshield_back_end/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	// ProcessedEventTTL : durée pendant laquelle un événement Stripe traité est mémorisé
	ProcessedEventTTL = 24 * time.Hour

	MessageDisputeChanged = "dispute_changed"
)

// Store regroupe les usages Redis du service : idempotence webhook, rate limit, flux temps réel
type Store struct {
	client *redis.Client
}

// Connect ouvre le client Redis et vérifie la connexion
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("REDIS_HOST non configuré")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("impossible de se connecter à Redis: %v", err)
	}

	log.Println("✅ Redis connecté avec succès")
	return client, nil
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// --- Idempotence des webhooks ---

func eventKey(eventID string) string {
	return fmt.Sprintf("stripe:event:%s", eventID)
}

// Claim réserve un événement ; false s'il a déjà été traité (ou est en cours)
func (s *Store) Claim(ctx context.Context, eventID string) (bool, error) {
	return s.client.SetNX(ctx, eventKey(eventID), time.Now().Unix(), ProcessedEventTTL).Result()
}

// Release libère la réservation pour que Stripe puisse relivrer l'événement
func (s *Store) Release(ctx context.Context, eventID string) error {
	return s.client.Del(ctx, eventKey(eventID)).Err()
}

// --- Rate Limiting ---

// IncrementRateLimit incrémente le compteur ; l'expiration n'est posée qu'à la première requête de la fenêtre
func (s *Store) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// --- Flux temps réel ---

// DisputeMessage : message poussé au tableau de bord
type DisputeMessage struct {
	Type    string          `json:"type"`
	Dispute *models.Dispute `json:"dispute"`
}

func DisputeChannel(userID string) string {
	return "disputes:" + userID
}

func (s *Store) PublishDispute(ctx context.Context, d *models.Dispute) error {
	payload, err := json.Marshal(DisputeMessage{Type: MessageDisputeChanged, Dispute: d})
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, DisputeChannel(d.UserID), payload).Err()
}

// SubscribeDisputes s'abonne au canal de l'utilisateur et attend la confirmation de Redis.
// L'appelant doit appeler la fonction de fermeture renvoyée.
func (s *Store) SubscribeDisputes(ctx context.Context, userID string) (<-chan *redis.Message, func() error, error) {
	pubsub := s.client.Subscribe(ctx, DisputeChannel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, err
	}
	return pubsub.Channel(), pubsub.Close, nil
}
