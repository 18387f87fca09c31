package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Politiques de mise à jour de evidence_submitted_at sur dispute.updated
const (
	EvidencePolicyOverwrite     = "overwrite"
	EvidencePolicyPreserveFirst = "preserve_first"
)

type Config struct {
	Port        string
	BaseURL     string
	FrontendURL string

	JWTSecret     string
	SessionSecret string

	Stripe  StripeConfig
	Scylla  ScyllaConfig
	Redis   RedisConfig
	Elastic ElasticConfig
	MinIO   MinIOConfig
	SMTP    SMTPConfig
	OpenAI  OpenAIConfig
}

type StripeConfig struct {
	ClientID      string
	SecretKey     string
	RedirectURI   string
	WebhookSecret string
	// 0 désactive le contrôle de fraîcheur de la signature
	WebhookTolerance time.Duration
	// overwrite | preserve_first
	EvidenceSubmittedPolicy string
}

type ScyllaConfig struct {
	Hosts      []string
	Keyspace   string
	Username   string
	Password   string
	SSLEnabled bool
	CACertPath string
	Timeout    time.Duration
	NumConns   int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ElasticConfig struct {
	URL      string
	Username string
	Password string
	Index    string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Load charge le .env (s'il existe) puis construit la configuration
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé: on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration invalide: %w", err)
	}
	return cfg, nil
}

// FromEnv lit la configuration depuis l'environnement, sans validation
func FromEnv() *Config {
	baseURL := strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/")

	return &Config{
		Port:          getEnv("PORT", "8080"),
		BaseURL:       baseURL,
		FrontendURL:   strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		Stripe: StripeConfig{
			ClientID:                os.Getenv("STRIPE_CLIENT_ID"),
			SecretKey:               os.Getenv("STRIPE_SECRET_KEY"),
			RedirectURI:             getEnv("STRIPE_REDIRECT_URI", baseURL+"/stripe-callback"),
			WebhookSecret:           os.Getenv("STRIPE_WEBHOOK_SECRET"),
			WebhookTolerance:        getEnvAsDuration("STRIPE_WEBHOOK_TOLERANCE", "5m"),
			EvidenceSubmittedPolicy: getEnv("EVIDENCE_SUBMITTED_POLICY", EvidencePolicyOverwrite),
		},
		Scylla: ScyllaConfig{
			Hosts:      splitList(getEnv("SCYLLA_HOSTS", "127.0.0.1")),
			Keyspace:   getEnv("SCYLLA_KEYSPACE", "disputeshield"),
			Username:   os.Getenv("SCYLLA_USERNAME"),
			Password:   os.Getenv("SCYLLA_PASSWORD"),
			SSLEnabled: strings.ToLower(os.Getenv("SCYLLA_SSL_ENABLED")) == "true",
			CACertPath: os.Getenv("SCYLLA_SSL_CA_PATH"),
			Timeout:    getEnvAsDuration("SCYLLA_TIMEOUT", "5s"),
			NumConns:   getEnvAsInt("SCYLLA_NUM_CONNS", 20),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Elastic: ElasticConfig{
			URL:      os.Getenv("ELASTIC_URL"),
			Username: os.Getenv("ELASTIC_USER"),
			Password: os.Getenv("ELASTIC_PASSWORD"),
			Index:    getEnv("ELASTIC_DISPUTES_INDEX", "disputes"),
		},
		MinIO: MinIOConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    getEnv("MINIO_BUCKET", "evidence"),
			UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnv("SMTP_FROM", "noreply@disputeshield.io"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		},
	}
}

// Validate vérifie uniquement ce sans quoi le serveur ne peut pas démarrer.
// Les identifiants Stripe manquants sont signalés à l'appel (erreur de configuration 500).
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT ne peut pas être vide")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET manquant")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET manquant")
	}
	if len(c.Scylla.Hosts) == 0 || c.Scylla.Keyspace == "" {
		return fmt.Errorf("SCYLLA_HOSTS et SCYLLA_KEYSPACE sont requis")
	}
	if c.Stripe.WebhookTolerance < 0 {
		return fmt.Errorf("STRIPE_WEBHOOK_TOLERANCE ne peut pas être négatif")
	}
	switch c.Stripe.EvidenceSubmittedPolicy {
	case EvidencePolicyOverwrite, EvidencePolicyPreserveFirst:
	default:
		return fmt.Errorf("EVIDENCE_SUBMITTED_POLICY invalide: %s (overwrite ou preserve_first)", c.Stripe.EvidenceSubmittedPolicy)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	// "0" sans unité est accepté par time.ParseDuration
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
