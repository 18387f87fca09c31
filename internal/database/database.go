package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"disputeshield_back_end/internal/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
)

// Clients : connexions ouvertes au démarrage et fermées à l'arrêt du processus.
// Elastic et MinIO sont facultatifs (nil si non configurés).
type Clients struct {
	Scylla  *gocql.Session
	Redis   *redis.Client
	Elastic *elasticsearch.Client
	MinIO   *minio.Client
}

// Connect ouvre ScyllaDB (obligatoire) puis Elasticsearch et MinIO s'ils sont configurés.
// Redis est ouvert par le package cache et rattaché ici par l'appelant.
func Connect(ctx context.Context, cfg *config.Config) (*Clients, error) {
	session, err := ConnectScylla(cfg.Scylla)
	if err != nil {
		return nil, fmt.Errorf("échec initialisation ScyllaDB: %w", err)
	}
	clients := &Clients{Scylla: session}

	if cfg.Elastic.URL != "" {
		es, err := connectElastic(cfg.Elastic)
		if err != nil {
			clients.Close()
			return nil, err
		}
		clients.Elastic = es
	} else {
		log.Println("⚠️ ELASTIC_URL non défini: recherche désactivée")
	}

	if cfg.MinIO.Endpoint != "" {
		mc, err := connectMinIO(cfg.MinIO)
		if err != nil {
			clients.Close()
			return nil, err
		}
		clients.MinIO = mc
	} else {
		log.Println("⚠️ MINIO_ENDPOINT non défini: dépôt de fichiers désactivé")
	}

	log.Println("✅ Toutes les bases de données sont connectées")
	return clients, nil
}

func (c *Clients) Close() {
	if c.Scylla != nil {
		c.Scylla.Close()
		log.Println("🔌 Session ScyllaDB fermée")
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️ Fermeture Redis: %v", err)
		}
	}
}

// =============================================
// SCYLLA DB
// =============================================

// createScyllaCluster crée la configuration de cluster pour le keyspace applicatif
func createScyllaCluster(cfg config.ScyllaConfig) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = cfg.Timeout
	cluster.NumConns = cfg.NumConns

	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	if cfg.SSLEnabled {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 cfg.CACertPath,
			EnableHostVerification: cfg.CACertPath != "",
		}
	}

	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}

// ConnectScylla ouvre une session sur le keyspace. Les tables sont créées par scripts/scylladb_init.cql.
func ConnectScylla(cfg config.ScyllaConfig) (*gocql.Session, error) {
	session, err := createScyllaCluster(cfg).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur création session pour %s: %v", cfg.Keyspace, err)
	}
	log.Printf("✅ Session ScyllaDB ouverte pour le keyspace '%s'", cfg.Keyspace)
	return session, nil
}

// =============================================
// ELASTICSEARCH
// =============================================
func connectElastic(cfg config.ElasticConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("erreur création client Elasticsearch: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("erreur connexion Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	log.Println("✅ Connecté à Elasticsearch")
	return client, nil
}

// =============================================
// MINIO
// =============================================
func connectMinIO(cfg config.MinIOConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("erreur connexion MinIO: %w", err)
	}

	log.Println("✅ Connecté à MinIO :", cfg.Endpoint)
	return client, nil
}
