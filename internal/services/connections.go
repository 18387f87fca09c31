package services

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"disputeshield_back_end/internal/models"

	"github.com/gocql/gocql"
)

// ConnectionService : consultation et déconnexion des comptes Stripe d'un utilisateur
type ConnectionService struct {
	connections ConnectionStore
	now         func() time.Time
}

func NewConnectionService(connections ConnectionStore) *ConnectionService {
	return &ConnectionService{connections: connections, now: time.Now}
}

// List : plus récentes d'abord
func (s *ConnectionService) List(ctx context.Context, userID string) ([]models.StripeConnection, error) {
	conns, err := s.connections.ListByUser(ctx, userID)
	if err != nil {
		return nil, persistenceError(err, "Failed to load Stripe connections")
	}
	if conns == nil {
		conns = []models.StripeConnection{}
	}
	sort.Slice(conns, func(i, j int) bool { return conns[i].CreatedAt.After(conns[j].CreatedAt) })
	return conns, nil
}

// Disconnect pose connected = false ; les jetons restent en base mais ne sont plus utilisés
func (s *ConnectionService) Disconnect(ctx context.Context, userID string, id gocql.UUID) error {
	conn, err := s.connections.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFoundError("Connection not found")
		}
		return persistenceError(err, "Failed to load Stripe connection")
	}
	if conn.UserID != userID {
		return notFoundError("Connection not found")
	}
	if !conn.Connected {
		return nil
	}

	if err := s.connections.SetConnected(ctx, id, false, s.now().UTC()); err != nil {
		return persistenceError(err, "Failed to disconnect Stripe account")
	}
	log.Printf("🔌 Compte Stripe %s déconnecté", conn.StripeAccountID)
	return nil
}
