package database

import (
	"context"
	"errors"
	"time"

	"disputeshield_back_end/internal/models"
	"disputeshield_back_end/internal/services"

	"github.com/gocql/gocql"
)

const connectionColumns = `id, user_id, stripe_account_id, access_token, refresh_token, account_name,
	connected, last_synced, created_at, updated_at`

// ConnectionStore : table stripe_connections
type ConnectionStore struct {
	session *gocql.Session
}

func NewConnectionStore(session *gocql.Session) *ConnectionStore {
	return &ConnectionStore{session: session}
}

func (s *ConnectionStore) Create(ctx context.Context, c *models.StripeConnection) error {
	return s.session.Query(`INSERT INTO stripe_connections (`+connectionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.StripeAccountID, c.AccessToken, c.RefreshToken, c.AccountName,
		c.Connected, c.LastSynced, c.CreatedAt, c.UpdatedAt,
	).WithContext(ctx).Exec()
}

func scanConnection(scan func(dest ...interface{}) error) (*models.StripeConnection, error) {
	var c models.StripeConnection
	err := scan(&c.ID, &c.UserID, &c.StripeAccountID, &c.AccessToken, &c.RefreshToken, &c.AccountName,
		&c.Connected, &c.LastSynced, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ConnectionStore) Get(ctx context.Context, id gocql.UUID) (*models.StripeConnection, error) {
	c, err := scanConnection(s.session.Query(`SELECT `+connectionColumns+` FROM stripe_connections WHERE id = ?`, id).
		WithContext(ctx).Scan)
	return c, notFound(err)
}

// GetByStripeAccount renvoie la connexion active en priorité quand un compte a été reconnecté
func (s *ConnectionStore) GetByStripeAccount(ctx context.Context, stripeAccountID string) (*models.StripeConnection, error) {
	iter := s.session.Query(`SELECT `+connectionColumns+` FROM stripe_connections WHERE stripe_account_id = ?`, stripeAccountID).
		WithContext(ctx).Iter()

	var found *models.StripeConnection
	scanner := iter.Scanner()
	for scanner.Next() {
		c, err := scanConnection(scanner.Scan)
		if err != nil {
			iter.Close()
			return nil, err
		}
		if found == nil || (c.Connected && (!found.Connected || c.CreatedAt.After(found.CreatedAt))) {
			found = c
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if found == nil {
		return nil, services.ErrNotFound
	}
	return found, nil
}

func (s *ConnectionStore) ListByUser(ctx context.Context, userID string) ([]models.StripeConnection, error) {
	iter := s.session.Query(`SELECT `+connectionColumns+` FROM stripe_connections WHERE user_id = ?`, userID).
		WithContext(ctx).Iter()

	conns := []models.StripeConnection{}
	scanner := iter.Scanner()
	for scanner.Next() {
		c, err := scanConnection(scanner.Scan)
		if err != nil {
			iter.Close()
			return nil, err
		}
		conns = append(conns, *c)
	}
	return conns, scanner.Err()
}

// SetConnected : les jetons restent en base, seul le drapeau change
func (s *ConnectionStore) SetConnected(ctx context.Context, id gocql.UUID, connected bool, at time.Time) error {
	return s.session.Query(`UPDATE stripe_connections SET connected = ?, updated_at = ? WHERE id = ?`,
		connected, at, id).WithContext(ctx).Exec()
}

// UpdateCredentials : reconnexion d'un compte déjà connu, la ligne et ses litiges sont conservés
func (s *ConnectionStore) UpdateCredentials(ctx context.Context, id gocql.UUID, accessToken, refreshToken, accountName string, at time.Time) error {
	return s.session.Query(`UPDATE stripe_connections SET access_token = ?, refresh_token = ?, account_name = ?,
		connected = true, updated_at = ? WHERE id = ?`,
		accessToken, refreshToken, accountName, at, id).WithContext(ctx).Exec()
}

func (s *ConnectionStore) SetLastSynced(ctx context.Context, id gocql.UUID, at time.Time) error {
	return s.session.Query(`UPDATE stripe_connections SET last_synced = ?, updated_at = ? WHERE id = ?`,
		at, at, id).WithContext(ctx).Exec()
}

// notFound convertit gocql.ErrNotFound en erreur de store
func notFound(err error) error {
	if errors.Is(err, gocql.ErrNotFound) {
		return services.ErrNotFound
	}
	return err
}
