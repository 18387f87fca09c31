package database

import (
	"context"
	"sort"

	"disputeshield_back_end/internal/models"
	"disputeshield_back_end/internal/services"

	"github.com/gocql/gocql"
)

const notificationColumns = `id, user_id, type, title, message, dispute_id, read, created_at`

type NotificationStore struct {
	session *gocql.Session
}

func NewNotificationStore(session *gocql.Session) *NotificationStore {
	return &NotificationStore{session: session}
}

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	return s.session.Query(`INSERT INTO notifications (`+notificationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.DisputeID, n.Read, n.CreatedAt,
	).WithContext(ctx).Exec()
}

// ListByUser : plus récentes d'abord
func (s *NotificationStore) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	iter := s.session.Query(`SELECT `+notificationColumns+` FROM notifications WHERE user_id = ?`, userID).
		WithContext(ctx).Iter()

	list := []models.Notification{}
	scanner := iter.Scanner()
	for scanner.Next() {
		var n models.Notification
		if err := scanner.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.DisputeID, &n.Read, &n.CreatedAt); err != nil {
			iter.Close()
			return nil, err
		}
		list = append(list, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

// MarkRead : la condition LWT sur user_id empêche de marquer la notification d'un autre utilisateur
func (s *NotificationStore) MarkRead(ctx context.Context, id gocql.UUID, userID string) error {
	applied, err := s.session.Query(`UPDATE notifications SET read = true WHERE id = ? IF user_id = ?`, id, userID).
		WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return services.ErrNotFound
	}
	return nil
}
