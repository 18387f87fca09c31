package database

import (
	"context"

	"disputeshield_back_end/internal/models"

	"github.com/gocql/gocql"
)

type AuditStore struct {
	session *gocql.Session
}

func NewAuditStore(session *gocql.Session) *AuditStore {
	return &AuditStore{session: session}
}

func (s *AuditStore) Record(ctx context.Context, entry *models.AuditLog) error {
	if (entry.ID == gocql.UUID{}) {
		entry.ID = gocql.TimeUUID()
	}
	return s.session.Query(`INSERT INTO audit_logs (
			id, user_id, user_email, action, resource, resource_id,
			ip_address, user_agent, success, error_msg, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.UserEmail, entry.Action, entry.Resource, entry.ResourceID,
		entry.IPAddress, entry.UserAgent, entry.Success, entry.ErrorMsg, entry.Timestamp,
	).WithContext(ctx).Exec()
}
