package models

import (
	"time"

	"github.com/gocql/gocql"
)

const (
	NotificationDisputeCreated = "dispute_created"
	NotificationDisputeUpdated = "dispute_updated"
	NotificationDisputeWon     = "dispute_won"
	NotificationDisputeLost    = "dispute_lost"
	NotificationEvidenceDue    = "evidence_due"
)

type Notification struct {
	ID        gocql.UUID  `json:"id" db:"id"`
	UserID    string      `json:"user_id" db:"user_id"`
	Type      string      `json:"type" db:"type"`
	Title     string      `json:"title" db:"title"`
	Message   string      `json:"message" db:"message"`
	DisputeID *gocql.UUID `json:"dispute_id,omitempty" db:"dispute_id"`
	Read      bool        `json:"read" db:"read"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}
