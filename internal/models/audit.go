package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Actions auditées
const (
	AuditStripeConnect    = "stripe.connect"
	AuditStripeDisconnect = "stripe.disconnect"
	AuditDisputesFetch    = "stripe.disputes_fetch"
	AuditEvidenceUpload   = "evidence.upload"
	AuditEvidenceGenerate = "evidence.generate"
	AuditEvidenceDelete   = "evidence.delete"
)

const (
	ResourceConnection = "stripe_connection"
	ResourceDispute    = "dispute"
	ResourceEvidence   = "evidence"
)

// AuditLog : trace d'une action sensible (table audit_logs)
type AuditLog struct {
	ID         gocql.UUID `json:"id"`
	UserID     string     `json:"user_id"`
	UserEmail  string     `json:"user_email"`
	Action     string     `json:"action"`
	Resource   string     `json:"resource"`
	ResourceID string     `json:"resource_id,omitempty"`
	IPAddress  string     `json:"ip_address"`
	UserAgent  string     `json:"user_agent"`
	Success    bool       `json:"success"`
	ErrorMsg   string     `json:"error_msg,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}
