package models

import (
	"time"

	"github.com/gocql/gocql"
)

type EvidenceType string

const (
	EvidenceTypeGenerated EvidenceType = "generated"
	EvidenceTypeUploaded  EvidenceType = "uploaded"
)

// Evidence : texte généré (Content) ou fichier déposé dans MinIO (StoragePath), jamais les deux
type Evidence struct {
	ID          gocql.UUID   `json:"id" db:"id"`
	DisputeID   gocql.UUID   `json:"dispute_id" db:"dispute_id"`
	UserID      string       `json:"user_id" db:"user_id"`
	Type        EvidenceType `json:"type" db:"type"`
	Content     *string      `json:"content,omitempty" db:"content"`
	StoragePath *string      `json:"storage_path,omitempty" db:"storage_path"`
	FileName    *string      `json:"file_name,omitempty" db:"file_name"`
	FileSize    *int64       `json:"file_size,omitempty" db:"file_size"`
	MimeType    *string      `json:"mime_type,omitempty" db:"mime_type"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}
