package database

import (
	"context"

	"disputeshield_back_end/internal/models"

	"github.com/gocql/gocql"
)

const evidenceColumns = `id, dispute_id, user_id, type, content, storage_path, file_name, file_size, mime_type, created_at`

type EvidenceStore struct {
	session *gocql.Session
}

func NewEvidenceStore(session *gocql.Session) *EvidenceStore {
	return &EvidenceStore{session: session}
}

func (s *EvidenceStore) Create(ctx context.Context, e *models.Evidence) error {
	return s.session.Query(`INSERT INTO evidence (`+evidenceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.DisputeID, e.UserID, string(e.Type), e.Content, e.StoragePath, e.FileName, e.FileSize, e.MimeType, e.CreatedAt,
	).WithContext(ctx).Exec()
}

func scanEvidence(scan func(dest ...interface{}) error) (*models.Evidence, error) {
	var e models.Evidence
	var kind string
	err := scan(&e.ID, &e.DisputeID, &e.UserID, &kind, &e.Content, &e.StoragePath, &e.FileName, &e.FileSize, &e.MimeType, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Type = models.EvidenceType(kind)
	return &e, nil
}

func (s *EvidenceStore) Get(ctx context.Context, id gocql.UUID) (*models.Evidence, error) {
	e, err := scanEvidence(s.session.Query(`SELECT `+evidenceColumns+` FROM evidence WHERE id = ?`, id).
		WithContext(ctx).Scan)
	return e, notFound(err)
}

func (s *EvidenceStore) ListByDispute(ctx context.Context, disputeID gocql.UUID) ([]models.Evidence, error) {
	iter := s.session.Query(`SELECT `+evidenceColumns+` FROM evidence WHERE dispute_id = ?`, disputeID).
		WithContext(ctx).Iter()

	list := []models.Evidence{}
	scanner := iter.Scanner()
	for scanner.Next() {
		e, err := scanEvidence(scanner.Scan)
		if err != nil {
			iter.Close()
			return nil, err
		}
		list = append(list, *e)
	}
	return list, scanner.Err()
}

func (s *EvidenceStore) Delete(ctx context.Context, id gocql.UUID) error {
	return s.session.Query(`DELETE FROM evidence WHERE id = ?`, id).WithContext(ctx).Exec()
}
