package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"disputeshield_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/stripe/stripe-go/v83"
)

// Stores en mémoire partagés par les tests du package

type memConnections struct {
	mu        sync.Mutex
	rows      map[gocql.UUID]*models.StripeConnection
	createErr error
	getErr    error
}

func newMemConnections(conns ...*models.StripeConnection) *memConnections {
	m := &memConnections{rows: map[gocql.UUID]*models.StripeConnection{}}
	for _, c := range conns {
		m.rows[c.ID] = c
	}
	return m
}

func (m *memConnections) Create(_ context.Context, c *models.StripeConnection) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memConnections) Get(_ context.Context, id gocql.UUID) (*models.StripeConnection, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memConnections) GetByStripeAccount(_ context.Context, acct string) (*models.StripeConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *models.StripeConnection
	for _, c := range m.rows {
		if c.StripeAccountID == acct && (found == nil || (c.Connected && !found.Connected)) {
			found = c
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	cp := *found
	return &cp, nil
}

func (m *memConnections) ListByUser(_ context.Context, userID string) ([]models.StripeConnection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.StripeConnection
	for _, c := range m.rows {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memConnections) SetConnected(_ context.Context, id gocql.UUID, connected bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return ErrNotFound
	}
	c.Connected = connected
	c.UpdatedAt = at
	return nil
}

func (m *memConnections) UpdateCredentials(_ context.Context, id gocql.UUID, access, refresh, name string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return ErrNotFound
	}
	c.AccessToken = access
	c.RefreshToken = refresh
	c.AccountName = name
	c.Connected = true
	c.UpdatedAt = at
	return nil
}

func (m *memConnections) SetLastSynced(_ context.Context, id gocql.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return ErrNotFound
	}
	c.LastSynced = &at
	return nil
}

func (m *memConnections) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memDisputes struct {
	mu        sync.Mutex
	rows      map[gocql.UUID]*models.Dispute
	upsertErr map[string]error
	upserts   int
}

func newMemDisputes() *memDisputes {
	return &memDisputes{rows: map[gocql.UUID]*models.Dispute{}, upsertErr: map[string]error{}}
}

func (m *memDisputes) Upsert(_ context.Context, d *models.Dispute) error {
	if err := m.upsertErr[d.StripeDisputeID]; err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	for _, existing := range m.rows {
		if existing.StripeConnectionID == d.StripeConnectionID && existing.StripeDisputeID == d.StripeDisputeID {
			// mêmes règles que le store : champs posés par les webhooks conservés
			d.ID = existing.ID
			d.CreatedAt = existing.CreatedAt
			d.EvidenceSubmittedAt = existing.EvidenceSubmittedAt
			if d.LastEventAt == nil {
				d.LastEventAt = existing.LastEventAt
			}
			cp := *d
			m.rows[d.ID] = &cp
			return nil
		}
	}
	if (d.ID == gocql.UUID{}) {
		d.ID = gocql.TimeUUID()
	}
	cp := *d
	m.rows[d.ID] = &cp
	return nil
}

func (m *memDisputes) Get(_ context.Context, id gocql.UUID) (*models.Dispute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDisputes) GetByStripeID(_ context.Context, sid string) (*models.Dispute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.rows {
		if d.StripeDisputeID == sid {
			cp := *d
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memDisputes) GetByStripeKey(_ context.Context, connID gocql.UUID, sid string) (*models.Dispute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.rows {
		if d.StripeConnectionID == connID && d.StripeDisputeID == sid {
			cp := *d
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memDisputes) ListByUser(_ context.Context, userID string) ([]models.Dispute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Dispute
	for _, d := range m.rows {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memDisputes) Update(_ context.Context, d *models.Dispute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[d.ID]; !ok {
		return ErrNotFound
	}
	cp := *d
	m.rows[d.ID] = &cp
	return nil
}

func (m *memDisputes) all() []models.Dispute {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Dispute, 0, len(m.rows))
	for _, d := range m.rows {
		out = append(out, *d)
	}
	return out
}

type memEvidence struct {
	mu   sync.Mutex
	rows map[gocql.UUID]*models.Evidence
}

func newMemEvidence() *memEvidence {
	return &memEvidence{rows: map[gocql.UUID]*models.Evidence{}}
}

func (m *memEvidence) Create(_ context.Context, e *models.Evidence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.rows[e.ID] = &cp
	return nil
}

func (m *memEvidence) Get(_ context.Context, id gocql.UUID) (*models.Evidence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memEvidence) ListByDispute(_ context.Context, disputeID gocql.UUID) ([]models.Evidence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Evidence
	for _, e := range m.rows {
		if e.DisputeID == disputeID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *memEvidence) Delete(_ context.Context, id gocql.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

type memNotifications struct {
	mu   sync.Mutex
	rows []models.Notification
}

func (m *memNotifications) Create(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, *n)
	return nil
}

func (m *memNotifications) ListByUser(_ context.Context, userID string) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Notification
	for _, n := range m.rows {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotifications) MarkRead(_ context.Context, id gocql.UUID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id && m.rows[i].UserID == userID {
			m.rows[i].Read = true
			return nil
		}
	}
	return ErrNotFound
}

type fakeLister struct {
	disputes []*stripe.Dispute
	err      error
	gotToken string
	gotLimit int
}

func (f *fakeLister) ListDisputes(_ context.Context, token string, limit int) ([]*stripe.Dispute, error) {
	f.gotToken = token
	f.gotLimit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.disputes, nil
}

type fakeExchanger struct {
	result *OAuthResult
	err    error
	calls  int
}

func (f *fakeExchanger) Exchange(_ context.Context, _ string) (*OAuthResult, error) {
	f.calls++
	return f.result, f.err
}

type memDedup struct {
	mu       sync.Mutex
	seen     map[string]bool
	released []string
}

func newMemDedup() *memDedup { return &memDedup{seen: map[string]bool{}} }

func (m *memDedup) Claim(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[id] {
		return false, nil
	}
	m.seen[id] = true
	return true, nil
}

func (m *memDedup) Release(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, id)
	m.released = append(m.released, id)
	return nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	published []string
}

func (r *recordingPublisher) PublishDispute(_ context.Context, d *models.Dispute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, d.StripeDisputeID)
	return nil
}

func (r *recordingPublisher) IndexDispute(_ context.Context, d *models.Dispute) error {
	return r.PublishDispute(context.Background(), d)
}

type recordingNotifier struct {
	mu   sync.Mutex
	reqs []NotificationRequest
}

func (r *recordingNotifier) Notify(_ context.Context, req NotificationRequest) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, req)
	return &models.Notification{ID: gocql.TimeUUID(), UserID: req.UserID, Type: req.Type}, nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	removed []string
	putErr  error
}

func newFakeStorage() *fakeStorage { return &fakeStorage{objects: map[string][]byte{}} }

func (f *fakeStorage) Put(_ context.Context, path string, r io.Reader, _ int64, _ string) error {
	if f.putErr != nil {
		return f.putErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[path] = b
	return nil
}

func (f *fakeStorage) Remove(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, path)
	f.removed = append(f.removed, path)
	return nil
}

func (f *fakeStorage) PresignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "https://minio.local/" + path + "?sig=1", nil
}

type fakeGenerator struct {
	text   string
	err    error
	prompt string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) Send(_ context.Context, to, subject, _ string) error {
	f.sent = append(f.sent, to+"|"+subject)
	return f.err
}

var errBoom = errors.New("boom")
