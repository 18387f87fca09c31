package services

import (
	"context"
	"log"
	"strings"
	"time"

	"disputeshield_back_end/internal/models"
	"disputeshield_back_end/internal/utils"

	"github.com/gocql/gocql"
)

type NotificationRequest struct {
	UserID    string      `json:"userId"`
	Email     string      `json:"email"`
	Type      string      `json:"type"`
	Title     string      `json:"title"`
	Message   string      `json:"message"`
	DisputeID *gocql.UUID `json:"disputeId,omitempty"`
}

// NotificationService écrit la notification puis envoie l'e-mail si une adresse est fournie
type NotificationService struct {
	store        NotificationStore
	mailer       Mailer
	dashboardURL string
	now          func() time.Time
}

func NewNotificationService(store NotificationStore, mailer Mailer, frontendURL string) *NotificationService {
	dashboard := ""
	if frontendURL != "" {
		dashboard = strings.TrimRight(frontendURL, "/") + "/dashboard"
	}
	return &NotificationService{
		store:        store,
		mailer:       mailer,
		dashboardURL: dashboard,
		now:          time.Now,
	}
}

func (s *NotificationService) Notify(ctx context.Context, req NotificationRequest) (*models.Notification, error) {
	if req.UserID == "" || req.Type == "" || req.Title == "" {
		return nil, validationError("userId, type and title are required")
	}

	n := &models.Notification{
		ID:        gocql.TimeUUID(),
		UserID:    req.UserID,
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		DisputeID: req.DisputeID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, n); err != nil {
		log.Printf("❌ Erreur enregistrement notification: %v", err)
		return nil, persistenceError(err, "Failed to save notification")
	}

	// l'e-mail est facultatif : un échec d'envoi ne remet pas en cause la notification
	if req.Email != "" && s.mailer != nil {
		subject, html, err := utils.RenderNotificationEmail(utils.NotificationEmail{
			Type:         req.Type,
			Title:        req.Title,
			Message:      req.Message,
			DashboardURL: s.dashboardURL,
		})
		if err == nil {
			err = s.mailer.Send(ctx, req.Email, subject, html)
		}
		if err != nil {
			log.Printf("⚠️ E-mail de notification non envoyé à %s: %v", req.Email, err)
		} else {
			log.Printf("📧 Notification %s envoyée: %s", req.Type, req.Email)
		}
	}

	return n, nil
}

func (s *NotificationService) List(ctx context.Context, userID string) ([]models.Notification, error) {
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, persistenceError(err, "Failed to load notifications")
	}
	return list, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID string, id gocql.UUID) error {
	err := s.store.MarkRead(ctx, id, userID)
	if err == ErrNotFound {
		return notFoundError("Notification not found")
	}
	if err != nil {
		return persistenceError(err, "Failed to update notification")
	}
	return nil
}
