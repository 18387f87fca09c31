package services

import (
	"context"
	"sort"
	"strings"

	"disputeshield_back_end/internal/models"

	"github.com/gocql/gocql"
)

// DisputeSearcher : recherche plein texte limitée aux litiges d'un utilisateur
type DisputeSearcher interface {
	SearchDisputes(ctx context.Context, userID, query string) ([]map[string]any, error)
}

// DisputeService : lecture des litiges pour le tableau de bord
type DisputeService struct {
	disputes DisputeStore
	searcher DisputeSearcher
}

func NewDisputeService(disputes DisputeStore, searcher DisputeSearcher) *DisputeService {
	return &DisputeService{disputes: disputes, searcher: searcher}
}

// List renvoie les litiges de l'utilisateur, les plus récents d'abord
func (s *DisputeService) List(ctx context.Context, userID, status string) ([]models.Dispute, error) {
	if status != "" && !models.DisputeStatus(status).IsValid() {
		return nil, validationError("Unknown status %q", status)
	}
	all, err := s.disputes.ListByUser(ctx, userID)
	if err != nil {
		return nil, persistenceError(err, "Failed to load disputes")
	}

	out := make([]models.Dispute, 0, len(all))
	for _, d := range all {
		if status == "" || string(d.Status) == status {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Get ne renvoie un litige qu'à son propriétaire
func (s *DisputeService) Get(ctx context.Context, userID string, id gocql.UUID) (*models.Dispute, error) {
	d, err := s.disputes.Get(ctx, id)
	if err == ErrNotFound || (err == nil && d.UserID != userID) {
		return nil, notFoundError("Dispute not found")
	}
	if err != nil {
		return nil, persistenceError(err, "Failed to load dispute")
	}
	return d, nil
}

func (s *DisputeService) Stats(ctx context.Context, userID string) (DisputeStats, error) {
	all, err := s.disputes.ListByUser(ctx, userID)
	if err != nil {
		return DisputeStats{}, persistenceError(err, "Failed to load disputes")
	}
	return ComputeStats(all), nil
}

func (s *DisputeService) Search(ctx context.Context, userID, query string) ([]map[string]any, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationError("Query parameter q is required")
	}
	if s.searcher == nil {
		return nil, configurationError("Search is not configured")
	}
	results, err := s.searcher.SearchDisputes(ctx, userID, query)
	if err != nil {
		return nil, upstreamError(err, "Search failed")
	}
	return results, nil
}
