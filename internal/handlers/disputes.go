package handlers

import (
	"context"
	"net/http"
	"strings"

	"disputeshield_back_end/internal/models"
	"disputeshield_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

type DisputeReader interface {
	List(ctx context.Context, userID, status string) ([]models.Dispute, error)
	Get(ctx context.Context, userID string, id gocql.UUID) (*models.Dispute, error)
	Stats(ctx context.Context, userID string) (services.DisputeStats, error)
	Search(ctx context.Context, userID, query string) ([]map[string]any, error)
}

type DisputeHandler struct {
	disputes DisputeReader
}

func NewDisputeHandler(disputes DisputeReader) *DisputeHandler {
	return &DisputeHandler{disputes: disputes}
}

// List : GET /api/disputes?status=
func (h *DisputeHandler) List(c *gin.Context) {
	disputes, err := h.disputes.List(c.Request.Context(), currentUser(c), strings.TrimSpace(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"disputes": disputes, "count": len(disputes)})
}

// Get : GET /api/disputes/:id
func (h *DisputeHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	d, err := h.disputes.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Stats : GET /api/disputes/stats
func (h *DisputeHandler) Stats(c *gin.Context) {
	stats, err := h.disputes.Stats(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Search : GET /api/disputes/search?q=
func (h *DisputeHandler) Search(c *gin.Context) {
	results, err := h.disputes.Search(c.Request.Context(), currentUser(c), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "count": len(results)})
}
