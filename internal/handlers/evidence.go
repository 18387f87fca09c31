package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"disputeshield_back_end/internal/middleware"
	"disputeshield_back_end/internal/models"
	"disputeshield_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

type EvidenceManager interface {
	Generate(ctx context.Context, userID string, disputeID gocql.UUID, ec services.EvidenceContext) (*models.Evidence, error)
	Upload(ctx context.Context, userID string, disputeID gocql.UUID, fileName string, size int64, contentType string, r io.Reader) (*models.Evidence, error)
	List(ctx context.Context, userID string, disputeID gocql.UUID) ([]models.Evidence, error)
	DownloadURL(ctx context.Context, userID string, id gocql.UUID) (string, error)
	PDF(ctx context.Context, userID string, id gocql.UUID) ([]byte, error)
	Delete(ctx context.Context, userID string, id gocql.UUID) error
}

type EvidenceHandler struct {
	evidence EvidenceManager
}

func NewEvidenceHandler(evidence EvidenceManager) *EvidenceHandler {
	return &EvidenceHandler{evidence: evidence}
}

// List : GET /api/disputes/:id/evidence
func (h *EvidenceHandler) List(c *gin.Context) {
	disputeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	list, err := h.evidence.List(c.Request.Context(), currentUser(c), disputeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"evidence": list, "count": len(list)})
}

// Upload : POST /api/disputes/:id/evidence (multipart, champ "file")
func (h *EvidenceHandler) Upload(c *gin.Context) {
	disputeID, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	// marge pour l'enveloppe multipart
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxEvidenceFileSize+(1<<20))
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read file"})
		return
	}
	defer file.Close()

	e, err := h.evidence.Upload(c.Request.Context(), currentUser(c), disputeID,
		fileHeader.Filename, fileHeader.Size, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Set(middleware.AuditResourceKey, e.ID.String())
	c.JSON(http.StatusCreated, gin.H{"success": true, "evidence": e})
}

// Generate : POST /api/evidence/generate
func (h *EvidenceHandler) Generate(c *gin.Context) {
	var req struct {
		DisputeID string                   `json:"disputeId"`
		Dispute   services.EvidenceContext `json:"dispute"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	disputeID, err := gocql.ParseUUID(strings.TrimSpace(req.DisputeID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "disputeId is required"})
		return
	}

	e, err := h.evidence.Generate(c.Request.Context(), currentUser(c), disputeID, req.Dispute)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Set(middleware.AuditResourceKey, e.ID.String())
	content := ""
	if e.Content != nil {
		content = *e.Content
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "evidence": e, "content": content})
}

// Download : GET /api/evidence/:id/download
func (h *EvidenceHandler) Download(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	url, err := h.evidence.DownloadURL(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// PDF : GET /api/evidence/:id/pdf
func (h *EvidenceHandler) PDF(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	pdf, err := h.evidence.PDF(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="evidence-%s.pdf"`, id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// Delete : DELETE /api/evidence/:id
func (h *EvidenceHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.evidence.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
