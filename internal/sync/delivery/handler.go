package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"remindkit/internal/session"
	syncdomain "remindkit/internal/sync/domain"
	"remindkit/internal/sync/usecase"
)

// SyncHandler exposes the reconciliation engine over HTTP
type SyncHandler struct {
	syncUsecase usecase.SyncUsecase
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(syncUsecase usecase.SyncUsecase) *SyncHandler {
	return &SyncHandler{
		syncUsecase: syncUsecase,
	}
}

// SyncNow runs one pull-merge pass for the caller's session
// POST /api/sync
func (h *SyncHandler) SyncNow(c *gin.Context) {
	sess := session.FromContext(c)
	if !sess.SignedIn {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sign in to sync"})
		return
	}

	stats, err := h.syncUsecase.Pull(c.Request.Context(), sess)
	if err != nil {
		// Local state stays authoritative; the caller retries on its own
		// policy.
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ExportJSON streams the JSON backup envelope
// GET /api/export.json
func (h *SyncHandler) ExportJSON(c *gin.Context) {
	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", `attachment; filename="tasks.json"`)
	if err := h.syncUsecase.ExportJSON(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ExportCSV streams the CSV export
// GET /api/export.csv
func (h *SyncHandler) ExportCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="tasks.csv"`)
	if err := h.syncUsecase.ExportCSV(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ImportTasks merges an uploaded backup
// POST /api/import?duplicates=skip|replace
func (h *SyncHandler) ImportTasks(c *gin.Context) {
	policy := syncdomain.DuplicateHandling(c.DefaultQuery("duplicates", string(syncdomain.DuplicateSkip)))

	result, err := h.syncUsecase.Import(c.Request.Body, policy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
