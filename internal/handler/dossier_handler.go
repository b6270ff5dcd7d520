package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"terroir/internal/dossier"
	"terroir/internal/service"
)

// DossierHandler serves committed dossiers and their import history.
type DossierHandler struct {
	importService service.ImportService
}

// NewDossierHandler creates a new DossierHandler.
func NewDossierHandler(importService service.ImportService) *DossierHandler {
	return &DossierHandler{importService: importService}
}

func targetsFromPath(c *gin.Context) dossier.Targets {
	return dossier.Targets{TerritoryID: c.Param("territoryId"), DossierID: c.Param("dossierId")}
}

// Get handles GET /api/v1/territories/:territoryId/dossiers/:dossierId
func (h *DossierHandler) Get(c *gin.Context) {
	record, err := h.importService.Get(c.Request.Context(), targetsFromPath(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, record)
}

// History handles GET /api/v1/territories/:territoryId/dossiers/:dossierId/imports
func (h *DossierHandler) History(c *gin.Context) {
	offset, limit := parsePagination(c)
	entries, total, err := h.importService.History(c.Request.Context(), targetsFromPath(c), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, entries, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// parsePagination extracts offset and limit query parameters with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
