package handler

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"terroir/internal/domain"
	"terroir/internal/dossier"
	"terroir/internal/middleware"
	"terroir/internal/report"
	"terroir/internal/service"
)

// ImportRequest is the JSON body of the sanitize, preview and commit routes.
// A text/plain body is accepted too and taken as Raw, with targets and strict
// read from the query string.
type ImportRequest struct {
	Raw     string           `json:"raw"`
	Targets *dossier.Targets `json:"targets"`
	Strict  bool             `json:"strict"`
}

// DraftRequest is the JSON body of the draft route.
type DraftRequest struct {
	Territory string           `json:"territory" binding:"required"`
	Notes     string           `json:"notes"`
	Targets   *dossier.Targets `json:"targets"`
	Strict    bool             `json:"strict"`
}

// ImportHandler handles dossier import endpoints.
type ImportHandler struct {
	importService service.ImportService
	now           func() time.Time
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importService service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService, now: time.Now}
}

// bindImport reads an ImportRequest from a JSON or text/plain body.
// Returns false if the body is malformed (error response already written).
func bindImport(c *gin.Context) (*ImportRequest, bool) {
	mediaType, _, _ := mime.ParseMediaType(c.GetHeader("Content-Type"))
	if mediaType == "text/plain" {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read request body")
			return nil, false
		}
		req := &ImportRequest{Raw: string(body)}
		req.Strict, _ = strconv.ParseBool(c.Query("strict"))
		if t, d := c.Query("territory_id"), c.Query("dossier_id"); t != "" || d != "" {
			req.Targets = &dossier.Targets{TerritoryID: t, DossierID: d}
		}
		return req, true
	}

	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return nil, false
	}
	return &req, true
}

// Sanitize handles POST /api/v1/imports/sanitize
func (h *ImportHandler) Sanitize(c *gin.Context) {
	req, ok := bindImport(c)
	if !ok {
		return
	}
	RespondOK(c, h.importService.Sanitize(req.Raw))
}

// Preview handles POST /api/v1/imports/preview?format=json|yaml|csv|xlsx
// JSON previews use the response envelope; other formats are sent as a file.
func (h *ImportHandler) Preview(c *gin.Context) {
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", err.Error())
		return
	}
	req, ok := bindImport(c)
	if !ok {
		return
	}

	pv, err := h.importService.Preview(c.Request.Context(), &service.PreviewInput{
		Raw:     req.Raw,
		Targets: req.Targets,
		Strict:  req.Strict,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	if format == domain.ReportFormatJSON {
		RespondOK(c, pv)
		return
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, format, pv); err != nil {
		HandleError(c, err)
		return
	}
	name := "dossier"
	if req.Targets != nil && req.Targets.TerritoryID != "" {
		name = req.Targets.TerritoryID
	}
	c.Header("Content-Disposition", `attachment; filename="`+report.BuildFilename(name, format, h.now())+`"`)
	c.Data(http.StatusOK, domain.ReportContentTypes[format], buf.Bytes())
}

// Commit handles POST /api/v1/imports/commit
// A document that fails validation is answered with 422 and its full preview.
func (h *ImportHandler) Commit(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor context")
		return
	}
	req, ok := bindImport(c)
	if !ok {
		return
	}

	result, err := h.importService.Commit(c.Request.Context(), &service.CommitInput{
		Raw:     req.Raw,
		Targets: req.Targets,
		Strict:  req.Strict,
		Actor:   actor,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	if !result.Committed {
		status, code, msg := MapDomainError(domain.ErrValidationFailed)
		c.JSON(status, APIResponse{
			Success: false,
			Data:    result,
			Error:   &APIError{Code: code, Message: msg, Details: result.Preview.Validation.Errors},
		})
		return
	}
	RespondCreated(c, result)
}

// Draft handles POST /api/v1/imports/draft
func (h *ImportHandler) Draft(c *gin.Context) {
	actor, err := middleware.GetActor(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing actor context")
		return
	}
	var req DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.importService.Draft(c.Request.Context(), &service.DraftInput{
		Territory: req.Territory,
		Notes:     req.Notes,
		Targets:   req.Targets,
		Strict:    req.Strict,
		Actor:     actor,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// Rules handles GET /api/v1/validation/rules
func (h *ImportHandler) Rules(c *gin.Context) {
	RespondOK(c, h.importService.Rules())
}
