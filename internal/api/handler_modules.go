package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"module-registry-backend/internal/dates"
	"module-registry-backend/internal/model"
	"module-registry-backend/internal/registry"
)

// ModuleResponse represents one roster row in API responses. Dates are ISO
// calendar dates; an active module has no end_date.
type ModuleResponse struct {
	ID             string  `json:"id"`
	Group          string  `json:"group"`
	ExternalRef    int64   `json:"external_ref_id"`
	Area           float64 `json:"area"`
	Classification string  `json:"classification"`
	SiteKey        string  `json:"site_key"`
	Active         bool    `json:"active"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date,omitempty"`
	Note           string  `json:"note,omitempty"`
}

func toModuleResponse(m model.Module) ModuleResponse {
	resp := ModuleResponse{
		ID:             m.ID,
		Group:          m.Group(),
		ExternalRef:    m.ExternalRef,
		Area:           m.Area,
		Classification: m.Classification,
		SiteKey:        m.SiteKey,
		Active:         m.Active,
		Note:           m.Note,
	}
	if !m.StartDate.IsZero() {
		resp.StartDate = dates.FormatISO(m.StartDate)
	}
	if !m.EndDate.IsZero() {
		resp.EndDate = dates.FormatISO(m.EndDate)
	}
	return resp
}

// ListModules handles GET /api/modules. Inactive modules are included only
// with ?all=1.
func (h *Handler) ListModules(c *gin.Context) {
	activeOnly := c.Query("all") == ""
	modules, err := h.svc.ListModules(activeOnly)
	if err != nil {
		abortWithError(c, err)
		return
	}
	responses := make([]ModuleResponse, 0, len(modules))
	for _, m := range modules {
		responses = append(responses, toModuleResponse(m))
	}
	c.JSON(http.StatusOK, responses)
}

type registerRequest struct {
	ID             string  `json:"id" binding:"required"`
	ExternalRef    int64   `json:"external_ref_id"`
	Area           float64 `json:"area" binding:"required"`
	Classification string  `json:"classification"`
	StartDate      string  `json:"start_date" binding:"required"`
	SiteKey        string  `json:"site_key"`
	Note           string  `json:"note"`
}

// RegisterModule handles POST /api/modules.
func (h *Handler) RegisterModule(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.svc.Register(registry.RegisterInput{
		ID:             req.ID,
		ExternalRef:    req.ExternalRef,
		Area:           req.Area,
		Classification: req.Classification,
		StartDate:      req.StartDate,
		SiteKey:        req.SiteKey,
		Note:           req.Note,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

type retireRequest struct {
	EndDate string `json:"end_date" binding:"required"`
}

// RetireModule handles POST /api/modules/{id}/retire.
func (h *Handler) RetireModule(c *gin.Context) {
	var req retireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.Retire(c.Param("id"), req.EndDate); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type indoorRequest struct {
	Start   string `json:"start" binding:"required"`
	End     string `json:"end" binding:"required"`
	Comment string `json:"comment"`
}

// MarkIndoor handles POST /api/modules/{id}/indoor-periods.
func (h *Handler) MarkIndoor(c *gin.Context) {
	var req indoorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.MarkIndoor(c.Param("id"), req.Start, req.End, req.Comment); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
