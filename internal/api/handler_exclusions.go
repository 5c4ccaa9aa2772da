package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type exclusionRequest struct {
	Target  string `json:"target" binding:"required"`
	Start   string `json:"start" binding:"required"`
	End     string `json:"end" binding:"required"`
	Comment string `json:"comment"`
}

// AddExclusion handles POST /api/exclusions. The event is durable in the log
// even when patching a document fails or the target is unknown, so the report
// is returned alongside the error status in those cases.
func (h *Handler) AddExclusion(c *gin.Context) {
	var req exclusionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.svc.Exclude(req.Target, req.Start, req.End, req.Comment)
	if err != nil {
		if report != nil {
			c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error(), "report": report})
			return
		}
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

type snowDayRequest struct {
	Date string `json:"date" binding:"required"`
}

// AddSnowDay handles POST /api/snow-days.
func (h *Handler) AddSnowDay(c *gin.Context) {
	var req snowDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := h.svc.AddExcludedDay(req.Date)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type syncRequest struct {
	Groups []string `json:"groups"`
}

// Sync handles POST /api/sync. An empty body or empty group list rebuilds
// every group.
func (h *Handler) Sync(c *gin.Context) {
	var req syncRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	results, err := h.svc.Resync(req.Groups...)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": results})
}
