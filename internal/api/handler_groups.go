package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetGroupMetadata handles GET /api/groups/{group}/metadata, returning the
// group's metadata document as stored on disk.
func (h *Handler) GetGroupMetadata(c *gin.Context) {
	entries, err := h.svc.GroupMetadata(c.Param("group"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetGroupSite handles GET /api/groups/{group}/site.
func (h *Handler) GetGroupSite(c *gin.Context) {
	doc, err := h.svc.GroupSite(c.Param("group"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}
