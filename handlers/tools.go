package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type ExecuteToolRequest struct {
	Tool       string         `json:"tool" binding:"required"`
	Parameters map[string]any `json:"parameters" binding:"required"`
}

func (h *Handler) ListTools(c *gin.Context) {
	tools := h.tools.Tools()
	c.JSON(http.StatusOK, gin.H{"count": len(tools), "tools": tools})
}

// ExecuteTool always answers with the envelope; failures carry the status
// of their error kind.
func (h *Handler) ExecuteTool(c *gin.Context) {
	var req ExecuteToolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "tool and parameters are required"})
		return
	}
	res := h.tools.Execute(c.Request.Context(), req.Tool, req.Parameters)
	if !res.Success {
		c.JSON(res.Kind().HTTPStatus(), res)
		return
	}
	c.JSON(http.StatusOK, res)
}
