package handler

import (
	"errors"
	"io"
	"net/http"

	"success-mcp/internal/logger"

	"github.com/gin-gonic/gin"
)

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GET /api/tools
func (h *ToolHandler) List(c *gin.Context) {
	out := make([]toolInfo, 0, len(h.tools))
	for _, t := range h.Tools() {
		out = append(out, toolInfo{Name: t.Tool.Name, Description: t.Tool.Description})
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/tools/:name  body: tool arguments as a JSON object
func (h *ToolHandler) Invoke(c *gin.Context) {
	name := c.Param("name")
	var args map[string]any
	if err := c.ShouldBindJSON(&args); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "arguments must be a JSON object"})
		return
	}
	res, err := h.Call(c.Request.Context(), name, args)
	if errors.Is(err, ErrUnknownTool) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		logger.Error("tool.invoke", "tool", name, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"tool": name, "isError": res.IsError, "text": Text(res)})
}
