package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/luispater/webToolsMCP/internal/tools"
)

// APIHandlers contains the plain HTTP endpoints served next to /mcp.
type APIHandlers struct {
	dispatcher *tools.Dispatcher
}

func NewAPIHandlers(dispatcher *tools.Dispatcher) *APIHandlers {
	return &APIHandlers{
		dispatcher: dispatcher,
	}
}

// Health reports liveness and the advertised tool names.
func (h *APIHandlers) Health(c *gin.Context) {
	names := make([]string, 0, 2)
	for _, tool := range h.dispatcher.ListTools() {
		names = append(names, tool.Name)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"name":    ServerName,
		"version": ServerVersion,
		"tools":   names,
	})
}
