package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akhilnr/classcord/internal/domain"
	"github.com/akhilnr/classcord/internal/storage/memory"
)

// WhiteboardHandler serves the saved whiteboard snapshot per channel.
// Live strokes travel over the websocket; this is only the explicit
// save/load surface.
type WhiteboardHandler struct {
	Boards *memory.WhiteboardStore
}

func (h *WhiteboardHandler) Get(c *gin.Context) {
	data, ok := h.Boards.Get(domain.ChannelID(c.Param("channelId")))
	if !ok {
		c.JSON(http.StatusOK, gin.H{"data": []any{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *WhiteboardHandler) Save(c *gin.Context) {
	var req struct {
		Data json.RawMessage `json:"data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no data provided"})
		return
	}
	h.Boards.Save(domain.ChannelID(c.Param("channelId")), req.Data)
	c.JSON(http.StatusOK, gin.H{"message": "whiteboard saved"})
}

func (h *WhiteboardHandler) Clear(c *gin.Context) {
	h.Boards.Clear(domain.ChannelID(c.Param("channelId")))
	c.JSON(http.StatusOK, gin.H{"message": "whiteboard cleared"})
}
