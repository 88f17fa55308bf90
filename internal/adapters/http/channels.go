package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/akhilnr/classcord/internal/domain"
	"github.com/akhilnr/classcord/internal/storage"
)

type ChannelHandler struct {
	Store storage.ChannelStore
}

type createChannelRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
}

func (h *ChannelHandler) Create(c *gin.Context) {
	var req createChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and type are required"})
		return
	}

	ch, err := h.Store.Create(c.Request.Context(), req.Name, domain.ChannelType(req.Type))
	if err != nil {
		if errors.Is(err, domain.ErrBadChannelType) || errors.Is(err, domain.ErrChannelNameEmpty) || errors.Is(err, domain.ErrChannelNameTooLong) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("create channel")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store failure"})
		return
	}
	c.JSON(http.StatusCreated, ch)
}

func (h *ChannelHandler) List(c *gin.Context) {
	channels, err := h.Store.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("list channels")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store failure"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

func (h *ChannelHandler) Get(c *gin.Context) {
	ch, err := h.Store.Get(c.Request.Context(), domain.ChannelID(c.Param("id")))
	if err != nil {
		if errors.Is(err, storage.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("get channel")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store failure"})
		return
	}
	c.JSON(http.StatusOK, ch)
}

func (h *ChannelHandler) Delete(c *gin.Context) {
	err := h.Store.Delete(c.Request.Context(), domain.ChannelID(c.Param("id")))
	if err != nil {
		if errors.Is(err, storage.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "channel not found"})
			return
		}
		log.Error().Err(err).Str("module", "adapters.http").Msg("delete channel")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store failure"})
		return
	}
	c.Status(http.StatusNoContent)
}
