package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"

	"github.com/akhilnr/classcord/internal/core"
)

// RTCHandler serves the ICE server list clients need to build their
// RTCPeerConnection config. Media itself never touches this server.
type RTCHandler struct {
	URLs []string
}

func (h *RTCHandler) IceServers(c *gin.Context) {
	servers := make([]webrtc.ICEServer, 0, len(h.URLs))
	for _, u := range h.URLs {
		servers = append(servers, webrtc.ICEServer{URLs: []string{u}})
	}
	c.JSON(http.StatusOK, gin.H{"iceServers": servers})
}

// RoomHandler exposes the live room table for observability.
type RoomHandler struct {
	Rooms core.RoomTable
}

func (h *RoomHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.Rooms.List()})
}
