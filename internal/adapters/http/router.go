package http

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/akhilnr/classcord/internal/adapters/signal"
	"github.com/akhilnr/classcord/internal/app"
	"github.com/akhilnr/classcord/internal/config"
	"github.com/akhilnr/classcord/internal/storage"
	"github.com/akhilnr/classcord/internal/storage/memory"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware gives every browser a stable token. The websocket
// layer uses it as the guest identity when a join carries no userId.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	orch *app.Orchestrator,
	channels storage.ChannelStore,
	boards *memory.WhiteboardStore,
) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("ClasscordSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	ctl := signal.NewSignalWSController(orch, cfg)
	rtc := &RTCHandler{URLs: cfg.ICEServers}
	chh := &ChannelHandler{Store: channels}
	wbh := &WhiteboardHandler{Boards: boards}
	rh := &RoomHandler{Rooms: orch.Rooms}

	api := r.Group("/api")

	api.GET("/ws/signal", func(c *gin.Context) {
		ctl.HandleSignal(ctx, c)
	})

	api.GET("/rtc/ice-servers", rtc.IceServers)

	api.GET("/channels", chh.List)
	api.POST("/channels", chh.Create)
	api.GET("/channels/:id", chh.Get)
	api.DELETE("/channels/:id", chh.Delete)

	api.GET("/rooms", rh.List)

	api.GET("/whiteboard/:channelId", wbh.Get)
	api.PUT("/whiteboard/:channelId", wbh.Save)
	api.DELETE("/whiteboard/:channelId", wbh.Clear)

	return r
}
