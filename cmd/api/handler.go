package api

import (
	"github.com/gin-gonic/gin"

	notificationDelivery "remindkit/internal/notification/delivery"
	"remindkit/internal/session"
	speechDelivery "remindkit/internal/speech/delivery"
	syncDelivery "remindkit/internal/sync/delivery"
	taskDelivery "remindkit/internal/task/delivery"
	"remindkit/pkg/config"
)

// Handler owns the HTTP surface
type Handler struct {
	config              *config.Config
	taskHandler         *taskDelivery.TaskHandler
	syncHandler         *syncDelivery.SyncHandler
	notificationHandler *notificationDelivery.NotificationHandler
	voiceHandler        *speechDelivery.VoiceHandler
}

// NewHandler wires the delivery handlers together
func NewHandler(
	cfg *config.Config,
	taskHandler *taskDelivery.TaskHandler,
	syncHandler *syncDelivery.SyncHandler,
	notificationHandler *notificationDelivery.NotificationHandler,
	voiceHandler *speechDelivery.VoiceHandler,
) *Handler {
	return &Handler{
		config:              cfg,
		taskHandler:         taskHandler,
		syncHandler:         syncHandler,
		notificationHandler: notificationHandler,
		voiceHandler:        voiceHandler,
	}
}

// Start runs the HTTP server
func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	r.Use(session.Middleware(h.config.JWTSecret))

	SetupRoutes(r, h.taskHandler, h.syncHandler, h.notificationHandler, h.voiceHandler)

	return r.Run(addr)
}
