package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	notificationDelivery "remindkit/internal/notification/delivery"
	speechDelivery "remindkit/internal/speech/delivery"
	syncDelivery "remindkit/internal/sync/delivery"
	taskDelivery "remindkit/internal/task/delivery"
)

func SetupRoutes(
	r *gin.Engine,
	taskHandler *taskDelivery.TaskHandler,
	syncHandler *syncDelivery.SyncHandler,
	notificationHandler *notificationDelivery.NotificationHandler,
	voiceHandler *speechDelivery.VoiceHandler,
) {
	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Task routes
		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.GetTasks)
			tasks.GET("/summary", taskHandler.GetSummary)
			tasks.GET("/:id", taskHandler.GetTaskByID)
			tasks.GET("/:id/occurrences", taskHandler.GetOccurrences)
			tasks.POST("", taskHandler.CreateTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.POST("/:id/complete", taskHandler.CompleteTask)
			tasks.POST("/:id/snooze", taskHandler.SnoozeTask)
			tasks.PUT("/:id/share", taskHandler.ShareTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		// Sync, backup and restore
		api.POST("/sync", syncHandler.SyncNow)
		api.GET("/export.json", syncHandler.ExportJSON)
		api.GET("/export.csv", syncHandler.ExportCSV)
		api.POST("/import", syncHandler.ImportTasks)

		// Fired-notification action routing
		api.POST("/notifications/action", notificationHandler.HandleAction)

		// Voice capture
		api.POST("/voice/transcript", voiceHandler.CreateFromTranscript)
		api.POST("/voice/capture", voiceHandler.CaptureAndCreate)
	}
}
