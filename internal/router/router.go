package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eyepyon/waiwine/internal/handler"
	"github.com/eyepyon/waiwine/pkg/constants"
)

// New builds the HTTP router.
func New(
	translation *handler.TranslationHandler,
	translateWS *handler.TranslateWSHandler,
	health *handler.HealthHandler,
) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET(constants.PathHealth, health.Health)
	r.GET(constants.PathReady, health.Ready)

	// REST translation API
	tr := r.Group("/translation")
	{
		tr.GET("/settings", translation.GetSettings)
		tr.PUT("/settings", translation.UpdateSettings)
		tr.GET("/voices/:language", translation.GetVoices)
		tr.GET("/languages", translation.GetLanguages)
		tr.POST("/translate", translation.Translate)
		tr.POST("/detect-language", translation.DetectLanguage)
		tr.POST("/synthesize", translation.Synthesize)
	}

	// Rooms
	r.GET("/rooms/:id/participants", translation.GetRoomParticipants)

	// WebSocket: /ws/translate/:room_id/:participant_id
	r.GET(constants.PathWSTranslate, translateWS.ServeWS)

	return r
}
