package http

import (
	"github.com/gin-gonic/gin"

	"gomoku_webapp/internal/http/handlers"
	"gomoku_webapp/internal/repository"
	"gomoku_webapp/internal/ws"
)

// RegisterRoutes вешает все маршруты приложения на роутер.
func RegisterRoutes(r *gin.Engine, hub *ws.Hub, stats *repository.StatsRepository) {
	h := handlers.NewHandler(hub, stats)
	wsHandler := ws.NewWSHandler(hub, stats)

	r.GET("/healthz", h.Healthz)
	r.GET("/api/stats", h.GetStats)
	r.GET("/ws", wsHandler.HandleWS())
}
