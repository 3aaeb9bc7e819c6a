package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gomoku_webapp/internal/repository"
	"gomoku_webapp/internal/ws"
)

// содержит зависимости HTTP обработчиков
type Handler struct {
	Hub   *ws.Hub
	Stats *repository.StatsRepository
}

func NewHandler(hub *ws.Hub, stats *repository.StatsRepository) *Handler {
	return &Handler{Hub: hub, Stats: stats}
}

// Проба живости для оркестратора
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Агрегатные счетчики: визиты, матчи, онлайн
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.Stats.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "статистика недоступна"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"visits":  stats.Visits,
		"matches": stats.Matches,
		"online":  stats.Online,
		"queue":   h.Hub.QueueLen(),
	})
}
