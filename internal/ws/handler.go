package ws

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"gomoku_webapp/internal/domain"
	"gomoku_webapp/internal/metrics"
	"gomoku_webapp/internal/repository"
)

// содержит зависимости для обработки WebSocket
type WSHandler struct {
	Hub   *Hub
	Stats *repository.StatsRepository
}

func NewWSHandler(hub *Hub, stats *repository.StatsRepository) *WSHandler {
	return &WSHandler{
		Hub:   hub,
		Stats: stats,
	}
}

func (h *WSHandler) HandleWS() gin.HandlerFunc {
	return func(c *gin.Context) {
		nickname := c.Query("nickname")
		if nickname == "" {
			nickname = domain.DefaultNickname
		}

		allowedOrigin := os.Getenv("ALLOWED_ORIGIN")
		upgrader := websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Println("ошибка обновления ws:", err)
			return
		}

		metrics.OnlineConnections.Inc()
		metrics.VisitsTotal.Inc()
		if h.Stats != nil {
			go func() {
				ctx := context.Background()
				h.Stats.IncrVisits(ctx)
				h.Stats.IncrOnline(ctx)
			}()
		}

		// создаем клиента и запускаем его насосы; дальше всем управляет хаб
		client := NewClient(nickname, conn, h.Hub)
		log.Printf("HandleWS: подключен клиент=%s ник=%q", client.ID, nickname)
		go client.Run()
	}
}
