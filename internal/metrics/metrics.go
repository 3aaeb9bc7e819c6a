package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OnlineConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gomoku_online_connections",
		Help: "Текущее число открытых websocket-соединений.",
	})

	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gomoku_active_rooms",
		Help: "Текущее число живых комнат.",
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gomoku_queue_depth",
		Help: "Число клиентов в очереди случайного подбора.",
	})

	VisitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gomoku_visits_total",
		Help: "Число websocket-подключений с момента старта процесса.",
	})

	MatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gomoku_matches_total",
		Help: "Число завершенных матчей с момента старта процесса.",
	})
)
