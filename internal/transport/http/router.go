package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cipherdrop/relay-service/internal/service"
	"github.com/cipherdrop/relay-service/internal/transport/ws"
)

func NewRouter(h *Handler, wsServer *ws.Server, stats *service.Stats, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(countRequests(stats))

	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}

	// WS endpoint
	r.Get("/ws/rooms/{id}", wsServer.HandleWS)

	r.Group(func(pr chi.Router) {
		pr.Use(middlewareChi.Timeout(30 * time.Second))

		pr.Route("/rooms", func(rm chi.Router) {
			rm.Post("/", h.CreateRoom)

			rm.Route("/{id}", func(rr chi.Router) {
				rr.Get("/", h.DescribeRoom)
				rr.Post("/join", h.JoinRoom)
				rr.Get("/users", h.ListRoomUsers)

				rr.Post("/keys/{userId}", h.PublishPublicKey)
				rr.Get("/keys/{userId}", h.GetPublicKey)
				rr.Post("/room-key", h.StoreRoomKey)
				rr.Get("/room-key", h.GetRoomKey)

				rr.Post("/messages", h.SendMessage)
				rr.Get("/messages", h.ListMessages)
				rr.Post("/e2ee-messages", h.SendDirectedMessage)
				rr.Get("/e2ee-messages/{userId}", h.ListDirectedMessages)

				rr.Post("/receipts", h.AppendReceipt)
				rr.Get("/receipts", h.ListReceipts)
			})
		})

		pr.Post("/maintenance/sweep", h.ManualSweep)
	})

	r.Get("/status", h.Status)

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}

func countRequests(stats *service.Stats) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if stats != nil {
				stats.IncRequests()
			}
			next.ServeHTTP(w, r)
		})
	}
}
