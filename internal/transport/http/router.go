package http

import (
	"net/http"
	"time"

	httpmw "github.com/cwrk-planet/watch-together/internal/transport/http/middleware"
	"github.com/cwrk-planet/watch-together/internal/transport/ws"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	AllowedOrigins []string
}

func NewRouter(h *Handler, wsServer *ws.Server, verifier httpmw.TokenVerifier, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(httpmw.WithRequestLoggerCtx)
	r.Use(httpmw.RequestLogger)
	r.Use(middlewareChi.Recoverer)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(pr chi.Router) {
		pr.Use(httpmw.AuthMiddleware(verifier))

		// websocket живёт дольше любого таймаута запроса
		pr.Get("/ws", wsServer.HandleWS)

		pr.Group(func(api chi.Router) {
			api.Use(middlewareChi.Timeout(30 * time.Second))
			api.Get("/rooms/{id}", h.GetRoom)
			api.Get("/stats", h.GetStats)
		})
	})

	return r
}
