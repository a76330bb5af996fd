package main

import (
	"net/http"

	"github.com/mcdev12/roulettedraft/go/internal/draft/pick"
	"github.com/mcdev12/roulettedraft/go/internal/draft/room"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

func setupServer(cfg *Config, services *Services) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
		},
		AllowedOrigins: cfg.CORSOrigins,
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Draft-Error-Reason", "Grpc-Status", "Grpc-Message"},
	})

	registerServices(mux, services)
	mux.Handle("GET /metrics", services.Metrics.Handler())
	var nats connectionStatus
	if services.NATS != nil {
		nats = services.NATS
	}
	setupHealthCheck(mux, nats)

	handler := c.Handler(mux)

	// Setup HTTP/2 server
	return &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}
}

func registerServices(mux *http.ServeMux, services *Services) {
	// Register room service
	roomServicePath, roomServiceHandler := room.NewRoomServiceHandler(services.Rooms)
	mux.Handle(roomServicePath, roomServiceHandler)

	// Register pick service
	pickServicePath, pickServiceHandler := pick.NewPickServiceHandler(services.Picks)
	mux.Handle(pickServicePath, pickServiceHandler)

	services.Gateway.RegisterRoutes(mux)
	services.Players.RegisterRoutes(mux)
	services.Fill.RegisterRoutes(mux)
}

// connectionStatus is satisfied by *outbox.JetStreamPublisher.
type connectionStatus interface {
	Connected() bool
}

// setupHealthCheck reports unhealthy while the event stream is unreachable. nats is nil when
// events are only logged.
func setupHealthCheck(mux *http.ServeMux, nats connectionStatus) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, "OK"
		if nats != nil && !nats.Connected() {
			status, body = http.StatusServiceUnavailable, "NATS disconnected"
		}
		w.WriteHeader(status)
		if _, err := w.Write([]byte(body)); err != nil {
			log.Error().Err(err).Msg("failed to write health check response")
		}
	})
}
