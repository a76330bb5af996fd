package main

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/roulettedraft/go/internal/draft/gateway"
	"github.com/mcdev12/roulettedraft/go/internal/draft/outbox"
	"github.com/mcdev12/roulettedraft/go/internal/draft/pick"
	"github.com/mcdev12/roulettedraft/go/internal/draft/randomfill"
	"github.com/mcdev12/roulettedraft/go/internal/draft/repository"
	"github.com/mcdev12/roulettedraft/go/internal/draft/room"
	"github.com/mcdev12/roulettedraft/go/internal/draft/timer"
	"github.com/mcdev12/roulettedraft/go/internal/metrics"
	"github.com/mcdev12/roulettedraft/go/internal/player"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Metrics *metrics.Metrics
	Hub     *gateway.Hub
	Timers  *timer.Coordinator
	Rooms   *room.Service
	Picks   *pick.Service
	Gateway *gateway.Service
	Players *player.Service
	Fill    *randomfill.Service
	Relay   *outbox.Relay

	// NATS is nil when events are only logged.
	NATS *outbox.JetStreamPublisher

	// Listener is nil on the memory store.
	Listener *outbox.Listener

	closers []func()
}

// Close releases the connections opened by setupServices in reverse order.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func setupServices(ctx context.Context, cfg *Config, pool *pgxpool.Pool) (*Services, error) {
	// Wire up dependency injection chain
	// Store layer → App layer → Service layer, with the hub and timers shared by both draft apps
	s := &Services{}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	s.Metrics = metrics.NewMetrics("roulettedraft", reg)

	var (
		store       repository.Store
		catalogRepo player.Repository
	)
	if pool != nil {
		store = repository.NewRepository(pool)
		catalogRepo = player.NewPostgresRepository(pool)
	} else {
		players, err := player.LoadSeedFile(cfg.Catalog.Seed)
		if err != nil {
			return nil, err
		}
		store = repository.NewMemoryRepository()
		catalogRepo = player.NewMemoryRepository(players)
		log.Info().Int("players", len(players)).Msg("using in-memory store")
	}

	// Catalog
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.closers = append(s.closers, func() { _ = client.Close() })
		catalogRepo = player.NewCachedRepository(catalogRepo, client, cfg.Catalog.TTL)
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Catalog.TTL).Msg("catalog cache enabled")
	}
	catalog := player.NewApp(catalogRepo)
	s.Players = player.NewService(catalog)

	// Draft
	s.Hub = gateway.NewHub(s.Metrics)
	s.Timers = timer.NewCoordinator(store, s.Hub, clockwork.NewRealClock(), timer.Config{
		TurnSeconds:  cfg.Draft.TurnSeconds,
		TickInterval: cfg.Draft.TickInterval,
	}, s.Metrics)

	roomApp := room.NewApp(store, s.Hub, s.Timers)
	pickApp := pick.NewApp(store, catalog, s.Hub, s.Timers, s.Metrics)
	s.Rooms = room.NewService(roomApp)
	s.Fill = randomfill.NewService(randomfill.NewApp(catalog, store))
	s.Picks = pick.NewService(pickApp)

	wsConfig := gateway.DefaultConnectionConfig()
	wsConfig.AllowedOrigins = cfg.CORSOrigins
	s.Gateway = gateway.NewService(wsConfig, s.Hub, roomApp, pickApp, s.Timers)

	// Outbox
	var publisher outbox.Publisher = outbox.LogPublisher{}
	if cfg.NATS.Enabled {
		jsConfig := outbox.DefaultJetStreamConfig()
		jsConfig.URL = cfg.NATS.URL
		js, err := outbox.NewJetStreamPublisher(ctx, jsConfig)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, func() { _ = js.Close() })
		s.NATS = js
		publisher = js
	}
	s.Relay = outbox.NewRelay(store, publisher, s.Metrics, outbox.DefaultConfig())

	if pool != nil {
		listener, err := outbox.NewListener(s.Relay, outbox.DefaultListenerConfig(cfg.Database.DSN()))
		if err != nil {
			// the relay still polls
			log.Warn().Err(err).Msg("outbox listener unavailable")
		} else {
			s.Listener = listener
		}
	}

	return s, nil
}
