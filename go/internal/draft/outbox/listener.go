package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const NotifyChannel = "draft_outbox"

type ListenerConfig struct {
	DatabaseURL  string
	Channel      string
	PingInterval time.Duration
}

func DefaultListenerConfig(databaseURL string) ListenerConfig {
	return ListenerConfig{
		DatabaseURL:  databaseURL,
		Channel:      NotifyChannel,
		PingInterval: 90 * time.Second,
	}
}

// Listener wakes a Relay on every NOTIFY the outbox trigger sends. The relay's poll covers
// notifications lost while the listener reconnects.
type Listener struct {
	listener *pq.Listener
	relay    *Relay
	cfg      ListenerConfig
}

func NewListener(relay *Relay, cfg ListenerConfig) (*Listener, error) {
	if cfg.Channel == "" {
		cfg.Channel = NotifyChannel
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 90 * time.Second
	}

	l := pq.NewListener(cfg.DatabaseURL, 10*time.Second, time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("outbox listener event")
			}
			if ev == pq.ListenerEventReconnected {
				relay.Wake()
			}
		},
	)
	if err := l.Listen(cfg.Channel); err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().Str("channel", cfg.Channel).Msg("listening for outbox notifications")
	return &Listener{listener: l, relay: relay, cfg: cfg}, nil
}

func (l *Listener) Run(ctx context.Context) error {
	ping := time.NewTicker(l.cfg.PingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return l.listener.Close()
		case note := <-l.listener.Notify:
			// nil after a reconnect; wake anyway to pick up anything missed
			if note != nil {
				log.Debug().Str("event_id", note.Extra).Msg("outbox notification")
			}
			l.relay.Wake()
		case <-ping.C:
			if err := l.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping outbox listener")
			}
		}
	}
}
