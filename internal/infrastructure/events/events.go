// Package events publishes domain events on NATS subjects.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSPublisher implements ports.EventPublisher. Payloads are JSON-encoded.
type NATSPublisher struct {
	conn *nats.Conn
	log  zerolog.Logger
}

// Connect dials NATS with reconnects enabled.
func Connect(url, name string, log zerolog.Logger) (*NATSPublisher, error) {
	l := log.With().Str("component", "nats").Logger()
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				l.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			l.Info().Str("url", c.ConnectedUrl()).Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSPublisher{conn: conn, log: l}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	data, err := encode(payload)
	if err != nil {
		return err
	}
	p.log.Debug().Str("subject", subject).Int("bytes", len(data)).Msg("publishing event")
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Ping reports whether the connection is currently usable.
func (p *NATSPublisher) Ping(ctx context.Context) error {
	if !p.conn.IsConnected() {
		return fmt.Errorf("nats status %s", p.conn.Status())
	}
	return p.conn.FlushWithContext(ctx)
}

// Close drains pending messages before closing.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// LogPublisher implements ports.EventPublisher by logging each event. It is
// used when NATS_URL is not configured.
type LogPublisher struct {
	log zerolog.Logger
}

func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log.With().Str("component", "events").Logger()}
}

func (p *LogPublisher) Publish(_ context.Context, subject string, payload any) error {
	data, err := encode(payload)
	if err != nil {
		return err
	}
	p.log.Info().Str("subject", subject).RawJSON("payload", data).Msg("event")
	return nil
}

func encode(payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return data, nil
}
