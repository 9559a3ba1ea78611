package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// ConnectNATS dials url with reconnects enabled.
func ConnectNATS(url string, log *zap.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("task-dashboard"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("nats reconnected", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}

// Forwarder mirrors bus events onto NATS subjects "<prefix>.<kind>" so other
// processes can react to dashboard changes.
type Forwarder struct {
	conn   *nats.Conn
	prefix string
	log    *zap.Logger
}

func NewForwarder(conn *nats.Conn, prefix string, log *zap.Logger) *Forwarder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Forwarder{conn: conn, prefix: strings.TrimSuffix(prefix, "."), log: log}
}

// Subject returns the NATS subject used for kind.
func (f *Forwarder) Subject(kind Kind) string {
	if f.prefix == "" {
		return string(kind)
	}
	return f.prefix + "." + string(kind)
}

// Run forwards every event from bus until ctx is done.
func (f *Forwarder) Run(ctx context.Context, bus *Bus) {
	sub := bus.Subscribe()
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			if err := f.forward(ev); err != nil {
				f.log.Warn("forward event", zap.String("kind", string(ev.Kind)), zap.Error(err))
			}
		}
	}
}

func (f *Forwarder) forward(ev Event) error {
	if f.conn == nil || !f.conn.IsConnected() {
		return nats.ErrConnectionClosed
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return f.conn.Publish(f.Subject(ev.Kind), payload)
}
