package sink

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/alfredjeanlab/synth/internal/errkit"
	"github.com/alfredjeanlab/synth/internal/value"
)

func init() {
	Register("nats", openNATS)
}

// natsSink publishes each record as JSON to "synth.<collection>", adapted
// from internal/events/nats.go's NATSPublisher.
type natsSink struct {
	conn *nats.Conn
}

func openNATS(_ context.Context, u *url.URL) (Sink, error) {
	addr := nats.DefaultURL
	if u.Host != "" {
		addr = "nats://" + u.Host
	}
	nc, err := nats.Connect(addr,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, errkit.Sink("", fmt.Errorf("connecting to NATS at %s: %w", addr, err))
	}
	return &natsSink{conn: nc}, nil
}

func subject(collection string) string {
	return "synth." + strings.ReplaceAll(collection, ".", "_")
}

func (s *natsSink) Begin(context.Context, string) error { return nil }

func (s *natsSink) Write(_ context.Context, collection string, record value.Value) error {
	if err := s.conn.Publish(subject(collection), value.JSON(record)); err != nil {
		return errkit.Sink(collection, fmt.Errorf("publishing record: %w", err))
	}
	return nil
}

func (s *natsSink) End(_ context.Context, collection string) error {
	if err := s.conn.Flush(); err != nil {
		return errkit.Sink(collection, fmt.Errorf("flushing publisher: %w", err))
	}
	return nil
}

// Commit flushes the connection once more for the run as a whole; each
// collection's End already flushes, so this mainly covers a run with zero
// collections.
func (s *natsSink) Commit(_ context.Context) error {
	if err := s.conn.Flush(); err != nil {
		return errkit.Sink("", fmt.Errorf("flushing publisher: %w", err))
	}
	return nil
}

func (s *natsSink) Close() error {
	s.conn.Close()
	return nil
}
