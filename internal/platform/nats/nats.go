package nats

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Connect dials NATS and opens a JetStream context on the connection.
func Connect(url, name string) (*nats.Conn, jetstream.JetStream, error) {
	if strings.TrimSpace(url) == "" {
		return nil, nil, fmt.Errorf("nats url is empty")
	}
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}
	return conn, js, nil
}

// ConnectURL returns a nil JetStream when url is empty or unreachable so bid archival stays off.
func ConnectURL(url, name string, logger *slog.Logger) (jetstream.JetStream, func()) {
	if strings.TrimSpace(url) == "" {
		if logger != nil {
			logger.Info("NATS_URL not set, bid event stream disabled")
		}
		return nil, func() {}
	}
	conn, js, err := Connect(url, name)
	if err != nil {
		if logger != nil {
			logger.Warn("nats unavailable, bid event stream disabled", slog.String("error", err.Error()))
		}
		return nil, func() {}
	}
	if logger != nil {
		logger.Info("nats connection established", slog.String("url", url))
	}
	return js, func() {
		_ = conn.Drain()
	}
}
