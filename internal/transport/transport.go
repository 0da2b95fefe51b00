// Package transport opens the outbound PUB socket for the configured backend.
package transport

import (
	"context"

	"github.com/pkg/errors"

	"chunkpub/internal/config"
	"chunkpub/internal/transport/gozmq"
)

var ErrUnknownBackend = errors.New("unknown transport backend")

// Sender broadcasts opaque frames to whoever is subscribed.
type Sender interface {
	// Send transmits frame as a single message, blocking until it is queued.
	Send(frame []byte) error
	Close() error
}

// Open binds a PUB socket as described by cfg.
func Open(ctx context.Context, cfg config.Config) (Sender, error) {
	switch cfg.Backend {
	case config.BackendLibzmq:
		return openLibzmq(cfg)
	case config.BackendGozmq:
		p, err := gozmq.Open(ctx, cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, errors.Wrapf(ErrUnknownBackend, "%q", cfg.Backend)
	}
}
