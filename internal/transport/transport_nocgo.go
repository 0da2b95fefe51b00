//go:build !cgo

package transport

import (
	"github.com/pkg/errors"

	"chunkpub/internal/config"
)

// libzmq needs cgo, only the pure Go backend is linked in this build.
func openLibzmq(cfg config.Config) (Sender, error) {
	return nil, errors.Wrapf(ErrUnknownBackend, "%q is not available without cgo, use %q", cfg.Backend, config.BackendGozmq)
}
