//go:build cgo

package transport

import (
	"chunkpub/internal/config"
	"chunkpub/internal/transport/libzmq"
)

func openLibzmq(cfg config.Config) (Sender, error) {
	p, err := libzmq.Open(cfg.Endpoint, libzmq.Options{
		SendHWM: cfg.SendHWM,
		Linger:  cfg.Linger,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}
