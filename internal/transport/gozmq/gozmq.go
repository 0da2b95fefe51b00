// Package gozmq publishes frames with the pure Go ZeroMQ implementation,
// for builds without cgo or libzmq.
package gozmq

import (
	"context"

	"github.com/go-zeromq/zmq4"
	"github.com/pkg/errors"
)

// Publisher wraps one go-zeromq PUB socket.
type Publisher struct {
	socket zmq4.Socket
}

// Open creates a PUB socket tied to ctx and binds it to endpoint.
func Open(ctx context.Context, endpoint string) (*Publisher, error) {
	socket := zmq4.NewPub(ctx)
	if err := socket.Listen(endpoint); err != nil {
		socket.Close()
		return nil, errors.Wrapf(err, "can not bind %s", endpoint)
	}
	return &Publisher{socket: socket}, nil
}

func (p *Publisher) Send(frame []byte) error {
	if err := p.socket.Send(zmq4.NewMsg(frame)); err != nil {
		return errors.Wrap(err, "can not send frame")
	}
	return nil
}

func (p *Publisher) Close() error {
	return errors.Wrap(p.socket.Close(), "can not close PUB socket")
}

// Addr reports the bound address, useful when the endpoint asked for port 0.
func (p *Publisher) Addr() string {
	if a := p.socket.Addr(); a != nil {
		return a.String()
	}
	return ""
}
