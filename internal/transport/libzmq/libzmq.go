//go:build cgo

// Package libzmq publishes frames through the libzmq C library.
package libzmq

import (
	"time"

	"github.com/pebbe/zmq4"
	"github.com/pkg/errors"
)

// Options tunes the PUB socket before it is bound.
type Options struct {
	// SendHWM caps queued outbound messages per subscriber, 0 keeps the libzmq default.
	SendHWM int
	Linger  time.Duration
}

// Publisher owns a private zmq context and one PUB socket bound to an endpoint.
type Publisher struct {
	ctx    *zmq4.Context
	socket *zmq4.Socket
}

// Open creates the context and the socket and binds it to endpoint.
func Open(endpoint string, opts Options) (*Publisher, error) {
	ctx, err := zmq4.NewContext()
	if err != nil {
		return nil, errors.Wrap(err, "can not create zmq context")
	}

	socket, err := ctx.NewSocket(zmq4.PUB)
	if err != nil {
		ctx.Term()
		return nil, errors.Wrap(err, "can not create PUB socket")
	}

	p := &Publisher{ctx: ctx, socket: socket}
	if err := p.configure(opts); err != nil {
		p.Close()
		return nil, err
	}

	if err := socket.Bind(endpoint); err != nil {
		p.Close()
		return nil, errors.Wrapf(err, "can not bind %s", endpoint)
	}
	return p, nil
}

func (p *Publisher) configure(opts Options) error {
	if opts.SendHWM > 0 {
		if err := p.socket.SetSndhwm(opts.SendHWM); err != nil {
			return errors.Wrap(err, "can not set send hwm")
		}
	}
	if err := p.socket.SetLinger(opts.Linger); err != nil {
		return errors.Wrap(err, "can not set linger")
	}
	return nil
}

// Send blocks until libzmq queues the whole frame.
func (p *Publisher) Send(frame []byte) error {
	if _, err := p.socket.SendBytes(frame, 0); err != nil {
		return errors.Wrap(err, "can not send frame")
	}
	return nil
}

func (p *Publisher) Close() error {
	sockErr := p.socket.Close()
	ctxErr := p.ctx.Term()
	if sockErr != nil {
		return errors.Wrap(sockErr, "can not close PUB socket")
	}
	if ctxErr != nil {
		return errors.Wrap(ctxErr, "can not terminate zmq context")
	}
	return nil
}
