//go:build cgo

// Command subscriber connects to a running chunkpub and checks that every
// received frame is a well formed chunk. Frames can be appended to a file,
// one per line.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pebbe/zmq4"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"chunkpub/internal/chunk"
	"chunkpub/internal/logging"
)

type checker struct {
	size, maxValue int
	out            io.Writer
	logger         *logging.Logger

	received, rejected int
}

// handle validates frame and copies it to out when it passes.
func (c *checker) handle(frame []byte) error {
	c.received++
	values, err := chunk.Decode(frame, c.maxValue)
	if err == nil && len(values) != c.size {
		err = errors.Wrapf(chunk.ErrMalformed, "got %d values, want %d", len(values), c.size)
	}
	if err != nil {
		c.rejected++
		c.logger.Warnf("frame #%d rejected: %v", c.received, err)
		return nil
	}

	c.logger.Infof("Chunk received (#%d, %d bytes)", c.received, len(frame))
	if c.out == nil {
		return nil
	}
	if _, err := c.out.Write(append(frame, '\n')); err != nil {
		return errors.Wrap(err, "can not save frame")
	}
	return nil
}

// frameSource is the receiving half of a SUB socket.
type frameSource interface {
	RecvBytes(flags zmq4.Flag) ([]byte, error)
}

// receive feeds frames to c until stop fires or the socket is terminated.
// Receive timeouts only give the loop a chance to notice stop.
func receive(src frameSource, c *checker, stop <-chan os.Signal) error {
	for {
		select {
		case sig := <-stop:
			c.logger.Infof("got signal: %s", sig)
			return nil
		default:
		}

		frame, err := src.RecvBytes(0)
		if err != nil {
			switch zmq4.AsErrno(err) {
			case zmq4.Errno(syscall.EAGAIN), zmq4.Errno(syscall.EINTR):
				continue
			case zmq4.ETERM:
				c.logger.Info("zmq context terminated")
				return nil
			}
			return errors.Wrap(err, "can not receive frame")
		}
		if err := c.handle(frame); err != nil {
			return err
		}
	}
}

func run(endpoint, outPath string, c *checker) error {
	if outPath != "" {
		f, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.Wrapf(err, "can not open %s", outPath)
		}
		defer f.Close()
		c.out = f
	}

	subscriber, err := zmq4.NewSocket(zmq4.SUB)
	if err != nil {
		return errors.Wrap(err, "failed to create ZMQ socket")
	}
	defer subscriber.Close()

	if err := subscriber.Connect(endpoint); err != nil {
		return errors.Wrapf(err, "failed to connect to %s", endpoint)
	}
	if err := subscriber.SetSubscribe(""); err != nil {
		return errors.Wrap(err, "can not subscribe")
	}
	if err := subscriber.SetRcvtimeo(500 * time.Millisecond); err != nil {
		return errors.Wrap(err, "can not set receive timeout")
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	c.logger.Infof("subscribed to %s", endpoint)
	err = receive(subscriber, c, stop)
	c.logger.Infof("received %d frames, rejected %d", c.received, c.rejected)
	return err
}

func main() {
	endpoint := pflag.String("endpoint", "tcp://127.0.0.1:5556", "ZMQ endpoint to subscribe to")
	size := pflag.Int("chunk-size", chunk.DefaultSize, "expected number of values per frame")
	maxValue := pflag.Int("max-value", chunk.DefaultMax, "expected upper bound of values")
	outPath := pflag.String("out", "", "append received frames to this file")
	pflag.Parse()

	logger, err := logging.New(logging.Config{Logfile: "stdout", Level: "info"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "can not init logger: %v\n", err)
		os.Exit(1)
	}

	c := &checker{size: *size, maxValue: *maxValue, logger: logger}
	if err := run(*endpoint, *outPath, c); err != nil {
		logger.Errorf("subscriber failed: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}
