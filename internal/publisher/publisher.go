// Package publisher runs the produce, encode, send, pause loop.
package publisher

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"chunkpub/internal/chunk"
	"chunkpub/internal/config"
	"chunkpub/internal/logging"
)

// SentLine is written to the acknowledgement writer after every send.
const SentLine = "Chunk sent"

// Sender transmits one frame per call, blocking until it is queued.
type Sender interface {
	Send(frame []byte) error
}

// Stats are updated by the loop and may be read concurrently.
type Stats struct {
	sent     atomic.Uint64
	bytes    atomic.Uint64
	lastSent atomic.Int64
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Sent     uint64
	Bytes    uint64
	LastSent time.Time
}

// Snapshot reads the counters without stopping the loop.
func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		Sent:  s.sent.Load(),
		Bytes: s.bytes.Load(),
	}
	if ns := s.lastSent.Load(); ns != 0 {
		snap.LastSent = time.Unix(0, ns)
	}
	return snap
}

func (s *Stats) record(n int, at time.Time) {
	s.sent.Add(1)
	s.bytes.Add(uint64(n))
	s.lastSent.Store(at.UnixNano())
}

// Publisher owns the sender for its whole lifetime. Run must not be called
// concurrently.
type Publisher struct {
	sender Sender
	rng    *rand.Rand

	size     int
	maxValue int
	interval time.Duration
	count    int

	out    io.Writer
	logger *logging.Logger
	stats  Stats
}

// New creates a publisher that sends through sender, drawing values from rng.
// Acknowledgement lines go to out.
func New(cfg config.Config, sender Sender, rng *rand.Rand, out io.Writer, logger *logging.Logger) *Publisher {
	return &Publisher{
		sender:   sender,
		rng:      rng,
		size:     cfg.ChunkSize,
		maxValue: cfg.MaxValue,
		interval: cfg.Interval,
		count:    cfg.Count,
		out:      out,
		logger:   logger,
	}
}

// Stats returns the live counters, safe to read while Run is going.
func (p *Publisher) Stats() *Stats {
	return &p.stats
}

// Run publishes one chunk per interval until ctx is cancelled or the
// configured count is reached. A send error stops the loop and is returned.
func (p *Publisher) Run(ctx context.Context) error {
	for seq := 1; p.count == 0 || seq <= p.count; seq++ {
		if seq > 1 && !p.pause(ctx) {
			p.logger.Infof("publisher stopped after %d chunks", seq-1)
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		frame := chunk.Encode(chunk.Generate(p.rng, p.size, p.maxValue))
		if err := p.sender.Send(frame); err != nil {
			return errors.Wrapf(err, "chunk #%d", seq)
		}
		p.stats.record(len(frame), time.Now())

		if _, err := fmt.Fprintln(p.out, SentLine); err != nil {
			p.logger.Warnf("can not write acknowledgement: %v", err)
		}
		p.logger.Debugw("chunk sent", "seq", seq, "bytes", len(frame))
	}

	p.logger.Infof("publisher finished after %d chunks", p.count)
	return nil
}

func (p *Publisher) pause(ctx context.Context) bool {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
