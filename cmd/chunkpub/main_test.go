package main

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chunkpub/internal/config"
	"chunkpub/internal/logging"
	"chunkpub/internal/publisher"
)

func gozmqConfig(count int) config.Config {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendGozmq
	cfg.Endpoint = "tcp://127.0.0.1:0"
	cfg.Count = count
	cfg.Interval = time.Millisecond
	cfg.Seed = 1
	return cfg
}

func TestRunPublishesCount(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), gozmqConfig(3), &out, logging.NewNop()))
	assert.Equal(t, strings.Repeat(publisher.SentLine+"\n", 3), out.String())
}

func TestRunWithStatusServer(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	cfg := gozmqConfig(2)
	cfg.Status.Addr = addr

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- run(context.Background(), cfg, &out, logging.NewNop()) }()

	select {
	case err := <-done:
		require.NoError(t, err, "status server must stop once the publisher is done")
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return")
	}
	assert.Equal(t, 2, strings.Count(out.String(), publisher.SentLine))
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := gozmqConfig(0)
	cfg.Interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg, &out, logging.NewNop()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRunAddressInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	cfg := gozmqConfig(1)
	cfg.Endpoint = "tcp://" + l.Addr().String()

	var out bytes.Buffer
	err = run(context.Background(), cfg, &out, logging.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can not open PUB socket")
	assert.Empty(t, out.String(), "nothing may be sent when bind fails")
}
