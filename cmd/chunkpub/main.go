package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"chunkpub/internal/chunk"
	"chunkpub/internal/config"
	"chunkpub/internal/logging"
	"chunkpub/internal/publisher"
	"chunkpub/internal/status"
	"chunkpub/internal/transport"
)

func main() {
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	printConfig := fs.Bool("print-config", false, "print the effective config as YAML and exit")
	flags := config.RegisterFlags(fs)
	fs.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "can not load config: %v\n", err)
		os.Exit(1)
	}
	flags.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "bad config: %v\n", err)
		os.Exit(1)
	}

	if *printConfig {
		if err := config.Write(os.Stdout, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	logger, err := logging.New(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "can not init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChannel)
	go func() {
		sig := <-signalChannel
		logger.Infof("got signal: %s, stopping...", sig)
		cancel()
	}()

	if err := run(ctx, cfg, os.Stdout, logger); err != nil {
		logger.Errorf("publisher failed: %v", err)
		fmt.Fprintf(os.Stderr, "publisher failed: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

// run binds the socket and publishes until ctx is done, the configured count is
// reached, or sending fails.
func run(ctx context.Context, cfg config.Config, out io.Writer, logger *logging.Logger) error {
	sender, err := transport.Open(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "can not open PUB socket")
	}
	defer func() {
		if err := sender.Close(); err != nil {
			logger.Warnf("close: %v", err)
		}
	}()

	id := uuid.NewString()
	seed := chunk.Seed(cfg.Seed)
	logger.Infow("publisher bound",
		"id", id,
		"endpoint", cfg.Endpoint,
		"backend", cfg.Backend,
		"seed", seed,
		"chunk_size", cfg.ChunkSize,
		"interval", cfg.Interval,
	)

	pub := publisher.New(cfg, sender, rand.New(rand.NewSource(seed)), out, logger)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	wg, wgCtx := errgroup.WithContext(runCtx)
	wg.Go(func() error {
		defer stop()
		return pub.Run(wgCtx)
	})
	if cfg.Status.Addr != "" {
		info := status.Info{ID: id, Endpoint: cfg.Endpoint, Backend: cfg.Backend}
		router := status.NewRouter(info, pub.Stats(), logger)
		wg.Go(func() error {
			return status.Serve(wgCtx, cfg.Status.Addr, router, logger)
		})
	}
	return wg.Wait()
}
