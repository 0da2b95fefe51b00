// Package status serves the publisher counters over HTTP.
package status

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"chunkpub/internal/logging"
	"chunkpub/internal/publisher"
)

// Info identifies the running publisher.
type Info struct {
	ID       string
	Endpoint string
	Backend  string
}

// Report is the body of GET /status.
type Report struct {
	ID       string     `json:"id"`
	Endpoint string     `json:"endpoint"`
	Backend  string     `json:"backend"`
	Sent     uint64     `json:"sent"`
	Bytes    uint64     `json:"bytes"`
	LastSent *time.Time `json:"last_sent,omitempty"`
}

// NewRouter returns the status routes for the given publisher stats.
func NewRouter(info Info, stats *publisher.Stats, logger *logging.Logger) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("pong"))
	}).Methods(http.MethodGet)
	r.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		snap := stats.Snapshot()
		report := Report{
			ID:       info.ID,
			Endpoint: info.Endpoint,
			Backend:  info.Backend,
			Sent:     snap.Sent,
			Bytes:    snap.Bytes,
		}
		if !snap.LastSent.IsZero() {
			report.LastSent = &snap.LastSent
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			logger.Errorf("can not write status: %v", err)
		}
	}).Methods(http.MethodGet)
	return r
}

// Serve runs an HTTP server on addr until ctx is done.
func Serve(ctx context.Context, addr string, h http.Handler, logger *logging.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChannel := make(chan error, 1)
	go func() {
		defer close(errChannel)
		errChannel <- srv.ListenAndServe()
	}()

	logger.Infof("status server started at %s", addr)
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "can not shut down status server")
		}
		logger.Info("status server stopped")
		return nil
	case err := <-errChannel:
		return errors.Wrapf(err, "status server at %s", addr)
	}
}
