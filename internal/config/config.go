package config

import (
	"io"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"chunkpub/internal/chunk"
	"chunkpub/internal/logging"
)

// EnvPrefix is prepended to every environment override, e.g. CHUNKPUB_ENDPOINT.
const EnvPrefix = "chunkpub"

const (
	BackendLibzmq = "libzmq"
	BackendGozmq  = "gozmq"
)

// ErrInvalid marks configuration values rejected by Validate.
var ErrInvalid = errors.New("invalid config")

type StatusConfig struct {
	// Addr of the HTTP status server, empty disables it.
	Addr string `yaml:"addr" envconfig:"ADDR"`
}

// Config is the full publisher configuration.
type Config struct {
	Endpoint string `yaml:"endpoint" envconfig:"ENDPOINT"`
	Backend  string `yaml:"backend" envconfig:"BACKEND"`

	ChunkSize int           `yaml:"chunk_size" envconfig:"CHUNK_SIZE"`
	MaxValue  int           `yaml:"max_value" envconfig:"MAX_VALUE"`
	Interval  time.Duration `yaml:"interval" envconfig:"INTERVAL"`
	Count     int           `yaml:"count" envconfig:"COUNT"`
	Seed      int64         `yaml:"seed" envconfig:"SEED"`

	SendHWM int           `yaml:"send_hwm" envconfig:"SEND_HWM"`
	Linger  time.Duration `yaml:"linger" envconfig:"LINGER"`

	Status StatusConfig   `yaml:"status" envconfig:"STATUS"`
	Logger logging.Config `yaml:"logger" envconfig:"LOG"`
}

func DefaultConfig() Config {
	return Config{
		Endpoint:  "tcp://*:5556",
		Backend:   DefaultBackend,
		ChunkSize: chunk.DefaultSize,
		MaxValue:  chunk.DefaultMax,
		Interval:  time.Second,
		Logger:    logging.NewConfig(),
	}
}

// Load builds the configuration from defaults, the YAML file at path (if any)
// and CHUNKPUB_* environment variables, in that order.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "can not read config file")
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "can not parse config file %s", path)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, errors.Wrap(err, "can not read environment")
	}
	return cfg, nil
}

// Validate rejects values the publisher can not run with.
func (c *Config) Validate() error {
	switch {
	case c.Endpoint == "":
		return errors.Wrap(ErrInvalid, "endpoint is empty")
	case c.Backend != BackendLibzmq && c.Backend != BackendGozmq:
		return errors.Wrapf(ErrInvalid, "unknown backend %q", c.Backend)
	case c.ChunkSize < 1:
		return errors.Wrapf(ErrInvalid, "chunk size %d must be positive", c.ChunkSize)
	case c.MaxValue < 0:
		return errors.Wrapf(ErrInvalid, "max value %d is negative", c.MaxValue)
	case c.Interval < 0:
		return errors.Wrapf(ErrInvalid, "interval %s is negative", c.Interval)
	case c.Count < 0:
		return errors.Wrapf(ErrInvalid, "count %d is negative", c.Count)
	case c.SendHWM < 0:
		return errors.Wrapf(ErrInvalid, "send hwm %d is negative", c.SendHWM)
	}
	return nil
}

// Flags holds command line overrides. Only flags that were set on the
// command line are applied, so they win over the file and the environment.
type Flags struct {
	fs   *pflag.FlagSet
	vals Config
}

// RegisterFlags defines the override flags on fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs, vals: DefaultConfig()}
	fs.StringVar(&f.vals.Endpoint, "endpoint", f.vals.Endpoint, "ZMQ endpoint the PUB socket binds to")
	fs.StringVar(&f.vals.Backend, "backend", f.vals.Backend, "ZMQ implementation: libzmq (needs cgo) or gozmq")
	fs.IntVar(&f.vals.ChunkSize, "chunk-size", f.vals.ChunkSize, "number of values per message")
	fs.IntVar(&f.vals.MaxValue, "max-value", f.vals.MaxValue, "upper bound of generated values, inclusive")
	fs.DurationVar(&f.vals.Interval, "interval", f.vals.Interval, "pause between messages")
	fs.IntVar(&f.vals.Count, "count", f.vals.Count, "stop after this many messages, 0 runs forever")
	fs.Int64Var(&f.vals.Seed, "seed", f.vals.Seed, "random seed, 0 seeds from the clock")
	fs.StringVar(&f.vals.Status.Addr, "status-addr", f.vals.Status.Addr, "address of the HTTP status server, empty disables it")
	fs.StringVar(&f.vals.Logger.Logfile, "log-file", f.vals.Logger.Logfile, "file for logging, or stdout/stderr")
	fs.StringVar(&f.vals.Logger.Level, "log-level", f.vals.Logger.Level, "level for logging")
	return f
}

// Apply copies every flag that was set explicitly into cfg.
func (f *Flags) Apply(cfg *Config) {
	f.fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "endpoint":
			cfg.Endpoint = f.vals.Endpoint
		case "backend":
			cfg.Backend = f.vals.Backend
		case "chunk-size":
			cfg.ChunkSize = f.vals.ChunkSize
		case "max-value":
			cfg.MaxValue = f.vals.MaxValue
		case "interval":
			cfg.Interval = f.vals.Interval
		case "count":
			cfg.Count = f.vals.Count
		case "seed":
			cfg.Seed = f.vals.Seed
		case "status-addr":
			cfg.Status.Addr = f.vals.Status.Addr
		case "log-file":
			cfg.Logger.Logfile = f.vals.Logger.Logfile
		case "log-level":
			cfg.Logger.Level = f.vals.Logger.Level
		}
	})
}

// Write renders cfg as YAML.
func Write(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return errors.Wrap(err, "can not encode config")
	}
	return enc.Close()
}
