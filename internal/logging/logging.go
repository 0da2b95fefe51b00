package logging

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging parameters.
type Config struct {
	Logfile string `yaml:"logfile" envconfig:"FILE"`
	Level   string `yaml:"level" envconfig:"LEVEL"`
}

// NewConfig returns a Config with default settings.
// Logs go to stderr so stdout only carries the send acknowledgements.
func NewConfig() Config {
	return Config{
		Logfile: "stderr",
		Level:   "info",
	}
}

// Logger writes structured logs.
type Logger struct {
	*zap.SugaredLogger
}

// New creates a logger from cfg.
func New(cfg Config) (*Logger, error) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, errors.Wrap(err, "can not set logging level")
	}

	var f *os.File
	switch cfg.Logfile {
	case "stdout":
		f = os.Stdout
	case "stderr", "":
		f = os.Stderr
	default:
		var err error
		f, err = os.OpenFile(cfg.Logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrap(err, "can not open logfile")
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder

	ws := zapcore.Lock(zapcore.AddSync(f))
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), ws, lvl)
	return &Logger{
		SugaredLogger: zap.New(core).Sugar(),
	}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}
