// Package logging builds the zap loggers used by the server and CLI.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config contains logging configuration
type Config struct {
	// Level is the minimum log level
	Level string

	// Format is the output format (json, console)
	Format string

	// Output is the output destination (stdout, stderr, file path)
	Output string

	// Development enables development mode
	Development bool
}

// DefaultConfig returns console logging at info level to stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: "stderr",
	}
}

// New builds a logger from cfg. An unknown level falls back to info. The
// returned cleanup closes a file output and must be called once the logger
// is no longer used.
func New(cfg Config) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	output := cfg.Output
	if output == "" {
		output = "stderr"
	}
	ws, closeOutput, err := zap.Open(output)
	if err != nil {
		return nil, nil, fmt.Errorf("open log output: %w", err)
	}

	core := zapcore.NewCore(encoder, ws, level)
	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	}
	logger := zap.New(core, opts...)

	cleanup := func() {
		_ = logger.Sync()
		closeOutput()
	}
	return logger, cleanup, nil
}
