package log

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the application logger.
// format "json" selects the JSON encoder, anything else the console one. Both
// use production settings: stack traces only from Error up.
func New(level, format string) (*zap.Logger, error) {
	cfg, err := newConfig(level, format)
	if err != nil {
		return nil, err
	}
	return cfg.Build()
}

func newConfig(level, format string) (zap.Config, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return zap.Config{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if format != "json" {
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.Sampling = nil
	}
	cfg.Level = lvl
	return cfg, nil
}

// Component returns a child logger tagged with a component name
func Component(logger *zap.Logger, name string) *zap.Logger {
	return logger.With(zap.String("component", name))
}
