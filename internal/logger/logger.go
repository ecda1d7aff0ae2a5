package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger for the given environment, tagged with the binary name.
// "development" gets the console encoder at debug level, "test" discards output,
// anything else uses the JSON production config.
func New(env, service string) *zap.Logger {
	var (
		l   *zap.Logger
		err error
	)
	switch env {
	case "test":
		return zap.NewNop()
	case "development":
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		l, err = cfg.Build()
	default:
		l, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return l.With(zap.String("service", service))
}
