// Package logger provides structured logging with zap.
package logger

import "go.uber.org/zap"

// New creates the leadform logger for env. "production" logs JSON at info,
// "test" discards everything, anything else is the development console
// logger.
func New(env string) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	switch env {
	case "production":
		log, err = zap.NewProduction()
	case "test":
		return zap.NewNop()
	default:
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewNop()
	}
	return log.Named("leadform")
}
