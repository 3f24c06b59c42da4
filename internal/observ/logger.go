package observ

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Production gets JSON output with
// the service name stamped on every entry; anything else gets the
// console encoder for local work.
func NewLogger(env, level string) (*zap.Logger, error) {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		// Write-path warnings (transaction fallback, partial failure) are
		// the signal that the store degraded. Do not sample them away.
		config.Sampling = nil
	} else {
		config = zap.NewDevelopmentConfig()
	}

	config.InitialFields = map[string]any{"service": "agencydesk"}

	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	return config.Build()
}
