// Package logging provides structured logging for the pipeline,
// grounded on the zap usage in the example corpus's HSn0918-rag
// logger package. Unlike that package's process-wide *zap.Logger
// global, construction here returns an instance the caller threads
// explicitly, since spec.md §6 requires the core to depend on no
// process-wide state.
package logging

import "go.uber.org/zap"

// New builds a production-configured *zap.Logger.
func New() (*zap.Logger, error) {
	return zap.NewProduction()
}

// NewDevelopment builds a development-configured *zap.Logger with
// human-readable console output, for CLI use.
func NewDevelopment() (*zap.Logger, error) {
	return zap.NewDevelopment()
}

// Noop returns a logger that discards all output, for tests.
func Noop() *zap.Logger {
	return zap.NewNop()
}

// WithStage returns a child logger tagged with the pipeline stage name,
// so log lines are attributable to the stage that wrote them.
func WithStage(logger *zap.Logger, stage string) *zap.Logger {
	return logger.With(zap.String("stage", stage))
}
