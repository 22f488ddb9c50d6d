package service

import "log/slog"

// Logger is the minimal logging surface the services need. *slog.Logger
// satisfies it directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}
