package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds the process logger, installs it as zap's global logger and
// returns it. Logs always go to stderr. When outputIsStdout is true the JSON
// encoder is used so log lines are machine-readable next to record output;
// otherwise the console encoder is used for human readability.
func Init(outputIsStdout bool, level zapcore.Level) *zap.Logger {
	logger := zap.New(NewCore(zapcore.Lock(os.Stderr), outputIsStdout, level))
	zap.ReplaceGlobals(logger)
	return logger
}

// NewCore returns a core writing to w at level or above.
func NewCore(w zapcore.WriteSyncer, json bool, level zapcore.Level) zapcore.Core {
	var enc zapcore.Encoder
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	return zapcore.NewCore(enc, w, level)
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to a
// zapcore.Level. Unknown strings default to InfoLevel.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
