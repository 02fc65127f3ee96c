// Package logger builds the zap logger shared by the installer commands.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvDebug enables debug logging when set to a non-empty value other than "0".
const EnvDebug = "ZERB_DEBUG"

var global *zap.SugaredLogger

// New returns a console logger writing to w.
// Output is meant for humans, so timestamps and callers are omitted.
func New(w io.Writer, debug bool) *zap.SugaredLogger {
	encCfg := zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core).Sugar()
}

// DebugFromEnv reports whether ZERB_DEBUG asks for debug output.
func DebugFromEnv() bool {
	v := os.Getenv(EnvDebug)
	return v != "" && v != "0"
}

// Init sets the process-wide logger.
func Init(l *zap.SugaredLogger) { global = l }

// Logger returns the process-wide logger, or a no-op logger before Init.
func Logger() *zap.SugaredLogger {
	if global == nil {
		return zap.NewNop().Sugar()
	}
	return global
}

// OrNop returns l. A nil l falls back to the process-wide logger, which is
// a no-op logger until Init runs.
func OrNop(l *zap.SugaredLogger) *zap.SugaredLogger {
	if l == nil {
		return Logger()
	}
	return l
}
