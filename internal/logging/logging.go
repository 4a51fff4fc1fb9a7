package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger: every line goes to stdout and, when logPath
// is non-empty, is mirrored to an append-only log file. Lines are rendered as
// "{timestamp} - {LEVEL} - {message}". The returned close func flushes and
// releases the file; call it once at process end.
func New(logPath, level string) (*zap.SugaredLogger, func(), error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.ConsoleSeparator = " - "
	// caller info would break the three-field line contract
	encCfg.CallerKey = zapcore.OmitKey
	encoder := zapcore.NewConsoleEncoder(encCfg)

	lvl := parseLevel(level)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), lvl),
	}

	closeFn := func() {}
	if logPath != "" {
		file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(file), lvl))
		closeFn = func() { file.Close() }
	}

	logger := zap.New(zapcore.NewTee(cores...))
	sugar := logger.Sugar()

	closer := func() {
		_ = logger.Sync()
		closeFn()
	}
	return sugar, closer, nil
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
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
