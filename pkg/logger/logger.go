package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits for LOG_FILE.
const (
	fileMaxSizeMB  = 100
	fileMaxBackups = 5
	fileMaxAgeDays = 28
)

var log *zap.Logger

func init() {
	if err := InitializeLogger(false); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
	}
}

// InitializeLogger builds the process-wide zap logger from the LOG_LEVEL and
// LOG_FILE environment variables. It runs before configuration is loaded;
// Configure replaces the logger once it is.
func InitializeLogger(isDevelopment bool) error {
	return Configure(isDevelopment, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE"))
}

// Configure builds the process-wide zap logger.
// Development mode uses the console encoder with colored levels; production
// mode emits one JSON object per entry. A non-empty level overrides the
// default in both. When file is set, entries are also written as JSON to a
// rotating file.
func Configure(isDevelopment bool, level, file string) error {
	var config zap.Config
	if isDevelopment {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.Encoding = "json"
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.MessageKey = "message"
		config.EncoderConfig.LevelKey = "level"
		config.EncoderConfig.CallerKey = "caller"
		config.EncoderConfig.StacktraceKey = "stacktrace"
		config.Level.SetLevel(zap.InfoLevel)
	}

	if raw := strings.TrimSpace(level); raw != "" {
		var parsed zapcore.Level
		if err := parsed.Set(raw); err == nil {
			config.Level.SetLevel(parsed)
		} else if log != nil {
			log.Warn("Invalid LOG_LEVEL, keeping default level", zap.String("logLevel", raw))
		}
	}

	opts := []zap.Option{zap.AddCallerSkip(1)}
	if path := strings.TrimSpace(file); path != "" {
		fileCore := newFileCore(path, config.Level)
		opts = append(opts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, fileCore)
		}))
	}

	built, err := config.Build(opts...)
	if err != nil {
		log = zap.NewNop()
		return err
	}
	log = built

	zap.RedirectStdLog(log)
	return nil
}

func newFileCore(path string, level zap.AtomicLevel) zapcore.Core {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    fileMaxSizeMB,
		MaxBackups: fileMaxBackups,
		MaxAge:     fileMaxAgeDays,
		Compress:   true,
	})
	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), writer, level)
}

// L returns the global logger instance.
func L() *zap.Logger {
	return log
}

// Sync flushes any buffered log entries.
func Sync() error {
	if log != nil {
		return log.Sync()
	}
	return nil
}

// SetTestLogger swaps the global logger, typically for a zaptest observer core,
// and returns a function restoring the previous one.
func SetTestLogger(l *zap.Logger) func() {
	previous := log
	log = l
	return func() { log = previous }
}
