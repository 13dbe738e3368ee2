package logging

import (
	"context"
	"os"
	"slices"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger is the default Logger, backed by a zap core.
// Debug/Info/Warn/Error go to stderr through a console encoder; Fatal exits.
type ZapLogger struct {
	base   *zap.Logger
	level  zap.AtomicLevel
	fields Fields
}

// NewZapLogger creates a console logger writing to stderr at InfoLevel
func NewZapLogger() *ZapLogger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), level)
	return newZapLogger(core, level)
}

// NewZapLoggerFromCore wraps an existing core, e.g. a zaptest observer.
func NewZapLoggerFromCore(core zapcore.Core) *ZapLogger {
	return newZapLogger(core, zap.NewAtomicLevelAt(zapcore.DebugLevel))
}

func newZapLogger(core zapcore.Core, level zap.AtomicLevel) *ZapLogger {
	return &ZapLogger{
		base:   zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)),
		level:  level,
		fields: make(Fields),
	}
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}

// zapFields flattens preset and call-site fields in sorted key order
func (z *ZapLogger) zapFields(err error, fields []Fields) []zap.Field {
	all := merge(append([]Fields{z.fields}, fields...)...)

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]zap.Field, 0, len(keys)+1)
	for _, k := range keys {
		out = append(out, zap.Any(k, all[k]))
	}
	if err != nil {
		out = append(out, zap.Error(err))
	}
	return out
}

func (z *ZapLogger) log(level Level, err error, msg string, fields ...Fields) {
	if !z.level.Enabled(toZapLevel(level)) {
		return
	}

	zfs := z.zapFields(err, fields)
	switch level {
	case DebugLevel:
		z.base.Debug(msg, zfs...)
	case InfoLevel:
		z.base.Info(msg, zfs...)
	case WarnLevel:
		z.base.Warn(msg, zfs...)
	case ErrorLevel:
		z.base.Error(msg, zfs...)
	case FatalLevel:
		z.base.Fatal(msg, zfs...)
	}
}

func (z *ZapLogger) Debug(msg string, fields ...Fields) {
	z.log(DebugLevel, nil, msg, fields...)
}

func (z *ZapLogger) Info(msg string, fields ...Fields) {
	z.log(InfoLevel, nil, msg, fields...)
}

func (z *ZapLogger) Warn(msg string, fields ...Fields) {
	z.log(WarnLevel, nil, msg, fields...)
}

func (z *ZapLogger) Error(err error, msg string, fields ...Fields) {
	z.log(ErrorLevel, err, msg, fields...)
}

func (z *ZapLogger) Fatal(err error, msg string, fields ...Fields) {
	z.log(FatalLevel, err, msg, fields...)
}

func (z *ZapLogger) WithFields(fields Fields) Logger {
	return &ZapLogger{
		base:   z.base,
		level:  z.level,
		fields: merge(z.fields, fields),
	}
}

func (z *ZapLogger) WithContext(ctx context.Context) Logger {
	if fields, ok := fieldsFromContext(ctx); ok {
		return z.WithFields(fields)
	}
	return z
}

// SetLevel changes the level of this logger and every logger derived from it
func (z *ZapLogger) SetLevel(level Level) {
	z.level.SetLevel(toZapLevel(level))
}

// Sync flushes buffered output
func (z *ZapLogger) Sync() error {
	return z.base.Sync()
}
