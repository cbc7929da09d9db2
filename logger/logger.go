// Package logger provides a structured, leveled logger, used by the CLI
// (package cmd); the protocol package does not log. It wraps zap the same way
// the rest of the ecosystem does: console encoding to stdout by default,
// file output rotated through lumberjack when a filename is configured.
package logger

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

func toZapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Options configures a Logger. Filename left empty logs to stdout.
type Options struct {
	Level      Level
	Filename   string
	MaxSize    int // MB
	MaxAge     int // days
	MaxBackups int
}

// Logger is a thin wrapper around a zap.SugaredLogger. It adds no fields of
// its own; fields such as a session id are attached through With.
type Logger struct {
	sugared *zap.SugaredLogger
}

func New(opt Options) Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format("2006-01-02T15:04:05.000Z"))
	}
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(encoderConfig)

	var w zapcore.WriteSyncer
	if opt.Filename == "" {
		w = zapcore.AddSync(os.Stdout)
	} else {
		if err := os.MkdirAll(filepath.Dir(opt.Filename), 0o755); err != nil {
			panic(err)
		}
		w = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opt.Filename,
			MaxSize:    opt.MaxSize,
			MaxAge:     opt.MaxAge,
			MaxBackups: opt.MaxBackups,
			LocalTime:  false,
		})
	}

	core := zapcore.NewCore(encoder, w, toZapLevel(opt.Level))
	return Logger{sugared: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()}
}

func (l Logger) Debugf(template string, args ...any) { l.sugared.Debugf(template, args...) }
func (l Logger) Infof(template string, args ...any)  { l.sugared.Infof(template, args...) }
func (l Logger) Warnf(template string, args ...any)  { l.sugared.Warnf(template, args...) }
func (l Logger) Errorf(template string, args ...any) { l.sugared.Errorf(template, args...) }

// With returns a Logger with the given key/value pairs attached to every
// subsequent entry; used to tag a connection id or table name once at the
// top of a call chain instead of repeating it at every log site.
func (l Logger) With(args ...any) Logger {
	return Logger{sugared: l.sugared.With(args...)}
}

var (
	stdOpt = Options{Level: LevelInfo}
	std    = New(stdOpt)
)

// SetOptions reconfigures the package-level logger returned by Std.
func SetOptions(opt Options) {
	stdOpt = opt
	std = New(opt)
}

// Std returns the shared package-level logger.
func Std() Logger { return std }

func Debugf(template string, args ...any) { std.Debugf(template, args...) }
func Infof(template string, args ...any)  { std.Infof(template, args...) }
func Warnf(template string, args ...any)  { std.Warnf(template, args...) }
func Errorf(template string, args ...any) { std.Errorf(template, args...) }
