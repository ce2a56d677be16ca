package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config .
type Config struct {
	Level      string
	UseJSON    bool
	Filename   string
	MaxSize    int
	MaxAge     int
	MaxBackups int
	SentryDSN  string
}

var (
	globalLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			With().Timestamp().Logger()
	sentryEnabled bool
)

// Setup configures the global logger and returns a func which flushes sentry.
func Setup(cfg Config) (func(), error) {
	level := zerolog.InfoLevel
	if len(cfg.Level) > 0 {
		lv, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid log level %s", cfg.Level)
		}
		level = lv
	}

	var out io.Writer = os.Stderr
	var noColor = !term.IsTerminal(int(os.Stderr.Fd()))
	if len(cfg.Filename) > 0 {
		noColor = true
		out = &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxAge:     cfg.MaxAge,
			MaxBackups: cfg.MaxBackups,
		}
	}
	if !cfg.UseJSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: noColor}
	}

	globalLogger = zerolog.New(out).Level(level).With().Timestamp().Logger()

	return setupSentry(cfg.SentryDSN)
}

func setupSentry(dsn string) (func(), error) {
	if len(dsn) == 0 {
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
		return nil, errors.Wrap(err, "failed to init sentry")
	}
	sentryEnabled = true

	return func() {
		defer sentry.Flush(time.Second * 2) //nolint
		if err := recover(); err != nil {
			sentry.CaptureMessage(fmt.Sprintf("%v", err))
			panic(err)
		}
	}, nil
}

// GetGlobalLogger .
func GetGlobalLogger() *zerolog.Logger {
	return &globalLogger
}

// Fields is a logger carrying a function name and extra key/values.
type Fields struct {
	kv map[string]any
}

// WithFunc .
func WithFunc(name string) *Fields {
	return &Fields{kv: map[string]any{"func": name}}
}

// WithField returns a copy with the key set.
func (f *Fields) WithField(key string, value any) *Fields {
	kv := make(map[string]any, len(f.kv)+1)
	for k, v := range f.kv {
		kv[k] = v
	}
	kv[key] = value
	return &Fields{kv: kv}
}

func (f *Fields) event(ctx context.Context, ev *zerolog.Event) *zerolog.Event {
	if id, ok := ctx.Value(traceKey).(string); ok {
		ev = ev.Str("trace", id)
	}
	return ev.Fields(f.kv)
}

// Debugf .
func (f *Fields) Debugf(ctx context.Context, format string, args ...any) {
	f.event(ctx, globalLogger.Debug()).Msgf(format, args...)
}

// Debug .
func (f *Fields) Debug(ctx context.Context, args ...any) {
	f.event(ctx, globalLogger.Debug()).Msg(fmt.Sprint(args...))
}

// Infof .
func (f *Fields) Infof(ctx context.Context, format string, args ...any) {
	f.event(ctx, globalLogger.Info()).Msgf(format, args...)
}

// Info .
func (f *Fields) Info(ctx context.Context, args ...any) {
	f.event(ctx, globalLogger.Info()).Msg(fmt.Sprint(args...))
}

// Warnf .
func (f *Fields) Warnf(ctx context.Context, format string, args ...any) {
	f.event(ctx, globalLogger.Warn()).Msgf(format, args...)
}

// Errorf logs err with a message, and reports it to sentry when enabled.
func (f *Fields) Errorf(ctx context.Context, err error, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if sentryEnabled && err != nil {
		sentry.CaptureException(errors.Wrap(err, msg))
	}
	f.event(ctx, globalLogger.Error()).Err(err).Msg(msg)
}

// Error .
func (f *Fields) Error(ctx context.Context, err error, args ...any) {
	f.Errorf(ctx, err, "%s", fmt.Sprint(args...))
}

// Infof logs without function fields.
func Infof(ctx context.Context, format string, args ...any) {
	(&Fields{}).Infof(ctx, format, args...)
}

// Warnf .
func Warnf(ctx context.Context, format string, args ...any) {
	(&Fields{}).Warnf(ctx, format, args...)
}

// Errorf .
func Errorf(ctx context.Context, err error, format string, args ...any) {
	(&Fields{}).Errorf(ctx, err, format, args...)
}

type ctxKey string

const traceKey ctxKey = "trace"

// WithTrace tags every log line emitted with ctx by id.
func WithTrace(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey, id)
}
