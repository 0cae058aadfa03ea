// Package logger wires zap behind a logr.Logger facade and threads it
// through context. Entries are JSON on stderr so stdout stays reserved
// for document output.
package logger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"syscall"

	"github.com/oakwood-commons/kvset/pkg/settings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// loggerContextKey is unexported so no other package can collide with the
// logger slot in a context.
type loggerContextKey struct{}

// Field names shared by every log entry. Commands attach the command keys;
// load and write operations attach the source, format, and path keys.
const (
	RootCommandKey = "root_command"
	SubCommandKey  = "sub_command"
	CommitKey      = "commit"
	VersionKey     = "version"
	BuildTimeKey   = "build_time"
	GoVersionKey   = "go_version"
	TimeStampKey   = "timestamp"
	MessageKey     = "message"
	PathKey        = "path"
	SourceKey      = "source"
	FormatKey      = "format"
)

var (
	once sync.Once

	// globalZapLogger keeps the zap handle around for Sync.
	globalZapLogger *zap.Logger

	// globalLogrLogger is what application code logs through, either
	// directly or after fetching it from a context.
	globalLogrLogger *logr.Logger

	// defaultNoopLogger answers every lookup that happens before Get.
	defaultNoopLogger logr.Logger = logr.Discard()
)

// Get builds the process-wide logger on first call and returns it. Later
// calls return the same logger and ignore their level argument. Negative
// levels enable the corresponding logr V levels.
func Get(logLevel int8) *logr.Logger {
	once.Do(func() {
		globalZapLogger = zap.New(
			newStderrCore(zapcore.Level(logLevel)),
			zap.Fields(buildStamp()...),
			zap.AddCaller(),
			zap.AddStacktrace(zap.ErrorLevel),
			zap.WithFatalHook(zapcore.WriteThenPanic),
		)
		lgr := zapr.NewLogger(globalZapLogger)
		globalLogrLogger = &lgr
	})
	if globalLogrLogger == nil {
		return &defaultNoopLogger
	}
	return globalLogrLogger
}

// newStderrCore returns a JSON core writing to stderr at the given minimum
// level. Stderr keeps log lines out of piped document output.
func newStderrCore(min zapcore.Level) zapcore.Core {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.TimeKey = TimeStampKey
	encoderCfg.MessageKey = MessageKey
	return zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(min),
	)
}

// buildStamp returns the fields stamped onto every entry: the commit,
// version, and build time injected through ldflags, plus the Go toolchain
// that produced the binary.
func buildStamp() []zap.Field {
	return []zap.Field{
		zap.String(CommitKey, settings.VersionInformation.Commit),
		zap.String(VersionKey, settings.VersionInformation.BuildVersion),
		zap.String(BuildTimeKey, settings.VersionInformation.BuildTime),
		zap.String(GoVersionKey, runtime.Version()),
	}
}

// WithLogger attaches lgr to the context. Attaching the logger the context
// already carries returns the context unchanged.
func WithLogger(ctx context.Context, lgr *logr.Logger) context.Context {
	if cur, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok && cur == lgr {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey{}, lgr)
}

// FromContext returns the logger carried by ctx, falling back to the global
// logger and then to a discard logger. It never returns nil.
func FromContext(ctx context.Context) *logr.Logger {
	if lgr, ok := ctx.Value(loggerContextKey{}).(*logr.Logger); ok {
		return lgr
	}
	if globalLogrLogger != nil {
		return globalLogrLogger
	}
	return &defaultNoopLogger
}

// Sync flushes buffered entries. main defers it so nothing is lost on exit.
func Sync() {
	if globalZapLogger == nil {
		return
	}
	if err := globalZapLogger.Sync(); err != nil && !ignorableSyncError(err) {
		fmt.Fprintf(os.Stderr, "WARNING: failed to sync zap logger: %v\n", err)
	}
}

// ignorableSyncError reports whether err is one of the errors stderr
// routinely produces on sync: pipes and terminals reject the call outright,
// and Windows consoles surface an invalid handle instead of an errno.
func ignorableSyncError(err error) bool {
	for _, benign := range []error{syscall.ENOTTY, syscall.EINVAL, syscall.EIO, syscall.EBADF} {
		if errors.Is(err, benign) {
			return true
		}
	}
	return strings.Contains(err.Error(), "The handle is invalid")
}

// GetGlobalLogger returns the configured logger, or a discard logger when
// Get has not run. Useful in main before a context exists.
func GetGlobalLogger() *logr.Logger {
	if globalLogrLogger != nil {
		return globalLogrLogger
	}
	return &defaultNoopLogger
}

// GetNoopLogger returns the shared discard logger.
func GetNoopLogger() *logr.Logger {
	return &defaultNoopLogger
}

// WithValues returns a logger with extra key-value pairs attached. The
// pointer differs from lgr even when no pairs are given.
func WithValues(lgr *logr.Logger, keysAndValues ...any) *logr.Logger {
	derived := lgr.WithValues(keysAndValues...)
	return &derived
}
