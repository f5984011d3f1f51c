package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Logger is a duck-typed interface satisfied by *slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config represents logging configuration.
type Config struct {
	Level   string            `toml:"level"`
	Format  string            `toml:"format"`
	Modules map[string]string `toml:"modules"`
}

var (
	mutex        sync.Mutex
	globalConfig Config
	loggers      = make(map[string]*slog.Logger)
	levels       = make(map[string]*slog.LevelVar)
	defaultLevel = &slog.LevelVar{}

	// output receives console logs. Standard output is left to command
	// results such as register dumps.
	output io.Writer = os.Stderr

	// sink is the handler every logger ends in. Initialize and SetOutput
	// replace it, loggers handed out earlier follow.
	sink atomic.Pointer[slog.Handler]
)

// Initialize applies config to every logger, including loggers obtained
// before the call, and installs a default slog logger at the global level.
func Initialize(config Config) {
	mutex.Lock()
	defer mutex.Unlock()

	globalConfig = config
	defaultLevel.Set(levelOf(""))
	for module, lv := range levels {
		lv.Set(levelOf(module))
	}
	storeSink()

	slog.SetDefault(slog.New(&moduleHandler{level: defaultLevel}))
}

// SetOutput redirects console logs of all loggers.
func SetOutput(w io.Writer) {
	mutex.Lock()
	defer mutex.Unlock()
	output = w
	storeSink()
}

// GetLogger returns the logger of module, creating it if needed. The same
// logger is returned for every call with the same module.
func GetLogger(module string) *slog.Logger {
	mutex.Lock()
	defer mutex.Unlock()

	if logger, ok := loggers[module]; ok {
		return logger
	}

	lv := &slog.LevelVar{}
	lv.Set(levelOf(module))
	logger := slog.New(&moduleHandler{level: lv}).With("module", module)
	loggers[module] = logger
	levels[module] = lv
	return logger
}

// levelOf resolves the level of module from the current config. Callers
// hold mutex.
func levelOf(module string) slog.Level {
	level := slog.LevelInfo
	if l, ok := parseLevel(globalConfig.Level); ok {
		level = l
	}
	if s, ok := globalConfig.Modules[module]; ok && module != "" {
		if l, ok := parseLevel(s); ok {
			level = l
		}
	}
	return level
}

// storeSink rebuilds the sink for the current format and output. Callers
// hold mutex.
func storeSink() {
	h := newSink(globalConfig.Format, output)
	sink.Store(&h)
}

func currentSink() slog.Handler {
	if h := sink.Load(); h != nil {
		return *h
	}
	mutex.Lock()
	defer mutex.Unlock()
	if sink.Load() == nil {
		storeSink()
	}
	return *sink.Load()
}

// newSink writes to w in format and to the journal when journald is
// running. Level filtering happens in moduleHandler, so the sink accepts
// everything.
func newSink(format string, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}

	var console slog.Handler
	if strings.EqualFold(format, "json") {
		console = slog.NewJSONHandler(w, opts)
	} else {
		console = slog.NewTextHandler(w, opts)
	}

	var handlers []slog.Handler
	if isOutputAvailable(w) {
		handlers = append(handlers, console)
	}
	if IsJournalAvailable() {
		handlers = append(handlers, newJournalHandler())
	}

	switch len(handlers) {
	case 0:
		return console
	case 1:
		return handlers[0]
	default:
		return fanout(handlers)
	}
}

// moduleHandler filters records by a module level and hands them to the
// current sink. Attributes and groups are recorded and replayed onto the
// sink, so a sink swap keeps them.
type moduleHandler struct {
	level slog.Leveler
	ops   []func(slog.Handler) slog.Handler
}

func (h *moduleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *moduleHandler) Handle(ctx context.Context, r slog.Record) error {
	target := currentSink()
	for _, op := range h.ops {
		target = op(target)
	}
	return target.Handle(ctx, r)
}

func (h *moduleHandler) with(op func(slog.Handler) slog.Handler) *moduleHandler {
	ops := make([]func(slog.Handler) slog.Handler, len(h.ops), len(h.ops)+1)
	copy(ops, h.ops)
	return &moduleHandler{level: h.level, ops: append(ops, op)}
}

func (h *moduleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.with(func(s slog.Handler) slog.Handler { return s.WithAttrs(attrs) })
}

func (h *moduleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(func(s slog.Handler) slog.Handler { return s.WithGroup(name) })
}

// isOutputAvailable reports whether w goes to a terminal, pipe, socket or
// regular file. Writers that are not files always count.
func isOutputAvailable(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return true
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	mode := fi.Mode()
	// /dev/null is a device and does not count.
	return mode&(os.ModeCharDevice|os.ModeNamedPipe|os.ModeSocket) != 0 || mode.IsRegular()
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}
