// Package logging hands out per-component logrus loggers that share one
// configuration. The configuration can change at runtime (the daemon reloads
// its config file) and every logger already handed out follows it.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grovetools/statusbar/pkg/paths"
	"github.com/grovetools/statusbar/util/pathutil"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
	active    Config
	files     = make(map[string]*os.File)
)

// NewLogger returns the logger for component, creating it on first use.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()
	apply(logger, component, active)
	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// Configure replaces the shared configuration and re-applies it to every
// logger created so far.
func Configure(cfg Config) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	active = cfg
	for component, entry := range loggers {
		apply(entry.Logger, component, cfg)
	}
}

// Reset forgets all loggers and closes their log files.
func Reset() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	loggers = make(map[string]*logrus.Entry)
	active = Config{}
	for path, f := range files {
		_ = f.Close()
		delete(files, path)
	}
}

func apply(logger *logrus.Logger, component string, cfg Config) {
	levelStr := "info"
	if env := os.Getenv("STATUSBAR_LOG_LEVEL"); env != "" {
		levelStr = env
	} else if cfg.Level != "" {
		levelStr = cfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetReportCaller(os.Getenv("STATUSBAR_LOG_CALLER") == "true" || cfg.ReportCaller)

	switch cfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: cfg.Format})
	}

	// The file sink is a hook so it can carry its own format.
	logger.ReplaceHooks(make(logrus.LevelHooks))
	if cfg.File.Enabled {
		path := cfg.File.Path
		if path == "" {
			path = paths.LogFile(component, time.Now())
		}
		if w, err := openFile(pathutil.Expand(path)); err == nil {
			logger.AddHook(&fileHook{w: w, formatter: fileFormatter(cfg)})
		} else {
			logger.Warnf("Failed to open log file %s: %v", path, err)
		}
	}

	if toStderr(cfg, level) {
		logger.SetOutput(GetGlobalOutput())
	} else {
		logger.SetOutput(io.Discard)
	}
}

// toStderr decides whether structured logs also go to stderr. In "auto"
// mode they do when debugging or when stderr is not a terminal, so an
// interactive `statusbar run` keeps its terminal clean.
func toStderr(cfg Config, level logrus.Level) bool {
	switch cfg.Format.StructuredToStderr {
	case "always":
		return true
	case "never":
		return false
	}
	isDebug := os.Getenv("STATUSBAR_DEBUG") == "1" || level >= logrus.DebugLevel
	isInteractive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return isDebug || !isInteractive
}

func fileFormatter(cfg Config) logrus.Formatter {
	if cfg.File.Format == "json" || (cfg.File.Format == "" && cfg.Format.Preset == "json") {
		return &logrus.JSONFormatter{}
	}
	return &TextFormatter{Config: cfg.Format, Plain: true}
}

// openFile returns a shared append handle; files stay open until Reset.
func openFile(path string) (io.Writer, error) {
	if f, ok := files[path]; ok {
		return f, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	files[path] = f
	return f, nil
}

type fileHook struct {
	mu        sync.Mutex
	w         io.Writer
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(line)
	return err
}
