package logging

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ANSI color codes
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
	Gray    = "\033[90m"

	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightWhite   = "\033[97m"
)

// ColoredLogger wraps zap.Logger with component-tagged, optionally colored output.
type ColoredLogger struct {
	*zap.Logger
	enableColors bool
}

// Component identifies the subsystem a log line originates from.
type Component string

const (
	ComponentRegistry Component = "REGISTRY"
	ComponentProber   Component = "PROBER"
	ComponentRanker   Component = "RANKER"
	ComponentFetcher  Component = "FETCHER"
	ComponentStore    Component = "STORE"
	ComponentGateway  Component = "GATEWAY"
	ComponentCLI      Component = "CLI"
	ComponentGeneral  Component = "GENERAL"
)

func getComponentColor(component Component) string {
	switch component {
	case ComponentRegistry:
		return BrightBlue
	case ComponentProber:
		return BrightCyan
	case ComponentRanker:
		return BrightMagenta
	case ComponentFetcher:
		return Green
	case ComponentStore:
		return BrightYellow
	case ComponentGateway:
		return BrightGreen
	case ComponentCLI:
		return Blue
	case ComponentGeneral:
		return Yellow
	default:
		return White
	}
}

func getLevelColor(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return Gray
	case zapcore.InfoLevel:
		return BrightWhite
	case zapcore.WarnLevel:
		return BrightYellow
	case zapcore.ErrorLevel:
		return BrightRed
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return Red
	default:
		return White
	}
}

// coloredConsoleEncoder builds a compact console encoder: HH:MM:SS, single
// letter level, bare file name as caller.
func coloredConsoleEncoder(enableColors bool) zapcore.Encoder {
	config := zap.NewDevelopmentEncoderConfig()

	config.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		timeStr := t.Format("15:04:05")
		if enableColors {
			enc.AppendString(fmt.Sprintf("%s%s%s", Dim, timeStr, Reset))
		} else {
			enc.AppendString(timeStr)
		}
	}

	config.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		levelStr := levelLetter(level)
		if enableColors {
			enc.AppendString(fmt.Sprintf("%s%s%s%s", getLevelColor(level), Bold, levelStr, Reset))
		} else {
			enc.AppendString(levelStr)
		}
	}

	config.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		file := caller.File
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			file = file[idx+1:]
		}
		file = strings.TrimSuffix(file, ".go")
		if enableColors {
			enc.AppendString(fmt.Sprintf("%s%s%s", Dim, file, Reset))
		} else {
			enc.AppendString(file)
		}
	}

	return zapcore.NewConsoleEncoder(config)
}

func levelLetter(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return "D"
	case zapcore.InfoLevel:
		return "I"
	case zapcore.WarnLevel:
		return "W"
	case zapcore.ErrorLevel:
		return "E"
	default:
		return "?"
	}
}

// Options selects level, encoding and destination for NewFromOptions.
type Options struct {
	Level        string // debug, info, warn, error
	Format       string // json, console
	OutputFile   string // empty for stdout
	EnableColors bool
}

// NewFromOptions builds a logger from loaded configuration values. Unknown
// levels fall back to info; any format other than json uses the console encoder.
func NewFromOptions(opts Options) (*ColoredLogger, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zapcore.InfoLevel
	}

	sink := zapcore.AddSync(os.Stdout)
	colors := opts.EnableColors
	if opts.OutputFile != "" {
		file, err := os.OpenFile(opts.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", opts.OutputFile, err)
		}
		sink = zapcore.AddSync(file)
		colors = false
	}

	var encoder zapcore.Encoder
	if opts.Format == "json" {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		colors = false
	} else {
		encoder = coloredConsoleEncoder(colors)
	}

	core := zapcore.NewCore(encoder, sink, level)
	return &ColoredLogger{
		Logger:       zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)),
		enableColors: colors,
	}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *ColoredLogger {
	return &ColoredLogger{Logger: zap.NewNop()}
}

func (l *ColoredLogger) tag(component Component, msg string) string {
	if l.enableColors {
		return fmt.Sprintf("%s[%s]%s %s", getComponentColor(component), component, Reset, msg)
	}
	return fmt.Sprintf("[%s] %s", component, msg)
}

// Component-specific logging methods
func (l *ColoredLogger) ComponentInfo(component Component, msg string, fields ...zap.Field) {
	l.Info(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentWarn(component Component, msg string, fields ...zap.Field) {
	l.Warn(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentError(component Component, msg string, fields ...zap.Field) {
	l.Error(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentDebug(component Component, msg string, fields ...zap.Field) {
	l.Debug(l.tag(component, msg), fields...)
}

// StandardLogger adapts a zap logger to printf-style logging interfaces such
// as the one the badger store expects.
type StandardLogger struct {
	logger    *zap.Logger
	component Component
}

// NewStandardLogger wraps logger for the given component. A nil logger discards output.
func NewStandardLogger(logger *zap.Logger, component Component) *StandardLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StandardLogger{
		logger:    logger.WithOptions(zap.AddCallerSkip(1)),
		component: component,
	}
}

func (s *StandardLogger) format(format string, v ...interface{}) string {
	msg := strings.TrimSuffix(fmt.Sprintf(format, v...), "\n")
	return fmt.Sprintf("[%s] %s", s.component, msg)
}

// Printf logs at info level.
func (s *StandardLogger) Printf(format string, v ...interface{}) {
	s.logger.Info(s.format(format, v...))
}

func (s *StandardLogger) Errorf(format string, v ...interface{}) {
	s.logger.Error(s.format(format, v...))
}

func (s *StandardLogger) Warningf(format string, v ...interface{}) {
	s.logger.Warn(s.format(format, v...))
}

func (s *StandardLogger) Infof(format string, v ...interface{}) {
	s.logger.Info(s.format(format, v...))
}

// Debugf logs at debug level.
func (s *StandardLogger) Debugf(format string, v ...interface{}) {
	s.logger.Debug(s.format(format, v...))
}
