package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	wailslogger "github.com/wailsapp/wails/v2/pkg/logger"
)

// Options configures the application logger.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New builds the logrus logger shared by every component. Unknown levels fall
// back to info.
func New(opts Options) *logrus.Logger {
	l := logrus.New()
	if opts.Output != nil {
		l.SetOutput(opts.Output)
	} else {
		l.SetOutput(os.Stdout)
	}

	if strings.EqualFold(opts.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	return l
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// WailsLevel maps a logrus level onto the Wails runtime log level.
func WailsLevel(level logrus.Level) wailslogger.LogLevel {
	switch {
	case level >= logrus.TraceLevel:
		return wailslogger.TRACE
	case level >= logrus.DebugLevel:
		return wailslogger.DEBUG
	case level >= logrus.InfoLevel:
		return wailslogger.INFO
	case level >= logrus.WarnLevel:
		return wailslogger.WARNING
	default:
		return wailslogger.ERROR
	}
}

// WailsLogger routes the Wails runtime log through logrus.
type WailsLogger struct {
	entry *logrus.Entry
}

var _ wailslogger.Logger = (*WailsLogger)(nil)

func NewWailsLogger(l *logrus.Logger) *WailsLogger {
	return &WailsLogger{entry: l.WithField("component", "wails")}
}

func (w *WailsLogger) Print(message string)   { w.entry.Print(message) }
func (w *WailsLogger) Trace(message string)   { w.entry.Trace(message) }
func (w *WailsLogger) Debug(message string)   { w.entry.Debug(message) }
func (w *WailsLogger) Info(message string)    { w.entry.Info(message) }
func (w *WailsLogger) Warning(message string) { w.entry.Warn(message) }
func (w *WailsLogger) Error(message string)   { w.entry.Error(message) }

// Fatal logs without exiting; Wails decides how to shut down.
func (w *WailsLogger) Fatal(message string) { w.entry.Error(message) }
