package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var (
	std     = newStd(os.Stdout)
	logFile *os.File
)

func newStd(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05"})
	return l
}

// InitLogger sets the log level and, when filename is non-empty, tees output
// to that file in addition to stdout.
func InitLogger(level string, filename string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	std.SetLevel(lvl)

	if filename == "" {
		return nil
	}
	logFile, err = os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	std.SetOutput(io.MultiWriter(os.Stdout, logFile))
	return nil
}

// SetOutput redirects all log output. Used by tests.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

// Std exposes the underlying logrus logger for libraries that want a Printf logger.
func Std() *logrus.Logger {
	return std
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	return std.WithFields(fields)
}

func Debugf(format string, v ...interface{}) {
	std.Debugf(format, v...)
}

func Info(v ...interface{}) {
	std.Info(v...)
}

func Infof(format string, v ...interface{}) {
	std.Infof(format, v...)
}

func Warnf(format string, v ...interface{}) {
	std.Warnf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	std.Errorf(format, v...)
}
