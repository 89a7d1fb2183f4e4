//go:build !tinygo

package hal

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 14
)

// hostLogger adapts a logrus logger to the line-oriented hal.Logger. Lines
// arriving from the logger service carry a "component: message" shape; the
// component is split off into a field.
type hostLogger struct {
	log *logrus.Logger
}

func newHostLogger(cfg HostConfig) *hostLogger {
	l := logrus.New()
	l.SetOutput(os.Stdout)

	if cfg.LogFile != "" {
		l.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    logMaxSizeMB,
			MaxBackups: logMaxBackups,
			MaxAge:     logMaxAgeDays,
		}))
	}
	if cfg.LogJSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		l.SetLevel(lvl)
	}
	return &hostLogger{log: l}
}

func (l *hostLogger) WriteLineString(s string) {
	component, msg := splitComponent(s)
	if component == "" {
		l.log.Info(msg)
		return
	}
	l.log.WithField("component", component).Info(msg)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.WriteLineString(string(b))
}

func splitComponent(s string) (component, msg string) {
	for i := 0; i < len(s) && i < 16; i++ {
		switch s[i] {
		case ':':
			if i+1 < len(s) && s[i+1] == ' ' {
				return s[:i], s[i+2:]
			}
			return "", s
		case ' ':
			return "", s
		}
	}
	return "", s
}
