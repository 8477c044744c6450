// Package logging builds the file logger shared by the CLI and TUI. stdout and stderr
// belong to the user-facing output, so log entries go to a rotating file.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	SystemName  = "taskpad"
	logDirName  = "logs"
	logFileName = "taskpad.log"
)

type CustomFormatter struct {
	SystemName string
}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	b.WriteString(fmt.Sprintf("Date: %s, Time: %s, ", entry.Time.Format("2006-01-02"), entry.Time.Format("15:04:05")))
	b.WriteString(fmt.Sprintf("Event Source: %s, ", f.SystemName))
	b.WriteString(fmt.Sprintf("Event Type: %s, ", strings.ToUpper(entry.Level.String())))
	b.WriteString(fmt.Sprintf("Event ID: %s, ", uuid.New().String()))
	b.WriteString(fmt.Sprintf("Message: %s", entry.Message))

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := entry.Data[k]
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			b.WriteString(fmt.Sprintf(", %s=%v", k, v))
		}
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

type Options struct {
	// Dir is the config directory; logs go to <Dir>/logs/taskpad.log.
	Dir   string
	Level string
	Debug bool
}

// New returns a logger writing to a rotating file under opts.Dir. The returned closer
// releases the file.
func New(opts Options) (*logrus.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	if opts.Debug {
		level = logrus.DebugLevel
	}

	logDir := filepath.Join(opts.Dir, logDirName)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	file := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, logFileName),
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	l := logrus.New()
	l.SetOutput(file)
	l.SetFormatter(&CustomFormatter{SystemName: SystemName})
	l.SetLevel(level)
	return l, file, nil
}

// Discard is a logger that drops everything; used by tests and as a nil fallback.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetFormatter(&CustomFormatter{SystemName: SystemName})
	return l
}

func ParseLevel(s string) (logrus.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return logrus.InfoLevel, nil
	}
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return lvl, nil
}

func Path(dir string) string {
	return filepath.Join(dir, logDirName, logFileName)
}
