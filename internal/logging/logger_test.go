package logging

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestCustomFormatter_Line(t *testing.T) {
	f := &CustomFormatter{SystemName: "taskpad"}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2024, 5, 1, 13, 4, 5, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "api request failed",
		Data:    logrus.Fields{"path": "/tasks", "error": errors.New("boom")},
	}
	b, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	line := string(b)
	for _, want := range []string{
		"Date: 2024-05-01, Time: 13:04:05, ",
		"Event Source: taskpad, ",
		"Event Type: WARNING, ",
		"Event ID: ",
		"Message: api request failed",
		", error=boom, path=/tasks",
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
	if !strings.HasSuffix(line, "\n") || strings.Count(line, "\n") != 1 {
		t.Fatalf("expected a single line, got %q", line)
	}
}

func TestNew_WritesToFileAndHonorsLevel(t *testing.T) {
	dir := t.TempDir()
	l, closer, err := New(Options{Dir: dir, Level: "warn"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Info("hidden")
	l.Warn("shown")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(Path(dir))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(b), "hidden") || !strings.Contains(string(b), "shown") {
		t.Fatalf("unexpected log content: %q", string(b))
	}
}

func TestNew_DebugOverridesLevel(t *testing.T) {
	l, closer, err := New(Options{Dir: t.TempDir(), Level: "error", Debug: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closer.Close()
	if l.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", l.GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	if lvl, err := ParseLevel(""); err != nil || lvl != logrus.InfoLevel {
		t.Fatalf("expected info default, got %s %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
