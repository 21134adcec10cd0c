package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSimpleFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, logrus.DebugLevel)

	l.WithField("side", "left").WithField("cmd", 0.5).Warnf("Clamped %d value", 1)

	line := buf.String()
	if !strings.Contains(line, "[WAR] Clamped 1 value cmd=0.5 side=left\n") {
		t.Fatalf("Unexpected log line: %q", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf, logrus.InfoLevel)

	l.Debugf("hidden")
	if buf.Len() != 0 {
		t.Fatalf("Debug line leaked at info level: %q", buf.String())
	}
	l.Infof("shown")
	if !strings.Contains(buf.String(), "[INF] shown") {
		t.Fatalf("Info line missing: %q", buf.String())
	}
}

func TestNewWritesLogFile(t *testing.T) {
	dir := t.TempDir()
	l, err := New("not-a-level", dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	l.Infof("hello")
}
