package logger_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.trai.ch/mason/internal/adapters/logger"
)

func TestLogger_SetOutput(t *testing.T) {
	l := logger.New()

	var buf bytes.Buffer
	l.SetOutput(&buf)

	l.Info("registered 3 specifications")
	if !strings.Contains(buf.String(), "registered 3 specifications") {
		t.Errorf("expected message in output, got %q", buf.String())
	}

	buf.Reset()
	l.Error(errors.New("phase failed"))
	if !strings.Contains(buf.String(), "phase failed") {
		t.Errorf("expected error in output, got %q", buf.String())
	}
}
