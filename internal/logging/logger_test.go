package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNew_JSONDefault(t *testing.T) {
	var buf bytes.Buffer
	l := New("debug", "", &buf)
	if l.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", l.GetLevel())
	}
	l.WithField("user_id", "u1").Info("signed in")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if line["msg"] != "signed in" || line["user_id"] != "u1" {
		t.Errorf("unexpected line: %v", line)
	}
}

func TestNew_TextAndBadLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("nonsense", "text", &buf)
	if l.GetLevel() != logrus.InfoLevel {
		t.Errorf("bad level should fall back to info, got %v", l.GetLevel())
	}
	l.Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text output missing message: %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := New("info", "json", &buf)

	FromContext(context.Background(), base).Info("fallback")
	if !strings.Contains(buf.String(), "fallback") {
		t.Error("fallback logger not used")
	}

	buf.Reset()
	ctx := WithEntry(context.Background(), base.WithField("client_ip", "10.0.0.1"))
	FromContext(ctx, nil).Info("scoped")
	if !strings.Contains(buf.String(), `"client_ip":"10.0.0.1"`) {
		t.Errorf("scoped fields missing: %q", buf.String())
	}
}
