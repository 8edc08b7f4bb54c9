package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"go.opentelemetry.io/otel/trace"

	"employee-directory/backend/internal/audit/domain"
)

// mockAuditRepo implements the audit repository interface for tests.
type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
}

func (m *mockAuditRepo) GetByID(context.Context, string) (*domain.AuditLog, error) {
	return nil, nil
}

func (m *mockAuditRepo) ListByUser(context.Context, string, int32, int32) ([]*domain.AuditLog, error) {
	return m.entries, nil
}

func (m *mockAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func TestLogger_LogEvent_Success(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, func(context.Context) string { return "192.168.1.1" }, nil)

	logger.LogEvent(context.Background(), "actor-1", "target-1", "delete_user", "role=Employee")

	if len(repo.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(repo.entries))
	}
	e := repo.entries[0]
	if e.ActorID != "actor-1" || e.TargetID != "target-1" || e.Action != "delete_user" || e.Metadata != "role=Employee" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.IP != "192.168.1.1" {
		t.Errorf("IP = %q", e.IP)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Error("ID and CreatedAt should be set")
	}
	if e.TraceID != "" {
		t.Errorf("TraceID = %q, want empty without a span", e.TraceID)
	}
}

func TestLogger_LogEvent_NoExtractor(t *testing.T) {
	repo := &mockAuditRepo{}
	NewLogger(repo, nil, nil).LogEvent(context.Background(), "", "", "sign_in_failed", "")
	if repo.entries[0].IP != "unknown" {
		t.Errorf("IP = %q, want unknown", repo.entries[0].IP)
	}
}

func TestLogger_LogEvent_TraceID(t *testing.T) {
	repo := &mockAuditRepo{}
	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID, SpanID: spanID,
	}))
	NewLogger(repo, nil, nil).LogEvent(ctx, "u1", "", "sign_out", "")
	if repo.entries[0].TraceID != "0102030405060708090a0b0c0d0e0f10" {
		t.Errorf("TraceID = %q", repo.entries[0].TraceID)
	}
}

func TestLogger_LogEvent_RepoErrorIsLogged(t *testing.T) {
	repo := &mockAuditRepo{createErr: errors.New("db down")}
	log, hook := logtest.NewNullLogger()
	NewLogger(repo, nil, log).LogEvent(context.Background(), "u1", "u2", "update_user", "")

	if len(hook.Entries) != 1 {
		t.Fatalf("log entries = %d, want 1", len(hook.Entries))
	}
	e := hook.LastEntry()
	if e.Level != logrus.WarnLevel || e.Data["action"] != "update_user" {
		t.Errorf("unexpected log entry %+v", e)
	}
}

func TestLogger_NilRepo(t *testing.T) {
	NewLogger(nil, nil, nil).LogEvent(context.Background(), "u1", "", "sign_in", "")
}
