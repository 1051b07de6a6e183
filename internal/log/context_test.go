package log

import (
	"context"
	"testing"
)

func TestRunIDRoundTrip(t *testing.T) {
	ctx := ContextWithRunID(context.Background(), "run-123")
	if got := RunIDFromContext(ctx); got != "run-123" {
		t.Errorf("RunIDFromContext = %q, want run-123", got)
	}
}

func TestHookIDRoundTrip(t *testing.T) {
	ctx := ContextWithHookID(context.Background(), "notebook-lint")
	if got := HookIDFromContext(ctx); got != "notebook-lint" {
		t.Errorf("HookIDFromContext = %q, want notebook-lint", got)
	}
}

func TestMissingIDsAreEmpty(t *testing.T) {
	if got := RunIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty run id, got %q", got)
	}
	if got := HookIDFromContext(nil); got != "" { //nolint:staticcheck // nil context tolerated on purpose
		t.Errorf("expected empty hook id for nil context, got %q", got)
	}
}

func TestNilContextTolerated(t *testing.T) {
	ctx := ContextWithRunID(nil, "run-1") //nolint:staticcheck // nil context tolerated on purpose
	if got := RunIDFromContext(ctx); got != "run-1" {
		t.Errorf("RunIDFromContext = %q, want run-1", got)
	}
}
