package context_test

import (
	"context"
	"testing"

	context_ "github.com/mkrupp/disastermap/internal/infra/context"
)

func TestEnsureTraceID(t *testing.T) {
	t.Parallel()

	calls := 0
	newID := func() string {
		calls++

		return "generated"
	}

	ctx, id := context_.EnsureTraceID(context.Background(), newID)
	if id != "generated" || calls != 1 {
		t.Fatalf("id = %q after %d calls", id, calls)
	}

	if got, ok := context_.TraceIDFromContext(ctx); !ok || got != id {
		t.Errorf("context trace id = %q, %v", got, ok)
	}

	if _, again := context_.EnsureTraceID(ctx, newID); again != id || calls != 1 {
		t.Errorf("second call = %q after %d calls, want the existing id", again, calls)
	}

	if _, ok := context_.TraceIDFromContext(context_.WithTraceID(context.Background(), "")); ok {
		t.Error("empty trace id reported as present")
	}
}
