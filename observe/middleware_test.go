package observe

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/codes"
)

func TestMiddleware_SuccessPath(t *testing.T) {
	tracer, recorder := newRecordingTracer()
	metrics, reader := newTestMetrics(t)
	var logs bytes.Buffer
	mw := NewMiddleware(tracer, metrics, NewLoggerWithWriter("info", &logs))

	called := false
	err := mw.Run(context.Background(), Operation{Name: "explore", Endpoint: "search"}, func(ctx context.Context, op Operation) error {
		called = true
		if op.Name != "explore" {
			t.Errorf("op.Name = %q", op.Name)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !called {
		t.Fatal("wrapped function not called")
	}

	if spans := recorder.Ended(); len(spans) != 1 || spans[0].Status().Code != codes.Ok {
		t.Errorf("spans = %v", spans)
	}
	if got := sumOf(t, collect(t, reader), MetricRequestTotal).DataPoints[0].Value; got != 1 {
		t.Errorf("request total = %d, want 1", got)
	}
	if !strings.Contains(logs.String(), `"msg":"operation completed"`) {
		t.Errorf("completion not logged: %s", logs.String())
	}
}

func TestMiddleware_ErrorPropagatedUnchanged(t *testing.T) {
	tracer, recorder := newRecordingTracer()
	metrics, reader := newTestMetrics(t)
	var logs bytes.Buffer
	mw := NewMiddleware(tracer, metrics, NewLoggerWithWriter("info", &logs))

	boom := errors.New("boom")
	err := mw.Run(context.Background(), Operation{Name: "explore"}, func(context.Context, Operation) error {
		return boom
	})
	if err != boom {
		t.Fatalf("Run() error = %v, want the wrapped error unchanged", err)
	}

	if recorder.Ended()[0].Status().Code != codes.Error {
		t.Error("span status should be Error")
	}
	if got := sumOf(t, collect(t, reader), MetricRequestErrors).DataPoints[0].Value; got != 1 {
		t.Errorf("request errors = %d, want 1", got)
	}
	if !strings.Contains(logs.String(), `"error":"boom"`) || !strings.Contains(logs.String(), `"level":"error"`) {
		t.Errorf("failure not logged: %s", logs.String())
	}
}

func TestMiddleware_Duration(t *testing.T) {
	var logs bytes.Buffer
	mw := NewMiddleware(nil, nil, NewLoggerWithWriter("info", &logs))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	mw.now = func() time.Time {
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(1500 * time.Microsecond)
	}

	_ = mw.Run(context.Background(), Operation{Name: "x"}, func(context.Context, Operation) error { return nil })

	if !strings.Contains(logs.String(), `"duration_ms":1.5`) {
		t.Errorf("duration_ms not logged as 1.5: %s", logs.String())
	}
}

func TestNewMiddleware_NilComponents(t *testing.T) {
	mw := NewMiddleware(nil, nil, nil)
	if mw.Tracer() == nil || mw.Metrics() == nil || mw.Logger() == nil {
		t.Fatal("nil components should be replaced by no-ops")
	}
	if err := mw.Run(context.Background(), Operation{Name: "x"}, func(context.Context, Operation) error { return nil }); err != nil {
		t.Errorf("Run() error = %v", err)
	}
}
