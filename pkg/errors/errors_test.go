package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"
	"time"
)

type testHandler struct {
	onError func(*DriftError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *DriftError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindResolve, "resolve"},
		{KindScheduler, "scheduler"},
		{KindConfig, "config"},
		{KindPanic, "panic"},
		{ErrorKind(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestDriftErrorUnwrap(t *testing.T) {
	base := stderrors.New("no such component")
	err := &DriftError{Op: "switcher.UpdateContent", Kind: KindResolve, Err: base}
	if !stderrors.Is(err, base) {
		t.Error("errors.Is should see the wrapped error")
	}
	want := "switcher.UpdateContent [resolve]: no such component"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "boom", Timestamp: time.Now()}
	if got := err.Error(); got != "panic: boom" {
		t.Errorf("Error() = %q", got)
	}
	err.Op = "scheduler.timer"
	if got := err.Error(); got != "panic in scheduler.timer: boom" {
		t.Errorf("Error() = %q", got)
	}
}

func TestReport(t *testing.T) {
	var captured *DriftError
	prev := SetHandler(&testHandler{onError: func(err *DriftError) { captured = err }})
	defer SetHandler(prev)

	Report(&DriftError{Op: "test.op", Kind: KindConfig, Err: stderrors.New("bad")})

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestReportError(t *testing.T) {
	var captured *DriftError
	prev := SetHandler(&testHandler{onError: func(err *DriftError) { captured = err }})
	defer SetHandler(prev)

	if ReportError("op", KindResolve, nil) != nil {
		t.Error("nil error should report nothing")
	}
	if captured != nil {
		t.Fatal("handler called for nil error")
	}

	base := stderrors.New("missing")
	err := ReportError("op", KindResolve, base)
	if !stderrors.Is(err, base) {
		t.Errorf("returned error %v should wrap base", err)
	}
	if captured == nil || captured.Kind != KindResolve {
		t.Errorf("captured = %+v", captured)
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	prev := SetHandler(&testHandler{onPanic: func(err *PanicError) { captured = err }})
	defer SetHandler(prev)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Value != "intentional test panic" {
		t.Errorf("Value = %v", captured.Value)
	}
	if captured.Op != "test.recover" {
		t.Errorf("Op = %q", captured.Op)
	}
	if captured.StackTrace == "" {
		t.Error("expected stack trace")
	}
}

func TestSetHandlerNil(t *testing.T) {
	prev := SetHandler(nil)
	defer SetHandler(prev)
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", DefaultHandler)
	}
}

func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Out: &buf}
	h.HandleError(&DriftError{Op: "switcher.UpdateContent", Kind: KindResolve, Err: stderrors.New("unknown id 7")})
	h.HandlePanic(&PanicError{Op: "scheduler.frame", Value: "oops"})

	out := buf.String()
	for _, want := range []string{
		"[drift error] switcher.UpdateContent: unknown id 7",
		"[drift panic] scheduler.frame: oops",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestLogHandlerVerbose(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Out: &buf, Verbose: true}
	h.HandleError(&DriftError{Op: "op", Kind: KindConfig, Err: stderrors.New("x"), StackTrace: "frame"})
	if !strings.Contains(buf.String(), "[config]") || !strings.Contains(buf.String(), "Stack trace:") {
		t.Errorf("verbose output = %q", buf.String())
	}
}
