package lua

import (
	"errors"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"

	"github.com/dshills/glint/internal/logging"
)

func newTestState(t *testing.T, opts ...StateOption) *State {
	t.Helper()
	s := NewState(append([]StateOption{WithLogger(logging.Null())}, opts...)...)
	t.Cleanup(s.Close)
	return s
}

func TestNewStateEmptyStack(t *testing.T) {
	s := newTestState(t)
	if top := s.L.GetTop(); top != 0 {
		t.Errorf("stack top = %d after setup, want 0", top)
	}
	for _, lib := range []string{"string", "table", "math"} {
		if s.L.GetGlobal(lib) == glua.LNil {
			t.Errorf("library %s not opened", lib)
		}
	}
}

func TestStateDoString(t *testing.T) {
	s := newTestState(t)

	if err := s.DoString("test", `function double(x) return x * 2 end`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if !s.HasFunction("double") {
		t.Fatal("double not defined")
	}

	ret, err := s.Call("double", func(*glua.LState) glua.LValue { return glua.LNumber(21) })
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if ret != glua.LNumber(42) {
		t.Errorf("double(21) = %v, want 42", ret)
	}
	if top := s.L.GetTop(); top != 0 {
		t.Errorf("stack top = %d after call, want 0", top)
	}
}

func TestStateSyntaxError(t *testing.T) {
	s := newTestState(t)
	if err := s.DoString("bad", `function (`); err == nil {
		t.Error("expected syntax error")
	}
}

func TestStateRuntimeError(t *testing.T) {
	s := newTestState(t)
	if err := s.DoString("boom", `function boom() error("boom") end`); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Call("boom"); err == nil {
		t.Error("expected runtime error")
	}
	if _, err := s.Call("missing"); err == nil {
		t.Error("expected error calling undefined function")
	}
}

func TestStateSandbox(t *testing.T) {
	s := newTestState(t)

	for _, name := range []string{"io", "os", "debug", "package", "require", "dofile", "loadfile", "load", "loadstring"} {
		if v := s.L.GetGlobal(name); v != glua.LNil {
			t.Errorf("global %s = %v, want nil", name, v)
		}
	}
	for _, name := range []string{"string", "table", "math", "pairs", "glint"} {
		if v := s.L.GetGlobal(name); v == glua.LNil {
			t.Errorf("global %s missing", name)
		}
	}
}

func TestStateGlintModule(t *testing.T) {
	s := newTestState(t)
	src := `
function run()
  glint.log("hello")
  return glint.escape("<a & b>")
end`
	if err := s.DoString("mod", src); err != nil {
		t.Fatal(err)
	}
	ret, err := s.Call("run")
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if got := ret.String(); got != "&lt;a &amp; b&gt;" {
		t.Errorf("escape = %q", got)
	}
}

func TestStateTimeout(t *testing.T) {
	s := newTestState(t, WithTimeout(50*time.Millisecond))
	if err := s.DoString("spin", `function spin() while true do end end`); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	_, err := s.Call("spin")
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Fatalf("Call() error = %v, want ErrExecutionTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}

	// The state stays usable.
	if err := s.DoString("after", `x = 1`); err != nil {
		t.Errorf("DoString() after timeout = %v", err)
	}
}

func TestStateClosed(t *testing.T) {
	s := NewState(WithLogger(logging.Null()))
	s.Close()
	s.Close()

	if !s.IsClosed() {
		t.Error("IsClosed() = false after Close")
	}
	if err := s.DoString("x", `x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() = %v, want ErrStateClosed", err)
	}
	if _, err := s.Call("x"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Call() = %v, want ErrStateClosed", err)
	}
	if s.HasFunction("x") {
		t.Error("HasFunction() on closed state")
	}
}
