package lua

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/glint/internal/logging"
)

// DefaultTimeout bounds one hook call.
const DefaultTimeout = time.Second

// State wraps a sandboxed gopher-lua state.
//
// gopher-lua's LState is not goroutine-safe; every method takes the
// state's mutex.
type State struct {
	L *lua.LState

	mu      sync.Mutex
	timeout time.Duration
	logger  *logging.Logger
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithTimeout sets the per-call timeout. Zero disables it.
func WithTimeout(d time.Duration) StateOption {
	return func(s *State) {
		if d >= 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets the logger glint.log writes to.
func WithLogger(l *logging.Logger) StateOption {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewState creates a sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{
		timeout: DefaultTimeout,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	installSandbox(s.L)
	installModule(s.L, s.logger)
	return s
}

// openSafeLibraries opens only the Lua standard libraries hooks need.
// io, os, debug, channel, coroutine and package stay closed.
func openSafeLibraries(L *lua.LState) {
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		// Each opener leaves its module table on the stack.
		open(L)
		L.SetTop(0)
	}
}

// DoString runs a chunk.
func (s *State) DoString(name, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	fn, err := s.L.Load(strings.NewReader(code), name)
	if err != nil {
		return fmt.Errorf("compiling %s: %w", name, err)
	}
	return s.call(fn, 0, nil)
}

// HasFunction reports whether a global function is defined.
func (s *State) HasFunction(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	return s.L.GetGlobal(name).Type() == lua.LTFunction
}

// Call calls a global function with args, which build their Lua values
// from the state, and returns its first result.
func (s *State) Call(name string, args ...func(*lua.LState) lua.LValue) (lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fn, ok := s.L.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("function %q not found", name)
	}

	values := make([]lua.LValue, len(args))
	for i, build := range args {
		values[i] = build(s.L)
	}

	var ret lua.LValue = lua.LNil
	if err := s.call(fn, 1, values, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// call runs fn under the timeout. Callers hold mu. When ret is given it
// receives the first result.
func (s *State) call(fn *lua.LFunction, nret int, args []lua.LValue, ret ...*lua.LValue) (err error) {
	if s.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		s.L.SetContext(ctx)
		defer s.L.RemoveContext()
		defer func() {
			if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				err = fmt.Errorf("%w after %s", ErrExecutionTimeout, s.timeout)
			}
		}()
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	top := s.L.GetTop()
	s.L.Push(fn)
	for _, a := range args {
		s.L.Push(a)
	}
	if err := s.L.PCall(len(args), nret, nil); err != nil {
		s.L.SetTop(top)
		return err
	}
	if len(ret) > 0 && nret > 0 {
		*ret[0] = s.L.Get(top + 1)
	}
	s.L.SetTop(top)
	return nil
}

// Close releases the state.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.L.Close()
	s.closed = true
}

// IsClosed reports whether Close was called.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
