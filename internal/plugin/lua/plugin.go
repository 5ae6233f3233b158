package lua

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/glint/internal/highlight"
)

// Hook function names a script may define.
const (
	HookBefore = "before_highlight"
	HookAfter  = "after_highlight"
)

// Plugin is a loaded hook script.
type Plugin struct {
	name   string
	state  *State
	before bool
	after  bool
}

// Load reads and runs the script at path.
func Load(path string, opts ...StateOption) (*Plugin, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plugin: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return LoadString(name, string(src), opts...)
}

// LoadString runs src as the script of a plugin called name.
func LoadString(name, src string, opts ...StateOption) (*Plugin, error) {
	state := NewState(opts...)
	if err := state.DoString(name, src); err != nil {
		state.Close()
		return nil, fmt.Errorf("plugin %s: %w", name, err)
	}

	p := &Plugin{
		name:   name,
		state:  state,
		before: state.HasFunction(HookBefore),
		after:  state.HasFunction(HookAfter),
	}
	if !p.before && !p.after {
		state.Close()
		return nil, fmt.Errorf("plugin %s: %w", name, ErrNoHooks)
	}
	return p, nil
}

// Name returns the plugin name, the script's base name for Load.
func (p *Plugin) Name() string {
	return p.name
}

// Hooks adapts the script to the highlighter's plugin contract.
func (p *Plugin) Hooks() highlight.Plugin {
	hp := highlight.Plugin{Name: p.name}
	if p.before {
		hp.BeforeHighlight = p.beforeHighlight
	}
	if p.after {
		hp.AfterHighlight = p.afterHighlight
	}
	return hp
}

func (p *Plugin) beforeHighlight(ctx *highlight.BeforeHighlightContext) error {
	var t *lua.LTable
	_, err := p.state.Call(HookBefore, func(L *lua.LState) lua.LValue {
		t = contextTable(L, ctx)
		return t
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", p.name, HookBefore, err)
	}
	applyContext(t, ctx)
	return nil
}

func (p *Plugin) afterHighlight(res *highlight.Result) error {
	var t *lua.LTable
	_, err := p.state.Call(HookAfter, func(L *lua.LState) lua.LValue {
		t = resultTable(L, res)
		return t
	})
	if err != nil {
		return fmt.Errorf("%s %s: %w", p.name, HookAfter, err)
	}
	applyResult(t, res)
	return nil
}

// Close releases the script's state.
func (p *Plugin) Close() {
	p.state.Close()
}

// Set is a group of plugins attached to one highlighter.
type Set struct {
	h       *highlight.Highlighter
	plugins []*Plugin
	ids     []highlight.PluginID
}

// LoadAll loads every script and adds it to h in order. On failure the
// plugins already added are removed.
func LoadAll(h *highlight.Highlighter, paths []string, opts ...StateOption) (*Set, error) {
	s := &Set{h: h}
	for _, path := range paths {
		p, err := Load(path, opts...)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.plugins = append(s.plugins, p)
		s.ids = append(s.ids, h.AddPlugin(p.Hooks()))
	}
	return s, nil
}

// Names lists the loaded plugins.
func (s *Set) Names() []string {
	names := make([]string, len(s.plugins))
	for i, p := range s.plugins {
		names[i] = p.Name()
	}
	return names
}

// Close removes the plugins from the highlighter and releases them.
func (s *Set) Close() {
	for _, id := range s.ids {
		s.h.RemovePlugin(id)
	}
	for _, p := range s.plugins {
		p.Close()
	}
	s.ids, s.plugins = nil, nil
}
