package highlight

import (
	"github.com/google/uuid"
)

// BeforeHighlightContext is handed to BeforeHighlight hooks. Hooks may
// change Code and Language, or set Result to skip scanning.
type BeforeHighlightContext struct {
	Code     string
	Language string
	Result   *Result
}

// Plugin hooks into every Highlight call. Either hook may be nil.
type Plugin struct {
	Name            string
	BeforeHighlight func(ctx *BeforeHighlightContext) error
	AfterHighlight  func(res *Result) error
}

// PluginID identifies an added plugin.
type PluginID = uuid.UUID

type registeredPlugin struct {
	id     PluginID
	plugin Plugin
}

// AddPlugin adds a plugin. Plugins run in the order they were added.
func (h *Highlighter) AddPlugin(p Plugin) PluginID {
	id := uuid.New()
	h.mu.Lock()
	defer h.mu.Unlock()
	h.plugins = append(h.plugins, registeredPlugin{id: id, plugin: p})
	return id
}

// RemovePlugin removes a plugin. It reports whether the plugin was found.
func (h *Highlighter) RemovePlugin(id PluginID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, rp := range h.plugins {
		if rp.id == id {
			h.plugins = append(h.plugins[:i:i], h.plugins[i+1:]...)
			return true
		}
	}
	return false
}

func (h *Highlighter) pluginSnapshot() []registeredPlugin {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]registeredPlugin(nil), h.plugins...)
}

// fireBefore runs the BeforeHighlight hooks. A failing hook is logged in
// safe mode and returned in debug mode.
func (h *Highlighter) fireBefore(ctx *BeforeHighlightContext) error {
	for _, rp := range h.pluginSnapshot() {
		if rp.plugin.BeforeHighlight == nil {
			continue
		}
		if err := rp.plugin.BeforeHighlight(ctx); err != nil {
			if err := h.pluginFailed(rp, "before:highlight", err); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Highlighter) fireAfter(res *Result) error {
	for _, rp := range h.pluginSnapshot() {
		if rp.plugin.AfterHighlight == nil {
			continue
		}
		if err := rp.plugin.AfterHighlight(res); err != nil {
			if err := h.pluginFailed(rp, "after:highlight", err); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Highlighter) pluginFailed(rp registeredPlugin, hook string, err error) error {
	if !h.Options().SafeMode {
		return err
	}
	h.logger().WithField("plugin", rp.plugin.Name).WithField("hook", hook).WithError(err).Error("plugin hook failed")
	return nil
}
