package lua

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/glint/internal/emitter"
	"github.com/dshills/glint/internal/logging"
)

// blockedGlobals are removed from every state. They load code from disk
// or strings, which would escape the sandbox.
var blockedGlobals = []string{
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"require",
	"module",
}

// installSandbox removes the blocked globals.
func installSandbox(L *lua.LState) {
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}

// installModule exposes the glint helper table.
func installModule(L *lua.LState, logger *logging.Logger) {
	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"escape": func(L *lua.LState) int {
			L.Push(lua.LString(emitter.EscapeHTML(L.CheckString(1))))
			return 1
		},
		"log": func(L *lua.LState) int {
			logger.Info("%s", L.CheckString(1))
			return 0
		},
	})
	L.SetGlobal("glint", mod)
}
