// Package lua runs highlight hooks written in Lua.
//
// A hook script defines one or both global functions:
//
//	function before_highlight(ctx)
//	    -- ctx.code and ctx.language may be changed; setting ctx.value
//	    -- skips highlighting and uses the value as the rendered markup.
//	end
//
//	function after_highlight(result)
//	    -- result.language, result.relevance, result.illegal and
//	    -- result.code are informational; result.value may be changed.
//	end
//
// Scripts run in a sandbox: only the base, table, string and math
// libraries are opened, and dofile, loadfile, load, loadstring and
// require are removed. A glint module offers escape(s) and log(msg).
// Every hook call is bounded by a timeout.
//
//	p, err := lua.Load("hooks/wrap.lua", lua.WithTimeout(time.Second))
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//	id := h.AddPlugin(p.Hooks())
package lua
