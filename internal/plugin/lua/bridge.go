package lua

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/glint/internal/emitter"
	"github.com/dshills/glint/internal/highlight"
)

// Hook table fields.
const (
	fieldCode      = "code"
	fieldLanguage  = "language"
	fieldValue     = "value"
	fieldRelevance = "relevance"
	fieldIllegal   = "illegal"
)

// contextTable builds the table handed to before_highlight.
func contextTable(L *lua.LState, ctx *highlight.BeforeHighlightContext) *lua.LTable {
	t := L.NewTable()
	t.RawSetString(fieldCode, lua.LString(ctx.Code))
	t.RawSetString(fieldLanguage, lua.LString(ctx.Language))
	return t
}

// applyContext copies the script's changes back. A string value
// short-circuits highlighting with an unscoped result.
func applyContext(t *lua.LTable, ctx *highlight.BeforeHighlightContext) {
	if s, ok := t.RawGetString(fieldCode).(lua.LString); ok {
		ctx.Code = string(s)
	}
	if s, ok := t.RawGetString(fieldLanguage).(lua.LString); ok {
		ctx.Language = string(s)
	}
	if s, ok := t.RawGetString(fieldValue).(lua.LString); ok {
		tree := emitter.New()
		tree.AddText(ctx.Code)
		tree.Finalize()
		ctx.Result = &highlight.Result{
			Language: ctx.Language,
			Value:    string(s),
			Code:     ctx.Code,
			Tree:     tree,
		}
	}
}

// resultTable builds the table handed to after_highlight.
func resultTable(L *lua.LState, res *highlight.Result) *lua.LTable {
	t := L.NewTable()
	t.RawSetString(fieldLanguage, lua.LString(res.Language))
	t.RawSetString(fieldRelevance, lua.LNumber(res.Relevance))
	t.RawSetString(fieldValue, lua.LString(res.Value))
	t.RawSetString(fieldIllegal, lua.LBool(res.Illegal))
	t.RawSetString(fieldCode, lua.LString(res.Code))
	return t
}

// applyResult copies a changed value back.
func applyResult(t *lua.LTable, res *highlight.Result) {
	if s, ok := t.RawGetString(fieldValue).(lua.LString); ok {
		res.Value = string(s)
	}
}
