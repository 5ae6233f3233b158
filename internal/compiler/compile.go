package compiler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/glint/internal/grammar"
	"github.com/dshills/glint/internal/matcher"
	"github.com/dshills/glint/internal/regex"
)

const (
	// emptyMatch matches the empty string anywhere.
	emptyMatch = `\B|\b`

	defaultKeywordPattern = `\w+`
)

// functionWords are keywords too common to say anything about the language;
// they score nothing unless given an explicit weight.
var functionWords = map[string]bool{
	"of": true, "and": true, "for": true, "in": true, "not": true, "or": true,
	"if": true, "then": true, "parent": true, "list": true, "value": true,
}

// Options tunes compilation.
type Options struct {
	// Deprecated is called when the grammar uses a deprecated feature.
	Deprecated func(feature, message string)
}

type compiler struct {
	def   *grammar.Language
	flags regex.Flags
	opts  Options
	lang  *Language

	// defs holds the normalized definition of every compiled mode.
	defs []*grammar.Mode

	// memo maps definitions that do not depend on their parent to the
	// modes compiled from them, so shared definitions compile once.
	memo map[*grammar.Mode][]ModeID

	// active maps the definitions on the current compilation path to
	// their modes; a definition that contains itself reuses them.
	active map[*grammar.Mode][]ModeID
}

// Compile turns a language definition into its compiled form. The
// definition is not modified.
func Compile(def *grammar.Language, opts Options) (*Language, error) {
	lang := &Language{
		Name:             def.Name,
		CaseInsensitive:  def.CaseInsensitive,
		ClassNameAliases: make(map[string]string, len(def.ClassNameAliases)),
	}
	for k, v := range def.ClassNameAliases {
		lang.ClassNameAliases[k] = v
	}
	c := &compiler{
		def:    def,
		flags:  def.Flags(),
		opts:   opts,
		lang:   lang,
		memo:   make(map[*grammar.Mode][]ModeID),
		active: make(map[*grammar.Mode][]ModeID),
	}

	for _, ch := range def.Contains {
		if grammar.IsSelf(ch) {
			return nil, &GrammarError{Language: def.Name, Message: "self is not supported at the top level of a language"}
		}
	}

	root := c.reserve()
	if err := c.prepare(root, &def.Mode, NoMode); err != nil {
		return nil, err
	}
	if err := c.link(root); err != nil {
		return nil, err
	}
	return lang, nil
}

func (c *compiler) reserve() ModeID {
	id := ModeID(len(c.lang.Modes))
	c.lang.Modes = append(c.lang.Modes, &Mode{ID: id, Parent: NoMode, Starts: NoMode})
	c.defs = append(c.defs, nil)
	return id
}

func (c *compiler) errorf(cm *Mode, err error, format string, args ...any) error {
	return &GrammarError{
		Language: c.lang.Name,
		Path:     cm.Path,
		Message:  fmt.Sprintf(format, args...),
		Err:      err,
	}
}

// prepare normalizes def into mode id and compiles everything except the
// references to other modes. Children only need the patterns set here, so
// a mode can be referenced before it is linked.
func (c *compiler) prepare(id ModeID, def *grammar.Mode, parent ModeID) error {
	cm := c.lang.Modes[id]
	cm.Parent = parent

	var pm *Mode
	var parentDef *grammar.Mode
	if parent != NoMode {
		pm = c.lang.Modes[parent]
		parentDef = c.defs[parent]
		cm.Path = append(append([]string(nil), pm.Path...), label(def))
	}

	m, err := c.normalize(cm, def, parentDef, parent != NoMode)
	if err != nil {
		return err
	}
	c.defs[id] = m

	cm.Scope = m.Scope
	cm.Relevance = *m.Relevance
	cm.SubLanguage = m.SubLanguage
	cm.ExcludeBegin = m.ExcludeBegin
	cm.ExcludeEnd = m.ExcludeEnd
	cm.ReturnBegin = m.ReturnBegin
	cm.ReturnEnd = m.ReturnEnd
	cm.Skip = m.Skip
	cm.EndsParent = m.EndsParent
	cm.EndsWithParent = m.EndsWithParent
	cm.OnBegin = m.OnBegin
	cm.OnEnd = m.OnEnd

	if m.Keywords != nil {
		if cm.Keywords, err = c.keywords(m.Keywords); err != nil {
			return c.errorf(cm, err, "invalid keywords")
		}
		pattern := m.Keywords.Pattern
		if pattern == "" {
			pattern = defaultKeywordPattern
		}
		if cm.KeywordRe, err = regex.Compile(pattern, c.flags); err != nil {
			return c.errorf(cm, err, "invalid keyword pattern")
		}
	}

	if pm != nil {
		cm.Begin = m.Begin.Source
		if cm.Begin == "" {
			cm.Begin = emptyMatch
		}
		if _, err := regex.Compile(cm.Begin, c.flags); err != nil {
			return c.errorf(cm, err, "invalid begin")
		}

		end := m.End.Source
		if end == "" && !m.EndsWithParent {
			end = emptyMatch
		}
		if end != "" {
			if cm.EndRe, err = regex.Compile(end, c.flags); err != nil {
				return c.errorf(cm, err, "invalid end")
			}
		}
		cm.Terminator = end
		if m.EndsWithParent && pm.Terminator != "" {
			if end != "" {
				cm.Terminator += "|"
			}
			cm.Terminator += pm.Terminator
		}
	}

	if m.Illegal.Source != "" {
		cm.Illegal = m.Illegal.Source
		if _, err := regex.Compile(cm.Illegal, c.flags); err != nil {
			return c.errorf(cm, err, "invalid illegal pattern")
		}
	}
	return nil
}

// link compiles the children and the starts mode of id and builds its
// matcher.
func (c *compiler) link(id ModeID) error {
	cm := c.lang.Modes[id]
	m := c.defs[id]

	var rules []matcher.Rule[ModeID]
	for _, ch := range m.Contains {
		if grammar.IsSelf(ch) {
			rules = append(rules, matcher.Rule[ModeID]{Kind: matcher.Begin, Pattern: cm.Begin, Value: id})
			continue
		}
		sub, ok := ch.(*grammar.Mode)
		if !ok || sub == nil {
			return c.errorf(cm, nil, "contains an invalid entry %v", ch)
		}
		ids, err := c.child(sub, id)
		if err != nil {
			return err
		}
		for _, cid := range ids {
			rules = append(rules, matcher.Rule[ModeID]{Kind: matcher.Begin, Pattern: c.lang.Modes[cid].Begin, Value: cid})
		}
	}

	if m.Starts != nil {
		ids, err := c.child(m.Starts, cm.Parent)
		if err != nil {
			return err
		}
		if len(ids) != 1 {
			return c.errorf(cm, nil, "starts mode cannot declare variants")
		}
		cm.Starts = ids[0]
	}

	if cm.Terminator != "" {
		rules = append(rules, matcher.Rule[ModeID]{Kind: matcher.End, Pattern: cm.Terminator, Value: id})
	}
	if cm.Illegal != "" {
		rules = append(rules, matcher.Rule[ModeID]{Kind: matcher.Illegal, Pattern: cm.Illegal, Value: id})
	}

	set, err := matcher.NewSet(rules, c.flags)
	if err != nil {
		return c.errorf(cm, err, "building matcher")
	}
	cm.Matcher = set
	return nil
}

// child compiles def, expanded into its variants, under parent.
func (c *compiler) child(def *grammar.Mode, parent ModeID) ([]ModeID, error) {
	if ids, ok := c.active[def]; ok {
		return ids, nil
	}
	independent := !dependsOnParent(def, make(map[*grammar.Mode]bool))
	if independent {
		if ids, ok := c.memo[def]; ok {
			return ids, nil
		}
	}

	expanded := []*grammar.Mode{def}
	if len(def.Variants) > 0 {
		expanded = make([]*grammar.Mode, len(def.Variants))
		for i, v := range def.Variants {
			expanded[i] = grammar.Inherit(def, v)
		}
	}

	ids := make([]ModeID, len(expanded))
	for i := range expanded {
		ids[i] = c.reserve()
	}
	c.active[def] = ids
	defer delete(c.active, def)
	if independent {
		c.memo[def] = ids
	}

	for i, m := range expanded {
		if err := c.prepare(ids[i], m, parent); err != nil {
			return nil, err
		}
	}
	for _, id := range ids {
		if err := c.link(id); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// dependsOnParent reports whether compiling def needs its parent's
// terminator.
func dependsOnParent(def *grammar.Mode, seen map[*grammar.Mode]bool) bool {
	if def == nil || seen[def] {
		return false
	}
	seen[def] = true
	if def.EndsWithParent {
		return true
	}
	for _, v := range def.Variants {
		if v.EndsWithParent {
			return true
		}
	}
	return dependsOnParent(def.Starts, seen)
}

// normalize expands the shorthand fields of def into a new definition.
func (c *compiler) normalize(cm *Mode, def *grammar.Mode, parentDef *grammar.Mode, hasParent bool) (*grammar.Mode, error) {
	m := *def

	if m.ClassName != "" {
		c.deprecated("className", "className is deprecated, use scope")
		if m.Scope == "" {
			m.Scope = m.ClassName
		}
		m.ClassName = ""
	}

	if !m.Match.IsZero() {
		if !m.Begin.IsZero() || !m.End.IsZero() {
			return nil, c.errorf(cm, nil, "begin & end are not supported with match")
		}
		m.Begin = m.Match
		m.Match = grammar.Pattern{}
	}

	if m.BeforeMatch != "" {
		if m.Starts != nil {
			return nil, c.errorf(cm, nil, "beforeMatch cannot be used with starts")
		}
		inner := m
		inner.BeforeMatch = ""
		inner.EndsParent = true
		m = grammar.Mode{
			Keywords:  inner.Keywords,
			Begin:     grammar.Re(regex.Concat(def.BeforeMatch, regex.Lookahead(joined(inner.Begin)))),
			Starts:    &grammar.Mode{Relevance: grammar.Relevance(0), Contains: []grammar.Child{&inner}},
			Relevance: grammar.Relevance(0),
		}
	}

	if m.Begin.IsMulti() {
		if m.Skip || m.ExcludeBegin || m.ReturnBegin {
			return nil, c.errorf(cm, nil, "skip, excludeBegin, returnBegin not compatible with beginScope")
		}
		if m.BeginScope.Groups == nil {
			return nil, c.errorf(cm, nil, "beginScope must map fragment numbers to scopes when begin is a list")
		}
		groups, err := groupScopes(m.Begin.Parts, m.BeginScope.Groups)
		if err != nil {
			return nil, c.errorf(cm, err, "invalid begin")
		}
		cm.BeginScope = Scope{Groups: groups}
		m.Begin = grammar.Re(joined(m.Begin))
	} else {
		cm.BeginScope = Scope{Wrap: m.BeginScope.Wrap}
	}

	if m.End.IsMulti() {
		if m.Skip || m.ExcludeEnd || m.ReturnEnd {
			return nil, c.errorf(cm, nil, "skip, excludeEnd, returnEnd not compatible with endScope")
		}
		if m.EndScope.Groups == nil {
			return nil, c.errorf(cm, nil, "endScope must map fragment numbers to scopes when end is a list")
		}
		groups, err := groupScopes(m.End.Parts, m.EndScope.Groups)
		if err != nil {
			return nil, c.errorf(cm, err, "invalid end")
		}
		cm.EndScope = Scope{Groups: groups}
		m.End = grammar.Re(joined(m.End))
	} else {
		cm.EndScope = Scope{Wrap: m.EndScope.Wrap}
	}

	for _, ext := range c.def.Extensions {
		ext(&m, parentDef)
	}

	if hasParent && m.BeginKeywords != "" {
		words := strings.Fields(m.BeginKeywords)
		m.Begin = grammar.Re(`\b(` + strings.Join(words, "|") + `)(?!\.)(?=\b|\s)`)
		cm.GuardDot = true
		if m.Keywords == nil {
			m.Keywords = grammar.KeywordList(m.BeginKeywords)
		}
		if m.Relevance == nil {
			m.Relevance = grammar.Relevance(0)
		}
		m.BeginKeywords = ""
	}

	if m.Illegal.IsMulti() {
		m.Illegal = grammar.Re(regex.Either(m.Illegal.Parts...))
	}

	if m.Relevance == nil {
		m.Relevance = grammar.Relevance(1)
	}
	return &m, nil
}

func (c *compiler) deprecated(feature, msg string) {
	if c.opts.Deprecated != nil {
		c.opts.Deprecated(feature, msg)
	}
}

func joined(p grammar.Pattern) string {
	if p.IsMulti() {
		return regex.Join(p.Parts, "")
	}
	return p.Source
}

// groupScopes maps fragment numbers of a multi-fragment pattern to group
// numbers of the joined pattern.
func groupScopes(parts []string, scopes map[int]string) ([]GroupScope, error) {
	out := make([]GroupScope, 0, len(parts))
	offset := 0
	for i := 1; i <= len(parts); i++ {
		out = append(out, GroupScope{Group: i + offset, Scope: scopes[i]})
		n, err := regex.CountGroups(parts[i-1])
		if err != nil {
			return nil, err
		}
		offset += n
	}
	return out, nil
}

func (c *compiler) keywords(kw *grammar.Keywords) (map[string]Keyword, error) {
	categories := keywordOrder(kw)

	out := make(map[string]Keyword)
	for _, cat := range categories {
		for _, entry := range kw.Categories[cat] {
			word, weight, err := parseKeyword(entry)
			if err != nil {
				return nil, err
			}
			if word == "" {
				continue
			}
			if c.def.CaseInsensitive {
				word = strings.ToLower(word)
			}
			out[word] = Keyword{Category: cat, Weight: weight}
		}
	}
	return out, nil
}

// keywordOrder lists the undeclared categories sorted, then the declared
// ones in order, so a later declaration wins a shared word.
func keywordOrder(kw *grammar.Keywords) []string {
	var declared, rest []string
	seen := make(map[string]bool, len(kw.Categories))
	for _, cat := range kw.Order {
		if _, ok := kw.Categories[cat]; ok && !seen[cat] {
			seen[cat] = true
			declared = append(declared, cat)
		}
	}
	for cat := range kw.Categories {
		if !seen[cat] {
			rest = append(rest, cat)
		}
	}
	sort.Strings(rest)
	return append(rest, declared...)
}

// parseKeyword splits "word|weight". A word without a numeric weight
// scores 1, or 0 when it is a function word.
func parseKeyword(entry string) (string, int, error) {
	if i := strings.LastIndexByte(entry, '|'); i > 0 {
		if n, err := strconv.Atoi(entry[i+1:]); err == nil {
			if n < 0 {
				return "", 0, fmt.Errorf("keyword %q has a negative weight", entry)
			}
			return entry[:i], n, nil
		}
	}
	if functionWords[entry] {
		return entry, 0, nil
	}
	return entry, 1, nil
}

func label(m *grammar.Mode) string {
	switch {
	case m.Scope != "":
		return m.Scope
	case m.ClassName != "":
		return m.ClassName
	case !m.Begin.IsZero():
		return m.Begin.String()
	case !m.Match.IsZero():
		return m.Match.String()
	case m.BeginKeywords != "":
		return m.BeginKeywords
	}
	return "<anonymous>"
}
