package grammar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DecodeError reports a malformed grammar document.
type DecodeError struct {
	Source  string
	Line    int
	Column  int
	Message string
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("grammar %s:%d:%d: %s", e.Source, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("grammar %s: %s", e.Source, e.Message)
}

// ParseYAML decodes a language from a YAML document.
//
// The document is a mode mapping with the language fields added at the top
// level. Keys use the conventional camelCase names (begin, end, contains,
// excludeBegin, ...). Besides mappings, contains entries may be the string
// "self" or the name of a common mode such as "C_LINE_COMMENT_MODE". Pattern
// strings may interpolate "{{NAME}}", where NAME is declared under
// "constants" or is a common pattern such as "IDENT_RE". YAML anchors share
// a mode between several places; "definitions" is an ignored key meant for
// holding them.
func ParseYAML(source string, data []byte) (*Language, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &DecodeError{Source: source, Message: err.Error()}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &DecodeError{Source: source, Message: "empty document"}
	}
	d := &decoder{
		source:    source,
		constants: make(map[string]string),
		modes:     make(map[*yaml.Node]*Mode),
		common:    make(map[string]*Mode),
	}
	return d.language(resolve(doc.Content[0]))
}

type decoder struct {
	source    string
	constants map[string]string
	modes     map[*yaml.Node]*Mode
	common    map[string]*Mode
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...any) error {
	e := &DecodeError{Source: d.source, Message: fmt.Sprintf(format, args...)}
	if n != nil {
		e.Line, e.Column = n.Line, n.Column
	}
	return e
}

func (d *decoder) language(n *yaml.Node) (*Language, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "language must be a mapping")
	}
	// Constants first so patterns anywhere in the document can use them.
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value != "constants" {
			continue
		}
		if err := d.decodeConstants(resolve(n.Content[i+1])); err != nil {
			return nil, err
		}
	}

	lang := &Language{}
	d.modes[n] = &lang.Mode
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], resolve(n.Content[i+1])
		var err error
		switch key.Value {
		case "constants", "definitions":
		case "name":
			lang.Name, err = d.str(val)
		case "aliases":
			lang.Aliases, err = d.strList(val)
		case "caseInsensitive":
			err = val.Decode(&lang.CaseInsensitive)
		case "unicodeRegex":
			err = val.Decode(&lang.UnicodeRegex)
		case "disableAutodetect":
			err = val.Decode(&lang.DisableAutodetect)
		case "supersetOf":
			lang.SupersetOf, err = d.str(val)
		case "classNameAliases":
			err = val.Decode(&lang.ClassNameAliases)
		default:
			err = d.field(&lang.Mode, key, val)
		}
		if err != nil {
			return nil, d.wrap(val, err)
		}
	}
	if lang.Name == "" {
		return nil, d.errorf(n, "language has no name")
	}
	return lang, nil
}

func (d *decoder) wrap(n *yaml.Node, err error) error {
	if _, ok := err.(*DecodeError); ok {
		return err
	}
	return d.errorf(n, "%v", err)
}

func (d *decoder) decodeConstants(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return d.errorf(n, "constants must be a mapping")
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		// Constants may build on earlier ones.
		v, err := d.pattern(resolve(n.Content[i+1]))
		if err != nil {
			return err
		}
		d.constants[n.Content[i].Value] = v
	}
	return nil
}

func (d *decoder) mode(n *yaml.Node) (*Mode, error) {
	n = resolve(n)
	if m, ok := d.modes[n]; ok {
		return m, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "mode must be a mapping")
	}
	m := &Mode{}
	d.modes[n] = m
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := d.field(m, n.Content[i], resolve(n.Content[i+1])); err != nil {
			return nil, d.wrap(n.Content[i+1], err)
		}
	}
	return m, nil
}

func (d *decoder) child(n *yaml.Node) (Child, error) {
	n = resolve(n)
	if n.Kind != yaml.ScalarNode {
		return d.mode(n)
	}
	if n.Value == "self" {
		return Self, nil
	}
	if m, ok := d.common[n.Value]; ok {
		return m, nil
	}
	m, ok := CommonMode(n.Value)
	if !ok {
		return nil, d.errorf(n, "unknown mode %q", n.Value)
	}
	d.common[n.Value] = m
	return m, nil
}

func (d *decoder) field(m *Mode, key, val *yaml.Node) error {
	var err error
	switch key.Value {
	case "scope":
		if val.Kind == yaml.MappingNode {
			m.BeginScope.Groups, err = d.groups(val)
		} else {
			m.Scope, err = d.str(val)
		}
	case "className":
		m.ClassName, err = d.str(val)
	case "begin":
		m.Begin, err = d.patternList(val)
	case "end":
		m.End, err = d.patternList(val)
	case "match":
		m.Match, err = d.patternList(val)
	case "illegal":
		m.Illegal, err = d.patternList(val)
	case "beginKeywords":
		m.BeginKeywords, err = d.str(val)
	case "beforeMatch":
		m.BeforeMatch, err = d.pattern(val)
	case "beginScope":
		m.BeginScope, err = d.scopeSpec(val)
	case "endScope":
		m.EndScope, err = d.scopeSpec(val)
	case "keywords":
		m.Keywords, err = d.keywords(val)
	case "relevance":
		var r int
		err = val.Decode(&r)
		m.Relevance = Relevance(r)
	case "contains":
		if val.Kind != yaml.SequenceNode {
			return d.errorf(val, "contains must be a list")
		}
		m.Contains = make([]Child, 0, len(val.Content))
		for _, item := range val.Content {
			c, err := d.child(item)
			if err != nil {
				return err
			}
			m.Contains = append(m.Contains, c)
		}
	case "variants":
		if val.Kind != yaml.SequenceNode {
			return d.errorf(val, "variants must be a list")
		}
		for _, item := range val.Content {
			v, err := d.mode(item)
			if err != nil {
				return err
			}
			m.Variants = append(m.Variants, v)
		}
	case "starts":
		m.Starts, err = d.mode(val)
	case "subLanguage":
		m.SubLanguage = &SubLanguage{}
		if val.Kind == yaml.SequenceNode {
			m.SubLanguage.Candidates, err = d.strList(val)
		} else {
			m.SubLanguage.Name, err = d.str(val)
		}
	case "excludeBegin":
		err = val.Decode(&m.ExcludeBegin)
	case "excludeEnd":
		err = val.Decode(&m.ExcludeEnd)
	case "returnBegin":
		err = val.Decode(&m.ReturnBegin)
	case "returnEnd":
		err = val.Decode(&m.ReturnEnd)
	case "skip":
		err = val.Decode(&m.Skip)
	case "endsParent":
		err = val.Decode(&m.EndsParent)
	case "endsWithParent":
		err = val.Decode(&m.EndsWithParent)
	case "endSameAsBegin":
		var on bool
		if err = val.Decode(&on); err == nil && on {
			EndSameAsBegin(m)
		}
	case "onlyAtStart":
		var on bool
		if err = val.Decode(&on); err == nil && on {
			m.OnBegin = Shebang("").OnBegin
		}
	default:
		return d.errorf(key, "unknown field %q", key.Value)
	}
	return err
}

func (d *decoder) str(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", d.errorf(n, "expected a string")
	}
	return n.Value, nil
}

func (d *decoder) strList(n *yaml.Node) ([]string, error) {
	if n.Kind == yaml.ScalarNode {
		return strings.Fields(n.Value), nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, d.errorf(n, "expected a list of strings")
	}
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		s, err := d.str(resolve(item))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

var placeholder = regexp.MustCompile(`\{\{([A-Za-z_][A-Za-z0-9_]*)\}\}`)

func (d *decoder) pattern(n *yaml.Node) (string, error) {
	s, err := d.str(n)
	if err != nil {
		return "", err
	}
	var missing string
	out := placeholder.ReplaceAllStringFunc(s, func(ref string) string {
		name := ref[2 : len(ref)-2]
		if v, ok := d.constants[name]; ok {
			return v
		}
		if v, ok := CommonPattern(name); ok {
			return v
		}
		missing = name
		return ref
	})
	if missing != "" {
		return "", d.errorf(n, "undefined constant %q", missing)
	}
	return out, nil
}

func (d *decoder) patternList(n *yaml.Node) (Pattern, error) {
	if n.Kind != yaml.SequenceNode {
		src, err := d.pattern(n)
		return Re(src), err
	}
	parts := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		src, err := d.pattern(resolve(item))
		if err != nil {
			return Pattern{}, err
		}
		parts = append(parts, src)
	}
	return Seq(parts...), nil
}

func (d *decoder) groups(n *yaml.Node) (map[int]string, error) {
	out := make(map[int]string, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		idx, err := strconv.Atoi(n.Content[i].Value)
		if err != nil || idx < 1 {
			return nil, d.errorf(n.Content[i], "scope group %q is not a positive number", n.Content[i].Value)
		}
		out[idx] = resolve(n.Content[i+1]).Value
	}
	return out, nil
}

func (d *decoder) scopeSpec(n *yaml.Node) (ScopeSpec, error) {
	if n.Kind == yaml.MappingNode {
		g, err := d.groups(n)
		return ScopeSpec{Groups: g}, err
	}
	s, err := d.str(n)
	return ScopeSpec{Wrap: s}, err
}

func (d *decoder) keywords(n *yaml.Node) (*Keywords, error) {
	kw := &Keywords{Categories: make(map[string][]string)}
	switch n.Kind {
	case yaml.ScalarNode, yaml.SequenceNode:
		words, err := d.strList(n)
		if err != nil {
			return nil, err
		}
		kw.Categories["keyword"] = words
		kw.Order = []string{"keyword"}
		return kw, nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i].Value, resolve(n.Content[i+1])
			if key == "$pattern" {
				p, err := d.pattern(val)
				if err != nil {
					return nil, err
				}
				kw.Pattern = p
				continue
			}
			words, err := d.strList(val)
			if err != nil {
				return nil, err
			}
			if _, seen := kw.Categories[key]; !seen {
				kw.Order = append(kw.Order, key)
			}
			kw.Categories[key] = words
		}
		return kw, nil
	}
	return nil, d.errorf(n, "keywords must be a string, a list or a mapping")
}
