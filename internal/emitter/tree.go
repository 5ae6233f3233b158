// Package emitter builds the scope tree produced by a highlight run and
// renders it.
//
// The scanner drives a TokenTree with OpenNode, AddText and CloseNode
// events. Once finalized the tree is walked by a Visitor; HTMLRenderer is
// the visitor producing class-annotated markup.
package emitter

import (
	"strings"
)

// Item is a child of a Node: either a *Node or Text.
type Item interface {
	item()
}

// Text is a run of unscoped text.
type Text string

func (Text) item() {}

// Node is a scoped span of the tree.
type Node struct {
	// Scope is the scope name; empty for the root. Embedded languages use
	// "language:NAME".
	Scope    string
	Children []Item
}

func (*Node) item() {}

// LanguagePrefix marks the scope of an embedded language subtree.
const LanguagePrefix = "language:"

// TokenTree is the scope tree of one highlight run. It is not safe for
// concurrent use.
type TokenTree struct {
	root  *Node
	stack []*Node
}

// New returns an empty tree.
func New() *TokenTree {
	root := &Node{}
	return &TokenTree{root: root, stack: []*Node{root}}
}

// Root returns the root node.
func (t *TokenTree) Root() *Node {
	return t.root
}

// Top returns the innermost open node.
func (t *TokenTree) Top() *Node {
	return t.stack[len(t.stack)-1]
}

// Depth returns the number of open nodes, the root included.
func (t *TokenTree) Depth() int {
	return len(t.stack)
}

func (t *TokenTree) add(it Item) {
	top := t.Top()
	top.Children = append(top.Children, it)
}

// AddText appends text to the innermost open node, merging it with a
// preceding text child.
func (t *TokenTree) AddText(s string) {
	if s == "" {
		return
	}
	top := t.Top()
	if n := len(top.Children); n > 0 {
		if prev, ok := top.Children[n-1].(Text); ok {
			top.Children[n-1] = prev + Text(s)
			return
		}
	}
	top.Children = append(top.Children, Text(s))
}

// OpenNode starts a child scope of the innermost open node.
func (t *TokenTree) OpenNode(scope string) {
	n := &Node{Scope: scope}
	t.add(n)
	t.stack = append(t.stack, n)
}

// CloseNode ends the innermost open scope. The root is never closed.
func (t *TokenTree) CloseNode() {
	if len(t.stack) > 1 {
		t.stack = t.stack[:len(t.stack)-1]
	}
}

// CloseAllNodes ends every open scope.
func (t *TokenTree) CloseAllNodes() {
	t.stack = t.stack[:1]
}

// AddKeyword adds text as its own node with the given scope.
func (t *TokenTree) AddKeyword(text, scope string) {
	if text == "" {
		return
	}
	t.OpenNode(scope)
	t.AddText(text)
	t.CloseNode()
}

// AddSublanguage splices the tree of an embedded language into the
// innermost open node. With a language name the embedded root is scoped
// LanguagePrefix+name; otherwise its children are spliced unscoped.
func (t *TokenTree) AddSublanguage(sub *TokenTree, name string) {
	if name == "" {
		for _, it := range sub.root.Children {
			if txt, ok := it.(Text); ok {
				t.AddText(string(txt))
			} else {
				t.add(it)
			}
		}
		return
	}
	sub.root.Scope = LanguagePrefix + name
	t.add(sub.root)
}

// Finalize closes every open scope. The tree must not be modified after.
func (t *TokenTree) Finalize() {
	t.CloseAllNodes()
}

// PlainText returns the concatenated text of the tree.
func (t *TokenTree) PlainText() string {
	var b strings.Builder
	t.Walk(textCollector{&b})
	return b.String()
}

type textCollector struct {
	b *strings.Builder
}

func (c textCollector) AddText(s string) { c.b.WriteString(s) }
func (textCollector) OpenNode(*Node)     {}
func (textCollector) CloseNode(*Node)    {}
