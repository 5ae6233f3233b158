package emitter

// Visitor receives the tree depth-first.
type Visitor interface {
	AddText(text string)
	OpenNode(n *Node)
	CloseNode(n *Node)
}

// Walk visits every node below the root in document order. The root
// itself is not opened.
func (t *TokenTree) Walk(v Visitor) {
	walkChildren(v, t.root)
}

func walkChildren(v Visitor, n *Node) {
	for _, it := range n.Children {
		switch c := it.(type) {
		case Text:
			v.AddText(string(c))
		case *Node:
			v.OpenNode(c)
			walkChildren(v, c)
			v.CloseNode(c)
		}
	}
}
