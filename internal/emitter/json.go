package emitter

import (
	"encoding/json"
)

// jsonNode is the serialized form of a Node; text children are strings.
type jsonNode struct {
	Scope    string `json:"scope,omitempty"`
	Children []any  `json:"children"`
}

func toJSON(n *Node) jsonNode {
	out := jsonNode{Scope: n.Scope, Children: make([]any, 0, len(n.Children))}
	for _, it := range n.Children {
		switch c := it.(type) {
		case Text:
			out.Children = append(out.Children, string(c))
		case *Node:
			out.Children = append(out.Children, toJSON(c))
		}
	}
	return out
}

// MarshalJSON encodes the tree as nested {"scope", "children"} objects.
func (t *TokenTree) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSON(t.root))
}
