// Package view turns a SampleSet into a tree of typed nodes and commits that
// tree to a display, replacing whatever was shown before.
package view

import "sort"

// Node is one element of the view tree. A node with an empty Tag is a text
// node holding Text.
type Node struct {
	Tag      string
	Attrs    map[string]string
	Children []*Node
	Text     string
}

// Element builds an element node.
func Element(tag string, attrs map[string]string, children ...*Node) *Node {
	return &Node{Tag: tag, Attrs: attrs, Children: children}
}

// TextNode builds a text node.
func TextNode(text string) *Node {
	return &Node{Text: text}
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n != nil && n.Tag == ""
}

// Attr returns the attribute value or "".
func (n *Node) Attr(name string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[name]
}

// Find returns every descendant (including n) matching the tag and class.
// An empty class matches any node with the tag.
func (n *Node) Find(tag, class string) []*Node {
	var out []*Node
	n.walk(func(c *Node) {
		if c.Tag == tag && (class == "" || c.Attr("class") == class) {
			out = append(out, c)
		}
	})
	return out
}

// TextContent concatenates all text below n.
func (n *Node) TextContent() string {
	var s string
	n.walk(func(c *Node) {
		if c.IsText() {
			s += c.Text
		}
	})
	return s
}

func (n *Node) walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

// Equal reports whether two trees are structurally identical.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag != b.Tag || a.Text != b.Text || len(a.Children) != len(b.Children) || len(a.Attrs) != len(b.Attrs) {
		return false
	}
	for k, v := range a.Attrs {
		if bv, ok := b.Attrs[k]; !ok || bv != v {
			return false
		}
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
