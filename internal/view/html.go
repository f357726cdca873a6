package view

import (
	"bytes"
	"io"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// RenderHTML writes tree as HTML markup. Attributes are emitted in name
// order so equal trees always produce identical bytes.
func RenderHTML(w io.Writer, tree *Node) error {
	if tree == nil {
		return nil
	}
	return html.Render(w, toHTMLNode(tree))
}

// HTMLString is RenderHTML into a string.
func HTMLString(tree *Node) (string, error) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, tree); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toHTMLNode(n *Node) *html.Node {
	if n.IsText() {
		return &html.Node{Type: html.TextNode, Data: n.Text}
	}
	out := &html.Node{Type: html.ElementNode, Data: n.Tag, DataAtom: atom.Lookup([]byte(n.Tag))}
	for _, k := range sortedKeys(n.Attrs) {
		out.Attr = append(out.Attr, html.Attribute{Key: k, Val: n.Attrs[k]})
	}
	for _, c := range n.Children {
		out.AppendChild(toHTMLNode(c))
	}
	return out
}

// HTMLDisplay serializes every committed tree and hands the markup to Sink.
// The last body is kept for late readers.
type HTMLDisplay struct {
	Sink func(body []byte)

	mu   sync.RWMutex
	body []byte
}

// Commit renders tree and forwards it.
func (d *HTMLDisplay) Commit(tree *Node) error {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, tree); err != nil {
		return err
	}
	body := buf.Bytes()

	d.mu.Lock()
	d.body = body
	d.mu.Unlock()

	if d.Sink != nil {
		d.Sink(body)
	}
	return nil
}

// Body returns the markup of the last commit.
func (d *HTMLDisplay) Body() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.body
}
