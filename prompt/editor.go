package prompt

import (
	"strings"

	json "github.com/goccy/go-json"
)

// NodeKind discriminates editor document nodes at the boundary with the
// host's rich-text editor. The assembler only needs enough of the model
// to flatten it to plain text.
type NodeKind string

const (
	// KindText is a plain text run.
	KindText NodeKind = "text"
	// KindParagraph groups child nodes onto one line.
	KindParagraph NodeKind = "paragraph"
	// KindMention is a user-inserted reference, rendered as @label.
	KindMention NodeKind = "mention"
	// KindChoice is an inline choice node, rendered as the selected
	// (or default) option value.
	KindChoice NodeKind = "choice"
)

// Node is one node of the editor document tree.
type Node struct {
	Kind     NodeKind `json:"kind"`
	Text     string   `json:"text,omitempty"`
	Label    string   `json:"label,omitempty"`
	Options  []string `json:"options,omitempty"`
	Selected int      `json:"selected,omitempty"`
	Children []Node   `json:"children,omitempty"`
}

// Document is the tree-shaped editor content captured from typed input.
type Document struct {
	Nodes []Node `json:"nodes"`
}

// DocumentFromText builds a document of plain paragraphs from text,
// one paragraph per line. Stringify of the result reproduces the input
// exactly.
func DocumentFromText(text string) Document {
	lines := strings.Split(text, "\n")
	nodes := make([]Node, len(lines))
	for i, line := range lines {
		nodes[i] = Node{
			Kind:     KindParagraph,
			Children: []Node{{Kind: KindText, Text: line}},
		}
	}
	return Document{Nodes: nodes}
}

// ParseDocument decodes a JSON-encoded editor document.
func ParseDocument(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Stringify flattens the document to plain text. Mention nodes render
// as @label; choice nodes render as their selected option, falling back
// to the first option when the selection is out of range. Paragraphs
// join with newlines.
func (d Document) Stringify() string {
	parts := make([]string, len(d.Nodes))
	for i, node := range d.Nodes {
		parts[i] = node.stringify()
	}
	return strings.Join(parts, "\n")
}

func (n Node) stringify() string {
	switch n.Kind {
	case KindText:
		return n.Text
	case KindMention:
		return "@" + n.Label
	case KindChoice:
		if len(n.Options) == 0 {
			return ""
		}
		if n.Selected >= 0 && n.Selected < len(n.Options) {
			return n.Options[n.Selected]
		}
		return n.Options[0]
	case KindParagraph:
		var sb strings.Builder
		for _, child := range n.Children {
			sb.WriteString(child.stringify())
		}
		return sb.String()
	default:
		// unknown node kinds flatten through their children
		var sb strings.Builder
		sb.WriteString(n.Text)
		for _, child := range n.Children {
			sb.WriteString(child.stringify())
		}
		return sb.String()
	}
}
