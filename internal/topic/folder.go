package topic

import "strings"

// renderIndent is the per-level indentation used when rendering a tree.
const renderIndent = 4

// Node is a single entry in a folder structure tree: either a Dir or a File.
type Node interface {
	render(b *strings.Builder, indent int)
}

// Dir is a directory node with ordered children.
type Dir struct {
	Name     string
	Children []Node
}

// File is a leaf file node.
type File struct {
	Name string
}

// Tree is a folder structure associated with a topic or project. Root
// entries render without a wrapping directory line.
type Tree struct {
	Roots []Node
}

func (d Dir) render(b *strings.Builder, indent int) {
	b.WriteString(strings.Repeat(" ", indent))
	b.WriteString(d.Name)
	b.WriteString("/\n")
	for _, child := range d.Children {
		child.render(b, indent+renderIndent)
	}
}

func (f File) render(b *strings.Builder, indent int) {
	b.WriteString(strings.Repeat(" ", indent))
	b.WriteString("-- ")
	b.WriteString(f.Name)
	b.WriteString("\n")
}

// Render produces the indentation-based text form of the tree:
// directories as "name/" followed by an indented child block, files as
// "-- name". Returns the empty string for a nil or empty tree.
func (t *Tree) Render() string {
	if t == nil || len(t.Roots) == 0 {
		return ""
	}
	var b strings.Builder
	for _, n := range t.Roots {
		n.render(&b, 0)
	}
	return b.String()
}
