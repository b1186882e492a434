package output

import (
	"fmt"
	"io"
	"slices"
	"strings"
)

// TreeEntry is one probed directory and the note printed next to it.
type TreeEntry struct {
	Path string // relative to the target, e.g. "admin/config"
	Note string // e.g. "file: 200, 1520 B"
}

type dirNode struct {
	notes []string
	sub   map[string]*dirNode
}

func (n *dirNode) child(name string) *dirNode {
	if n.sub == nil {
		n.sub = make(map[string]*dirNode)
	}
	c, ok := n.sub[name]
	if !ok {
		c = &dirNode{}
		n.sub[name] = c
	}
	return c
}

func (n *dirNode) label() string {
	if len(n.notes) == 0 {
		return ""
	}
	return "  (" + strings.Join(n.notes, "; ") + ")"
}

// PrintTree renders the directories the 404 engine probed, with their
// reference notes. The empty path is the target root. Siblings are printed
// in name order.
func PrintTree(w io.Writer, entries []TreeEntry) {
	if len(entries) == 0 {
		return
	}

	root := &dirNode{}
	for _, e := range entries {
		node := root
		for part := range strings.SplitSeq(strings.Trim(e.Path, "/"), "/") {
			if part != "" {
				node = node.child(part)
			}
		}
		if e.Note != "" {
			node.notes = append(node.notes, e.Note)
		}
	}
	for _, n := range allNodes(root) {
		slices.Sort(n.notes)
	}

	fmt.Fprintf(w, "\n  404 references:\n")
	fmt.Fprintf(w, "  /%s\n", root.label())
	renderDir(w, root, "  ")
}

func allNodes(n *dirNode) []*dirNode {
	out := []*dirNode{n}
	for _, c := range n.sub {
		out = append(out, allNodes(c)...)
	}
	return out
}

func renderDir(w io.Writer, n *dirNode, indent string) {
	names := make([]string, 0, len(n.sub))
	for name := range n.sub {
		names = append(names, name)
	}
	slices.Sort(names)

	for i, name := range names {
		branch, pad := "├── ", "│   "
		if i == len(names)-1 {
			branch, pad = "└── ", "    "
		}
		c := n.sub[name]
		fmt.Fprintf(w, "%s%s%s%s\n", indent, branch, name, c.label())
		renderDir(w, c, indent+pad)
	}
}
