package pathutil

import (
	"path"
	"slices"
	"strings"
)

// FileNode is either a *Leaf (a file) or a *Group (a folder of nodes).
type FileNode interface {
	Name() string
	fileNode()
}

// Leaf is a single file of a project, Path is root relative and slash separated.
type Leaf struct {
	Path    string
	Compile bool
}

func (l *Leaf) Name() string { return path.Base(l.Path) }
func (*Leaf) fileNode()      {}

// Group is a display folder.
type Group struct {
	Label    string
	Children []FileNode
}

func (g *Group) Name() string { return g.Label }
func (*Group) fileNode()      {}

// BuildTree groups leaves by the directories of their paths. Children are sorted by name with
// groups before leaves.
func BuildTree(leaves []*Leaf) []FileNode {
	root := &Group{}
	for _, leaf := range leaves {
		dir := path.Dir(leaf.Path)
		g := root
		if dir != "." && dir != "/" {
			for _, seg := range strings.Split(dir, "/") {
				if seg == "" {
					continue
				}
				g = g.child(seg)
			}
		}
		g.Children = append(g.Children, leaf)
	}
	sortTree(root.Children)
	return root.Children
}

func (g *Group) child(label string) *Group {
	for _, c := range g.Children {
		if cg, ok := c.(*Group); ok && cg.Label == label {
			return cg
		}
	}
	cg := &Group{Label: label}
	g.Children = append(g.Children, cg)
	return cg
}

func sortTree(nodes []FileNode) {
	slices.SortStableFunc(nodes, func(a, b FileNode) int {
		_, ag := a.(*Group)
		_, bg := b.(*Group)
		if ag != bg {
			if ag {
				return -1
			}
			return 1
		}
		return strings.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
	})
	for _, n := range nodes {
		if g, ok := n.(*Group); ok {
			sortTree(g.Children)
		}
	}
}

// TrimFileList collapses chains of single-folder groups. A group whose only child is another
// group takes over that child's children and keeps its own label. Leaves are never touched.
// The input slice is modified in place and returned.
func TrimFileList(nodes []FileNode) []FileNode {
	for changed := true; changed; {
		changed = false
		for _, n := range nodes {
			g, ok := n.(*Group)
			if !ok || len(g.Children) != 1 {
				continue
			}
			if only, ok := g.Children[0].(*Group); ok {
				g.Children = only.Children
				changed = true
				break // rescan this level
			}
		}
	}

	for _, n := range nodes {
		if g, ok := n.(*Group); ok {
			g.Children = TrimFileList(g.Children)
		}
	}
	return nodes
}

// FlatFile is a leaf together with the backslash joined labels of its enclosing groups.
type FlatFile struct {
	*Leaf
	Filter string
}

// Flatten walks the tree depth first.
func Flatten(nodes []FileNode) []FlatFile {
	var out []FlatFile
	var walk func(nodes []FileNode, filter string)
	walk = func(nodes []FileNode, filter string) {
		for _, n := range nodes {
			switch n := n.(type) {
			case *Leaf:
				out = append(out, FlatFile{Leaf: n, Filter: filter})
			case *Group:
				sub := n.Label
				if filter != "" {
					sub = filter + `\` + n.Label
				}
				walk(n.Children, sub)
			}
		}
	}
	walk(nodes, "")
	return out
}

// Filters lists every group path in the tree, parents before children.
func Filters(nodes []FileNode) []string {
	var out []string
	var walk func(nodes []FileNode, prefix string)
	walk = func(nodes []FileNode, prefix string) {
		for _, n := range nodes {
			g, ok := n.(*Group)
			if !ok {
				continue
			}
			p := g.Label
			if prefix != "" {
				p = prefix + `\` + g.Label
			}
			out = append(out, p)
			walk(g.Children, p)
		}
	}
	walk(nodes, "")
	return out
}
