package main

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

type NodeKind int8

const (
	NodeEntry NodeKind = iota
	NodeFile
	NodeDir
)

func (k NodeKind) String() string {
	switch k {
	case NodeFile:
		return "file"
	case NodeDir:
		return "directory"
	default:
		return "entry"
	}
}

// Node is a file system entry in the dependency graph. Nodes are owned by a
// NodeTable and a path maps to exactly one Node for the table's lifetime.
type Node struct {
	path    string
	abspath string
	kind    NodeKind

	Builder *Builder
	Sources []*Node
	Tags    map[string]string
}

func (n *Node) Path() string    { return n.path }
func (n *Node) Abspath() string { return n.abspath }
func (n *Node) Kind() NodeKind  { return n.kind }
func (n *Node) String() string  { return n.path }

func (n *Node) HasBuilder() bool { return n.Builder != nil }

func (n *Node) Tag(key, value string) {
	if n.Tags == nil {
		n.Tags = make(map[string]string)
	}
	n.Tags[key] = value
}

func (n *Node) GetTag(key string) string {
	return n.Tags[key]
}

func (n *Node) copyTags(from *Node) {
	for k, v := range from.Tags {
		n.Tag(k, v)
	}
}

// IsUnder reports whether n lies inside dir.
func (n *Node) IsUnder(dir *Node) bool {
	p, d := normCase(n.path), normCase(dir.path)
	if d == "." {
		return !filepath.IsAbs(p)
	}
	return p == d || strings.HasPrefix(p, d+string(filepath.Separator))
}

func (n *Node) exists() bool {
	_, err := os.Stat(n.abspath)
	return err == nil
}

// NodeTable is the namespace of file system nodes rooted at the top
// directory of a build.
type NodeTable struct {
	root  string
	nodes map[string]*Node
}

func NewNodeTable(root string) (*NodeTable, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &NodeTable{root: filepath.Clean(abs), nodes: make(map[string]*Node)}, nil
}

func (t *NodeTable) Root() string { return t.root }

func (t *NodeTable) canonical(name string) string {
	p := name
	if !filepath.IsAbs(p) {
		p = filepath.Join(t.root, p)
	}
	p = filepath.Clean(p)
	if rel, err := filepath.Rel(t.root, p); err == nil && rel != ".." &&
		!strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return rel
	}
	return p
}

func (t *NodeTable) lookup(name string, kind NodeKind) (*Node, error) {
	path := t.canonical(name)
	key := normCase(path)

	if n, ok := t.nodes[key]; ok {
		switch {
		case kind == NodeEntry || n.kind == kind:
		case n.kind == NodeEntry:
			n.kind = kind
		default:
			return nil, newError(ErrCodeNodeKind, n.kind, n.path, kind)
		}
		return n, nil
	}

	abspath := path
	if !filepath.IsAbs(abspath) {
		abspath = filepath.Join(t.root, path)
	}
	n := &Node{path: path, abspath: abspath, kind: kind}
	t.nodes[key] = n
	return n, nil
}

func (t *NodeTable) Entry(name string) (*Node, error) { return t.lookup(name, NodeEntry) }
func (t *NodeTable) File(name string) (*Node, error)  { return t.lookup(name, NodeFile) }
func (t *NodeTable) Dir(name string) (*Node, error)   { return t.lookup(name, NodeDir) }

// find returns the node already known for name without creating one.
func (t *NodeTable) find(name string) *Node {
	return t.nodes[normCase(t.canonical(name))]
}

// Nodes returns every known node ordered by path.
func (t *NodeTable) Nodes() []*Node {
	out := make([]*Node, 0, len(t.nodes))
	for _, n := range t.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out
}

// normCase folds case on platforms with case-insensitive file systems.
func normCase(p string) string {
	if runtime.GOOS == "windows" {
		return strings.ToUpper(p)
	}
	return p
}
