package main

import (
	"runtime"
	"sort"
	"strings"
)

// OptionList is the value of a construction variable.
type OptionList []string

func (l OptionList) String() string { return strings.Join(l, " ") }

// Environment is an immutable set of construction variables and builders.
// Every mutating method returns a new Environment and leaves the receiver
// untouched, so discarding a value is a complete rollback. The node table is
// shared by all environments derived from the same root.
type Environment struct {
	platform string
	vars     map[string]OptionList
	builders map[BuilderKind]Builder
	nodes    *NodeTable
}

func hostPlatform() string {
	switch runtime.GOOS {
	case "windows":
		return "win32"
	case "darwin":
		return "darwin"
	default:
		return "posix"
	}
}

func NewEnvironment(nodes *NodeTable, platform string) Environment {
	if platform == "" {
		platform = hostPlatform()
	}
	return Environment{
		platform: platform,
		vars: map[string]OptionList{
			"PLATFORM": {platform},
			"CC":       {"cc"},
			"CPPPATH":  nil,
			"LIBPATH":  nil,
			"LIBS":     nil,
		},
		builders: defaultBuilders(platform),
		nodes:    nodes,
	}
}

func (e Environment) Platform() string { return e.platform }
func (e Environment) Nodes() *NodeTable { return e.nodes }

func (e Environment) clone() Environment {
	vars := make(map[string]OptionList, len(e.vars))
	for k, v := range e.vars {
		vars[k] = append(OptionList(nil), v...)
	}
	builders := make(map[BuilderKind]Builder, len(e.builders))
	for k, b := range e.builders {
		builders[k] = b.Clone()
	}
	return Environment{platform: e.platform, vars: vars, builders: builders, nodes: e.nodes}
}

func (e Environment) Get(key string) OptionList {
	return append(OptionList(nil), e.vars[key]...)
}

func (e Environment) Value(key string) string {
	return e.vars[key].String()
}

// Dictionary returns a copy of all construction variables.
func (e Environment) Dictionary() map[string]OptionList {
	return e.clone().vars
}

func (e Environment) Replace(key string, values ...string) Environment {
	n := e.clone()
	n.vars[key] = append(OptionList(nil), values...)
	return n
}

func (e Environment) Append(key string, values ...string) Environment {
	n := e.clone()
	n.vars[key] = append(n.vars[key], values...)
	return n
}

// AppendUnique appends the values not already present under key.
func (e Environment) AppendUnique(key string, values ...string) Environment {
	n := e.clone()
	list := n.vars[key]
	for _, v := range values {
		found := false
		for _, have := range list {
			if have == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	n.vars[key] = list
	return n
}

func (e Environment) Builder(kind BuilderKind) (Builder, bool) {
	b, ok := e.builders[kind]
	if !ok {
		return Builder{}, false
	}
	return b.Clone(), true
}

func (e Environment) WithBuilder(b Builder) Environment {
	n := e.clone()
	n.builders[b.Kind] = b.Clone()
	return n
}

// Builders returns the registered builders ordered by kind.
func (e Environment) Builders() []Builder {
	out := make([]Builder, 0, len(e.builders))
	for _, b := range e.builders {
		out = append(out, b.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

func (e Environment) Entry(name string) (*Node, error) { return e.nodes.Entry(name) }
func (e Environment) File(name string) (*Node, error)  { return e.nodes.File(name) }
func (e Environment) Dir(name string) (*Node, error)   { return e.nodes.Dir(name) }

func (e Environment) Subst(text string) string {
	return e.SubstFor(text, nil, nil)
}

// SubstFor expands construction variables in text. TARGET(S) and SOURCE(S)
// refer to the given nodes; undefined variables expand to nothing.
func (e Environment) SubstFor(text string, targets, sources []*Node) string {
	return varPattern.ReplaceAllStringFunc(text, func(m string) string {
		name := strings.Trim(strings.TrimPrefix(m, "$"), "{}")
		return e.expand(name, targets, sources)
	})
}

func (e Environment) expand(name string, targets, sources []*Node) string {
	switch name {
	case "TARGET", "@":
		return firstPath(targets)
	case "TARGETS":
		return joinPaths(targets)
	case "SOURCE":
		return firstPath(sources)
	case "SOURCES":
		return joinPaths(sources)
	case "_CPPINCFLAGS":
		return prefixed("-I", e.vars["CPPPATH"])
	case "_LIBDIRFLAGS":
		return prefixed("-L", e.vars["LIBPATH"])
	case "_LIBFLAGS":
		return prefixed("-l", e.vars["LIBS"])
	default:
		return e.vars[name].String()
	}
}

func firstPath(nodes []*Node) string {
	if len(nodes) == 0 {
		return ""
	}
	return nodes[0].Abspath()
}

func joinPaths(nodes []*Node) string {
	paths := make([]string, len(nodes))
	for i, n := range nodes {
		paths[i] = n.Abspath()
	}
	return strings.Join(paths, " ")
}

func prefixed(prefix string, values OptionList) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = prefix + v
	}
	return strings.Join(parts, " ")
}
