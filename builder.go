package main

import (
	"path/filepath"
	"strings"
)

type BuilderKind int8

const (
	BuilderTar BuilderKind = iota + 1
	BuilderSharedLibrary
	BuilderInstall
	BuilderCopy
	BuilderPythonExtension
)

var builderNames = map[BuilderKind]string{
	BuilderTar:             "Tar",
	BuilderSharedLibrary:   "SharedLibrary",
	BuilderInstall:         "Install",
	BuilderCopy:            "CopyAs",
	BuilderPythonExtension: "PythonExtension",
}

func (k BuilderKind) String() string {
	if name, ok := builderNames[k]; ok {
		return name
	}
	return "Unknown"
}

func ParseBuilderKind(name string) (BuilderKind, bool) {
	for k, n := range builderNames {
		if strings.EqualFold(n, name) {
			return k, true
		}
	}
	return 0, false
}

// Builder describes how targets of one kind are named and produced.
type Builder struct {
	Kind   BuilderKind
	Prefix string
	Suffix string
	Flags  []string
}

func (b Builder) Clone() Builder {
	b.Flags = append([]string(nil), b.Flags...)
	return b
}

func (b Builder) targetName(name string) string {
	dir, file := filepath.Split(name)
	if b.Prefix != "" && !strings.HasPrefix(file, b.Prefix) {
		file = b.Prefix + file
	}
	if b.Suffix != "" && !strings.HasSuffix(file, b.Suffix) {
		file += b.Suffix
	}
	return dir + file
}

func defaultBuilders(platform string) map[BuilderKind]Builder {
	shlib := Builder{Kind: BuilderSharedLibrary, Prefix: "lib", Suffix: ".so", Flags: []string{"-shared"}}
	switch platform {
	case "darwin":
		shlib.Suffix = ".dylib"
		shlib.Flags = []string{"-dynamiclib"}
	case "win32":
		shlib.Prefix = ""
		shlib.Suffix = ".dll"
	}

	return map[BuilderKind]Builder{
		BuilderTar:           {Kind: BuilderTar, Suffix: ".tar", Flags: []string{"-c"}},
		BuilderSharedLibrary: shlib,
		BuilderInstall:       {Kind: BuilderInstall},
		BuilderCopy:          {Kind: BuilderCopy},
	}
}

// Build attaches b to every target and returns the (renamed) targets.
func (e Environment) Build(b Builder, targets, sources []*Node) ([]*Node, error) {
	if len(targets) == 0 {
		return nil, newError(ErrCodeNoTarget, b.Kind)
	}

	out := make([]*Node, 0, len(targets))
	for _, t := range targets {
		node := t
		if name := b.targetName(t.Path()); name != t.Path() {
			var err error
			if node, err = e.File(name); err != nil {
				return nil, err
			}
		}
		if node.Builder != nil && node.Builder.Kind != b.Kind {
			return nil, newError(ErrCodeBuildConflict, node.Path())
		}
		bld := b.Clone()
		node.Builder = &bld
		node.Sources = append([]*Node(nil), sources...)
		if node.kind == NodeEntry {
			node.kind = NodeFile
		}
		out = append(out, node)
	}
	return out, nil
}

// Call builds targets with the registered builder of the given kind.
func (e Environment) Call(kind BuilderKind, targets, sources []*Node) ([]*Node, error) {
	b, ok := e.Builder(kind)
	if !ok {
		return nil, newError(ErrCodeBuilderNotFound, kind)
	}
	return e.Build(b, targets, sources)
}
