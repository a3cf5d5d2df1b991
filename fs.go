package main

import "path/filepath"

// FS looks up nodes through an environment's namespace. It adds nothing of
// its own; errors come from the node table.
type FS struct {
	env Environment
}

func NewFS(env Environment) *FS {
	return &FS{env: env}
}

func (f *FS) Entry(name string) (*Node, error) { return f.env.Entry(name) }
func (f *FS) File(name string) (*Node, error)  { return f.env.File(name) }
func (f *FS) Dir(name string) (*Node, error)   { return f.env.Dir(name) }

// FindFile returns the first dirs/name that exists on disk or can be built,
// or nil.
func FindFile(env Environment, name string, dirs []*Node) (*Node, error) {
	for _, d := range dirs {
		candidate := filepath.Join(d.Path(), name)
		if n := env.Nodes().find(candidate); n != nil && n.HasBuilder() {
			return n, nil
		}
		n, err := env.Entry(candidate)
		if err != nil {
			return nil, err
		}
		if n.exists() {
			return n, nil
		}
	}
	return nil, nil
}
