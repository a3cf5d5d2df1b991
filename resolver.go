package main

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Module is a named unit of tool code. Attrs holds bound submodules,
// Symbols whatever the module exports.
type Module struct {
	Name    string
	Attrs   map[string]*Module
	Symbols map[string]interface{}
}

func newModule(name string) *Module {
	return &Module{
		Name:    name,
		Attrs:   make(map[string]*Module),
		Symbols: make(map[string]interface{}),
	}
}

// Importer imports a dotted module name and returns its top-level package,
// the way an import statement binds the first name of the path.
type Importer interface {
	Import(name string) (*Module, error)
}

// ModuleLoader is an Importer with a module cache that others can publish to.
type ModuleLoader interface {
	Importer
	Publish(name string, m *Module)
}

// ModuleSpec is an installable module. Init runs once, on first import.
type ModuleSpec struct {
	Name string
	Init func(m *Module) error
}

// ModuleRegistry holds the installed modules and the cache of imported ones.
type ModuleRegistry struct {
	installed map[string]ModuleSpec
	cache     map[string]*Module
}

func NewModuleRegistry(specs ...ModuleSpec) *ModuleRegistry {
	r := &ModuleRegistry{
		installed: make(map[string]ModuleSpec),
		cache:     make(map[string]*Module),
	}
	for _, s := range specs {
		r.Install(s)
	}
	return r
}

func (r *ModuleRegistry) Install(spec ModuleSpec) {
	r.installed[spec.Name] = spec
}

func (r *ModuleRegistry) Publish(name string, m *Module) {
	r.cache[name] = m
}

func (r *ModuleRegistry) Lookup(name string) (*Module, bool) {
	m, ok := r.cache[name]
	return m, ok
}

// Imported returns the names in the module cache.
func (r *ModuleRegistry) Imported() []string {
	names := make([]string, 0, len(r.cache))
	for name := range r.cache {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *ModuleRegistry) Import(name string) (*Module, error) {
	parts := strings.Split(name, ".")
	var top, parent *Module
	for i, part := range parts {
		full := strings.Join(parts[:i+1], ".")
		m, err := r.load(full, parent, part)
		if err != nil {
			return nil, err
		}
		if parent != nil {
			parent.Attrs[part] = m
		} else {
			top = m
		}
		parent = m
	}
	return top, nil
}

// load returns the cached module for full or runs its initializer. A child
// of a published alias is found under the parent's real name.
func (r *ModuleRegistry) load(full string, parent *Module, part string) (*Module, error) {
	if m, ok := r.cache[full]; ok {
		return m, nil
	}

	specName := full
	if parent != nil {
		specName = parent.Name + "." + part
		if m, ok := r.cache[specName]; ok {
			r.cache[full] = m
			return m, nil
		}
	}

	spec, ok := r.installed[specName]
	if !ok || part == "" {
		return nil, newError(ErrCodeModuleNotFound, full)
	}

	m := newModule(specName)
	r.cache[specName] = m
	if spec.Init != nil {
		if err := spec.Init(m); err != nil {
			delete(r.cache, specName)
			return nil, wrapError(err, ErrCodeModuleInit, specName, err)
		}
	}
	r.cache[full] = m
	return m, nil
}

// Resolver redirects imports of legacy dotted paths. A package that used to
// live under a legacy root is now installed at top level; an import of
// root.sub... that fails is retried without the root and the result is
// bound back under root.sub. Everything else passes through unchanged.
//
// A Resolver is not safe for concurrent use.
type Resolver struct {
	next  ModuleLoader
	roots map[string]bool
}

func NewResolver(next ModuleLoader, legacyRoots ...string) *Resolver {
	roots := make(map[string]bool, len(legacyRoots))
	for _, r := range legacyRoots {
		roots[r] = true
	}
	return &Resolver{next: next, roots: roots}
}

func (r *Resolver) Import(name string) (*Module, error) {
	m, err := r.next.Import(name)
	if err == nil {
		return m, nil
	}
	if !hasCode(err, ErrCodeModuleNotFound) {
		return nil, err
	}

	parts := strings.Split(name, ".")
	if len(parts) < 2 || !r.roots[parts[0]] {
		return nil, err
	}
	root, sub := parts[0], parts[1]

	// Imported for its side effects only; the binding comes from the import of sub below.
	if _, err := r.Import(strings.Join(parts[1:], ".")); err != nil {
		return nil, err
	}

	subModule, err := r.next.Import(sub)
	if err != nil {
		return nil, err
	}
	rootModule, err := r.next.Import(root)
	if err != nil {
		return nil, err
	}
	rootModule.Attrs[sub] = subModule
	r.next.Publish(root+"."+sub, subModule)

	logger.Debug("legacy import redirected", zap.String("module", name), zap.String("as", sub))
	return rootModule, nil
}

// Resolve imports name and returns the module it names rather than its
// top-level package.
func Resolve(imp Importer, name string) (*Module, error) {
	m, err := imp.Import(name)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(name, ".")
	for _, part := range parts[1:] {
		next, ok := m.Attrs[part]
		if !ok {
			return nil, newError(ErrCodeModuleNotFound, name)
		}
		m = next
	}
	return m, nil
}
