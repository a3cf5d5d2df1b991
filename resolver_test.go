package main

import (
	"errors"
	"testing"

	goerrors "github.com/agilira/go-errors"
	"github.com/google/go-cmp/cmp"
)

// newTestRegistry installs a legacy root SCons and the relocated Node and
// Node.FS packages, counting how often each initializer runs.
func newTestRegistry(inits map[string]int) *ModuleRegistry {
	counted := func(name string) ModuleSpec {
		return ModuleSpec{Name: name, Init: func(m *Module) error {
			inits[name]++
			return nil
		}}
	}
	return NewModuleRegistry(
		counted("SCons"),
		counted("Node"),
		counted("Node.FS"),
		counted("os"),
		ModuleSpec{Name: "broken", Init: func(*Module) error { return errors.New("boom") }},
		ModuleSpec{Name: "SCons.bad", Init: func(*Module) error { return errors.New("bad init") }},
	)
}

func TestResolverPassesThrough(t *testing.T) {
	reg := newTestRegistry(map[string]int{})
	r := NewResolver(reg, "SCons")

	direct, err := reg.Import("os")
	if err != nil {
		t.Fatal(err)
	}
	viaResolver, err := r.Import("os")
	if err != nil {
		t.Fatalf("Import(os) error: %v", err)
	}
	if viaResolver != direct {
		t.Error("a successful import must be returned unchanged")
	}

	fs, err := r.Import("Node.FS")
	if err != nil || fs.Name != "Node" {
		t.Errorf("Import(Node.FS) = %v, %v, want the top-level Node package", fs, err)
	}
}

func TestResolverKeepsOtherErrors(t *testing.T) {
	reg := newTestRegistry(map[string]int{})
	r := NewResolver(reg, "SCons")

	tests := []struct {
		name string
		code goerrors.ErrorCode
	}{
		{"Unknown non-legacy package", ErrCodeModuleNotFound},
		{"nope.Node", ErrCodeModuleNotFound},
		{"SCons", ""},
		{"broken", ErrCodeModuleInit},
		{"SCons.bad", ErrCodeModuleInit},
		{"SCons.broken", ErrCodeModuleInit},
		{"SCons.Missing", ErrCodeModuleNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Import(tt.name)
			if tt.code == "" {
				if err != nil {
					t.Errorf("Import(%q) error: %v", tt.name, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Import(%q) succeeded, want %s", tt.name, tt.code)
			}
			if !hasCode(err, tt.code) {
				t.Errorf("Import(%q) error = %v, want code %s", tt.name, err, tt.code)
			}
		})
	}

	if _, ok := reg.Lookup("SCons.bad"); ok {
		t.Error("a module whose initializer failed must not stay cached")
	}
}

func TestResolverRedirectsLegacyImport(t *testing.T) {
	inits := map[string]int{}
	reg := newTestRegistry(inits)
	r := NewResolver(reg, "SCons")

	root, err := r.Import("SCons.Node.FS")
	if err != nil {
		t.Fatalf("Import(SCons.Node.FS) error: %v", err)
	}
	if root.Name != "SCons" {
		t.Errorf("Import() returned %s, want the legacy root package", root.Name)
	}

	node, _ := reg.Lookup("Node")
	if root.Attrs["Node"] != node {
		t.Error("SCons.Node is not bound to the top-level Node package")
	}
	if published, ok := reg.Lookup("SCons.Node"); !ok || published != node {
		t.Error("SCons.Node is not in the module cache")
	}

	want := map[string]int{"SCons": 1, "Node": 1, "Node.FS": 1}
	if diff := cmp.Diff(want, inits); diff != "" {
		t.Errorf("initializer runs (-want +got):\n%s", diff)
	}

	leaf, err := Resolve(r, "SCons.Node.FS")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	fs, _ := reg.Lookup("Node.FS")
	if leaf != fs {
		t.Errorf("Resolve() = %s, want Node.FS", leaf.Name)
	}

	// Once published, the legacy name resolves without the Resolver.
	again, err := reg.Import("SCons.Node.FS")
	if err != nil {
		t.Fatalf("registry Import after redirect: %v", err)
	}
	if again != root {
		t.Error("registry returned a different root package")
	}
	if diff := cmp.Diff(want, inits); diff != "" {
		t.Errorf("initializers ran again (-want +got):\n%s", diff)
	}
}

func TestResolverMultipleRoots(t *testing.T) {
	reg := newTestRegistry(map[string]int{})
	reg.Install(ModuleSpec{Name: "Legacy"})
	r := NewResolver(reg, "SCons", "Legacy")

	m, err := Resolve(r, "Legacy.Node.FS")
	if err != nil {
		t.Fatalf("Resolve(Legacy.Node.FS) error: %v", err)
	}
	if m.Name != "Node.FS" {
		t.Errorf("Resolve() = %s", m.Name)
	}
	if _, err := r.Import("SCons.Node"); err != nil {
		t.Errorf("Import(SCons.Node) error: %v", err)
	}
}

func TestResolveMissingAttribute(t *testing.T) {
	reg := newTestRegistry(map[string]int{})
	reg.Publish("alias", newModule("alias"))

	if _, err := Resolve(reg, "alias"); err != nil {
		t.Errorf("Resolve(alias) error: %v", err)
	}
	if _, err := Resolve(reg, "alias.child"); !hasCode(err, ErrCodeModuleNotFound) {
		t.Errorf("Resolve(alias.child) error = %v, want %s", err, ErrCodeModuleNotFound)
	}
}

func TestBuiltinModules(t *testing.T) {
	reg := NewModuleRegistry(builtinModules()...)
	r := NewResolver(reg, defaultLegacyRoot)

	m, err := Resolve(r, "SCons.Tool.packaging.tarxz")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if _, ok := m.Symbols["package"].(Packager); !ok {
		t.Errorf("tarxz does not export a packager: %v", m.Symbols)
	}
	if _, err := lookupPackager("tarxz"); err != nil {
		t.Errorf("tarxz packager not registered: %v", err)
	}

	fs, err := Resolve(r, "SCons.Node.FS")
	if err != nil {
		t.Fatalf("Resolve(SCons.Node.FS) error: %v", err)
	}
	if _, ok := fs.Symbols["find_file"]; !ok {
		t.Error("SCons.Node.FS does not export find_file")
	}

	scons, _ := reg.Lookup("SCons")
	if scons.Symbols["__version__"] != version {
		t.Errorf("__version__ = %v", scons.Symbols["__version__"])
	}

	if err := loadTools(r, []string{"python_devel", "SCons.Tool.packaging.targz"}); err != nil {
		t.Fatalf("loadTools() error: %v", err)
	}
	if _, err := lookupCheck("CheckPython"); err != nil {
		t.Errorf("CheckPython not registered: %v", err)
	}
	if err := loadTools(r, []string{"SCons.Tool.rpm"}); !hasCode(err, ErrCodeModuleNotFound) {
		t.Errorf("loadTools(rpm) error = %v, want %s", err, ErrCodeModuleNotFound)
	}
}

func TestResolverRedirectsMissingDependencyOfLegacyModule(t *testing.T) {
	reg := newTestRegistry(map[string]int{})
	missing := func(*Module) error { return newError(ErrCodeModuleNotFound, "helper") }
	reg.Install(ModuleSpec{Name: "SCons.needy", Init: missing})
	reg.Install(ModuleSpec{Name: "needy"})
	reg.Install(ModuleSpec{Name: "SCons.lonely", Init: missing})
	r := NewResolver(reg, "SCons")

	m, err := Resolve(r, "SCons.needy")
	if err != nil {
		t.Fatalf("Resolve(SCons.needy) error: %v", err)
	}
	needy, _ := reg.Lookup("needy")
	if m != needy {
		t.Errorf("Resolve(SCons.needy) = %s, want the top-level needy package", m.Name)
	}

	if _, err := r.Import("SCons.lonely"); !hasCode(err, ErrCodeModuleNotFound) {
		t.Errorf("Import(SCons.lonely) error = %v, want %s", err, ErrCodeModuleNotFound)
	}
}
