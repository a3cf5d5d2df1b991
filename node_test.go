package main

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestEnv(t *testing.T, root string) Environment {
	t.Helper()
	nodes, err := NewNodeTable(root)
	if err != nil {
		t.Fatalf("NewNodeTable(%s): %v", root, err)
	}
	return NewEnvironment(nodes, "posix")
}

func TestNodeLookupIsCanonical(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)

	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{"Relative spellings", []string{"src/a.c", "./src/a.c", "src/../src/a.c"}, filepath.FromSlash("src/a.c")},
		{"Absolute under root", []string{filepath.Join(root, "b.c"), "b.c"}, "b.c"},
		{"Outside root", []string{"/pkg/a.txt", "/pkg/./a.txt"}, filepath.FromSlash("/pkg/a.txt")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := env.Entry(tt.names[0])
			if err != nil {
				t.Fatalf("Entry(%q): %v", tt.names[0], err)
			}
			if first.Path() != tt.want {
				t.Errorf("Entry(%q).Path() = %q, want %q", tt.names[0], first.Path(), tt.want)
			}
			for _, name := range tt.names[1:] {
				n, err := env.Entry(name)
				if err != nil {
					t.Fatalf("Entry(%q): %v", name, err)
				}
				if n != first {
					t.Errorf("Entry(%q) returned a different node than Entry(%q)", name, tt.names[0])
				}
			}
		})
	}
}

func TestNodeAbspath(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)

	n, _ := env.File("src/a.c")
	if want := filepath.Join(root, "src", "a.c"); n.Abspath() != want {
		t.Errorf("Abspath() = %q, want %q", n.Abspath(), want)
	}
	abs, _ := env.File("/pkg/a.txt")
	if abs.Abspath() != filepath.FromSlash("/pkg/a.txt") {
		t.Errorf("Abspath() = %q for absolute node", abs.Abspath())
	}
}

func TestNodeKinds(t *testing.T) {
	env := newTestEnv(t, t.TempDir())

	e, err := env.Entry("thing")
	if err != nil {
		t.Fatal(err)
	}
	if e.Kind() != NodeEntry {
		t.Errorf("Entry kind = %v, want entry", e.Kind())
	}

	f, err := env.File("thing")
	if err != nil {
		t.Fatalf("File on an entry should promote it: %v", err)
	}
	if f != e || f.Kind() != NodeFile {
		t.Errorf("File(thing) = %v (%v), want the promoted entry", f, f.Kind())
	}

	if _, err := env.Entry("thing"); err != nil {
		t.Errorf("Entry on a file should succeed: %v", err)
	}

	_, err = env.Dir("thing")
	if !hasCode(err, ErrCodeNodeKind) {
		t.Errorf("Dir on a file: error = %v, want %s", err, ErrCodeNodeKind)
	}

	d, _ := env.Dir("adir")
	_, err = env.File("adir")
	if !hasCode(err, ErrCodeNodeKind) {
		t.Errorf("File on a dir: error = %v, want %s", err, ErrCodeNodeKind)
	}
	if d.Kind() != NodeDir {
		t.Errorf("dir kind changed to %v", d.Kind())
	}
}

func TestNodeIsUnder(t *testing.T) {
	env := newTestEnv(t, t.TempDir())

	tests := []struct {
		node string
		dir  string
		want bool
	}{
		{"pkg/a.txt", "pkg", true},
		{"pkg/sub/a.txt", "pkg", true},
		{"pkgx/a.txt", "pkg", false},
		{"a.txt", "pkg", false},
		{"/pkg/a.txt", "/pkg", true},
		{"a.txt", "/pkg", false},
		{"a.txt", ".", true},
		{"/elsewhere/a.txt", ".", false},
	}

	for _, tt := range tests {
		t.Run(tt.node+" in "+tt.dir, func(t *testing.T) {
			n, _ := env.Entry(tt.node)
			d, _ := env.Dir(tt.dir)
			if got := n.IsUnder(d); got != tt.want {
				t.Errorf("IsUnder() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNodeTags(t *testing.T) {
	env := newTestEnv(t, t.TempDir())
	a, _ := env.File("a")
	b, _ := env.File("b")

	if a.GetTag("missing") != "" {
		t.Error("GetTag on an untagged node should be empty")
	}
	a.Tag("K", "v")
	b.copyTags(a)
	if b.GetTag("K") != "v" {
		t.Errorf("copyTags did not copy: %v", b.Tags)
	}
}

func TestFSDelegates(t *testing.T) {
	env := newTestEnv(t, t.TempDir())
	fs := NewFS(env)

	viaFS, err := fs.File("x/y.c")
	if err != nil {
		t.Fatal(err)
	}
	viaEnv, _ := env.File("x/y.c")
	if viaFS != viaEnv {
		t.Error("FS.File and Environment.File returned different nodes")
	}

	if _, err := fs.Dir("x/y.c"); !hasCode(err, ErrCodeNodeKind) {
		t.Errorf("FS.Dir error = %v, want the node table's %s", err, ErrCodeNodeKind)
	}

	e, err := fs.Entry("x")
	if err != nil || e.Path() != "x" {
		t.Errorf("FS.Entry(x) = %v, %v", e, err)
	}
}

func TestFindFile(t *testing.T) {
	root := t.TempDir()
	env := newTestEnv(t, root)
	writeFile(t, filepath.Join(root, "b", "conf.h"), "")

	a, _ := env.Dir("a")
	b, _ := env.Dir("b")
	c, _ := env.Dir("c")

	got, err := FindFile(env, "conf.h", []*Node{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Path() != filepath.Join("b", "conf.h") {
		t.Errorf("FindFile() = %v, want b/conf.h", got)
	}

	built, _ := env.File("c/gen.h")
	if _, err := env.Call(BuilderCopy, []*Node{built}, []*Node{got}); err != nil {
		t.Fatal(err)
	}
	got, _ = FindFile(env, "gen.h", []*Node{a, c})
	if got != built {
		t.Errorf("FindFile() = %v, want the buildable c/gen.h", got)
	}

	got, _ = FindFile(env, "none.h", []*Node{a, b, c})
	if got != nil {
		t.Errorf("FindFile() = %v, want nil", got)
	}

	if _, err := os.Stat(filepath.Join(root, "c", "gen.h")); !os.IsNotExist(err) {
		t.Error("FindFile must not create files")
	}
}
