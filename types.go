package main

type Var string

// PackageSpec declares one package produced by the package command.
type PackageSpec struct {
	Type    string   `yaml:"type" toml:"type"`
	Target  string   `yaml:"target" toml:"target"`
	Root    string   `yaml:"root" toml:"root"`
	Sources []string `yaml:"sources" toml:"sources"`
}

type Config struct {
	Includes    []string               `yaml:"include" toml:"include"`
	Vars        map[string]Var         `yaml:"vars" toml:"vars"`
	PythonDir   string                 `yaml:"python_dir" toml:"python_dir"`
	LegacyRoots []string               `yaml:"legacy_roots" toml:"legacy_roots"`
	Tools       []string               `yaml:"tools" toml:"tools"`
	Checks      []string               `yaml:"checks" toml:"checks"`
	Packages    map[string]PackageSpec `yaml:"packages" toml:"packages"`
}
