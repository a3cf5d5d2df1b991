package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agilira/orpheus/pkg/orpheus"
	"gopkg.in/yaml.v3"
)

// session is the host side of one invocation: the environment, the module
// registry and the resolver through which tool modules are imported.
type session struct {
	settings Settings
	env      Environment
	registry *ModuleRegistry
	resolver *Resolver
}

func newSession(settings Settings, dir string) (*session, error) {
	nodes, err := NewNodeTable(dir)
	if err != nil {
		return nil, err
	}
	env := NewEnvironment(nodes, "")
	if settings.CC != "" {
		env = env.Replace("CC", settings.CC)
	}

	registry := NewModuleRegistry(builtinModules()...)
	resolver := NewResolver(registry, cfg.LegacyRoots...)
	if err := loadTools(resolver, cfg.Tools); err != nil {
		return nil, err
	}

	return &session{settings: settings, env: env, registry: registry, resolver: resolver}, nil
}

func openSession(ctx *orpheus.Context, settings Settings) (*session, error) {
	file := settings.File
	if f := ctx.GetFlagString("file"); f != "" {
		file = f
	}
	if err := loadConfig(file); err != nil {
		return nil, orpheus.NotFoundError("config", err.Error())
	}
	return newSession(settings, filepath.Dir(file))
}

// positionalArgs returns the command arguments left after flag parsing.
// ctx.Args still carries the raw flags.
func positionalArgs(ctx *orpheus.Context) []string {
	if ctx.Flags == nil {
		return ctx.Args
	}
	return ctx.Flags.Args()
}

func (s *session) pythonDir() string {
	if s.settings.PythonDir != "" {
		return s.settings.PythonDir
	}
	return cfg.PythonDir
}

func packageNames(args []string) []string {
	if len(args) > 0 {
		return args
	}
	names := make([]string, 0, len(cfg.Packages))
	for name := range cfg.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// planPackage declares the targets of one package without building them.
func (s *session) planPackage(name string) ([]*Node, error) {
	spec, ok := GetPackage(name)
	if !ok {
		return nil, orpheus.NotFoundError(name, fmt.Sprintf("package '%s' not found", name))
	}
	packager, err := lookupPackager(spec.Type)
	if err != nil {
		return nil, err
	}

	targetName := spec.Target
	if targetName == "" {
		targetName = name
	}
	target, err := s.env.Entry(ParseVars(targetName, name))
	if err != nil {
		return nil, err
	}

	var sources []*Node
	for _, src := range expandSources(name, spec, s.env.Nodes().Root()) {
		n, err := s.env.Entry(src)
		if err != nil {
			return nil, err
		}
		sources = append(sources, n)
	}

	return packager(s.env, []*Node{target}, sources, ParseVars(spec.Root, name))
}

func (s *session) runPackages(ctx context.Context, names []string, opts RealizeOptions) error {
	for _, name := range names {
		targets, err := s.planPackage(name)
		if err != nil {
			return err
		}
		for _, t := range targets {
			if err := Realize(ctx, s.env, t, opts); err != nil {
				return orpheus.ExecutionError(name, err.Error())
			}
			if !opts.DryRun {
				fmt.Printf("Built %s\n", t.Path())
			}
		}
	}
	return nil
}

// runChecks runs the configured checks and keeps what they add to the
// environment. It reports whether all of them passed.
func (s *session) runChecks(ctx context.Context, out io.Writer, names []string, verbose bool) (bool, error) {
	cc := &ConfigureContext{
		Env:         s.env,
		Out:         out,
		Interpreter: SystemInterpreter{Python: s.settings.Python},
		PythonDir:   s.pythonDir(),
		Verbose:     verbose,
	}

	all := true
	for _, name := range names {
		check, err := lookupCheck(name)
		if err != nil {
			return false, err
		}
		if !check(ctx, cc) {
			all = false
		}
	}
	s.env = cc.Env
	return all, nil
}

func packageCommand(settings Settings) func(*orpheus.Context) error {
	return func(ctx *orpheus.Context) error {
		s, err := openSession(ctx, settings)
		if err != nil {
			return err
		}
		opts := RealizeOptions{
			Verbose: ctx.GetFlagBool("verbose"),
			DryRun:  ctx.GetFlagBool("dry-run"),
		}
		return s.runPackages(context.Background(), packageNames(positionalArgs(ctx)), opts)
	}
}

func configureCommand(settings Settings) func(*orpheus.Context) error {
	return func(ctx *orpheus.Context) error {
		s, err := openSession(ctx, settings)
		if err != nil {
			return err
		}
		if _, err := s.runChecks(context.Background(), os.Stdout, cfg.Checks, ctx.GetFlagBool("verbose")); err != nil {
			return orpheus.NotFoundError("configure", err.Error())
		}
		return printBuilders(os.Stdout, s.env)
	}
}

func nodeCommand(settings Settings) func(*orpheus.Context) error {
	return func(ctx *orpheus.Context) error {
		args := positionalArgs(ctx)
		if len(args) != 2 {
			return orpheus.ValidationError("node", "usage: node <entry|file|dir> <name>")
		}
		s, err := openSession(ctx, settings)
		if err != nil {
			return err
		}
		n, err := lookupNode(NewFS(s.env), args[0], args[1])
		if err != nil {
			return orpheus.ValidationError("node", err.Error())
		}
		fmt.Printf("%s\t%s\t%s\n", n.Kind(), n.Path(), n.Abspath())
		return nil
	}
}

func lookupNode(fs *FS, kind, name string) (*Node, error) {
	switch kind {
	case "entry":
		return fs.Entry(name)
	case "file":
		return fs.File(name)
	case "dir":
		return fs.Dir(name)
	default:
		return nil, fmt.Errorf("unknown node kind %q", kind)
	}
}

func resolveCommand(settings Settings) func(*orpheus.Context) error {
	return func(ctx *orpheus.Context) error {
		args := positionalArgs(ctx)
		if len(args) != 1 {
			return orpheus.ValidationError("resolve", "usage: resolve <module>")
		}
		s, err := openSession(ctx, settings)
		if err != nil {
			return err
		}
		m, err := Resolve(s.resolver, args[0])
		if err != nil {
			return orpheus.NotFoundError(args[0], err.Error())
		}
		return describeModule(os.Stdout, args[0], m)
	}
}

func describeModule(w io.Writer, name string, m *Module) error {
	if _, err := fmt.Fprintf(w, "%s -> %s\n", name, m.Name); err != nil {
		return err
	}
	keys := make([]string, 0, len(m.Attrs)+len(m.Symbols))
	for k := range m.Attrs {
		keys = append(keys, k+" (module)")
	}
	for k := range m.Symbols {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "  %s\n", k); err != nil {
			return err
		}
	}
	return nil
}

func listCommand(settings Settings) func(*orpheus.Context) error {
	return func(ctx *orpheus.Context) error {
		if _, err := openSession(ctx, settings); err != nil {
			return err
		}
		return listPackages(os.Stdout, ctx.GetFlagString("format"))
	}
}

func validateCommand(settings Settings) func(*orpheus.Context) error {
	return func(ctx *orpheus.Context) error {
		file := settings.File
		if f := ctx.GetFlagString("file"); f != "" {
			file = f
		}
		if err := loadConfig(file); err != nil {
			return orpheus.ValidationError("validate", err.Error())
		}
		if err := validateConfig(file, cfg); err != nil {
			return orpheus.ValidationError("validate", err.Error())
		}
		if _, err := newSession(settings, filepath.Dir(file)); err != nil {
			return orpheus.ValidationError("validate", err.Error())
		}
		fmt.Printf("%s is valid (%d packages)\n", file, len(cfg.Packages))
		return nil
	}
}

func printBuilders(w io.Writer, env Environment) error {
	for _, b := range env.Builders() {
		if _, err := fmt.Fprintf(w, "  %-16s prefix=%q suffix=%q flags=%s\n",
			b.Kind, b.Prefix, b.Suffix, strings.Join(b.Flags, " ")); err != nil {
			return err
		}
	}
	return nil
}

type packageInfo struct {
	Name    string   `json:"name" yaml:"name"`
	Type    string   `json:"type" yaml:"type"`
	Root    string   `json:"root" yaml:"root"`
	Sources []string `json:"sources,omitempty" yaml:"sources,omitempty"`
}

func packageInfos() []packageInfo {
	var infos []packageInfo
	for _, name := range packageNames(nil) {
		spec := cfg.Packages[name]
		infos = append(infos, packageInfo{Name: name, Type: spec.Type, Root: spec.Root, Sources: spec.Sources})
	}
	return infos
}

func listPackages(w io.Writer, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(map[string]interface{}{
			"packages": packageInfos(),
			"total":    len(cfg.Packages),
		})
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()
		return encoder.Encode(map[string]interface{}{
			"packages": packageInfos(),
			"total":    len(cfg.Packages),
		})
	default:
		return listPackagesTable(w)
	}
}

func listPackagesTable(w io.Writer) error {
	fmt.Fprintln(w, "Available packages:")
	fmt.Fprintln(w, "-------------------")

	if len(cfg.Packages) == 0 {
		fmt.Fprintln(w, "No packages found")
		return nil
	}

	maxNameLen := 0
	for name := range cfg.Packages {
		if len(name) > maxNameLen {
			maxNameLen = len(name)
		}
	}

	for _, info := range packageInfos() {
		padding := strings.Repeat(" ", maxNameLen-len(info.Name)+2)
		fmt.Fprintf(w, "  %s%s%-6s %d sources under %s\n", info.Name, padding, info.Type, len(info.Sources), info.Root)
	}

	fmt.Fprintf(w, "\nTotal: %d packages\n", len(cfg.Packages))
	return nil
}
