package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
)

// ConfigCheck inspects the build host and may extend cc.Env when it succeeds.
type ConfigCheck func(ctx context.Context, cc *ConfigureContext) bool

var checks = map[string]ConfigCheck{}

func registerCheck(name string, check ConfigCheck) {
	checks[name] = check
}

func lookupCheck(name string) (ConfigCheck, error) {
	check, ok := checks[name]
	if !ok {
		return nil, newError(ErrCodeCheckNotFound, name)
	}
	return check, nil
}

// InterpreterInfo is what a Python installation reports about itself.
type InterpreterInfo struct {
	Include      string `json:"include"`
	LibDir       string `json:"libdir"`
	Prefix       string `json:"prefix"`
	Version      string `json:"version"`
	ShortVersion string `json:"short_version"`
	ExtSuffix    string `json:"ext_suffix"`
}

type Interpreter interface {
	Query(ctx context.Context) (InterpreterInfo, error)
}

type Linker interface {
	TryLink(ctx context.Context, env Environment, source, ext string) bool
}

// ConfigureContext carries the environment being configured. Checks replace
// Env only when they succeed.
type ConfigureContext struct {
	Env         Environment
	Out         io.Writer
	Interpreter Interpreter
	Linker      Linker
	PythonDir   string
	Verbose     bool
}

func (c *ConfigureContext) out() io.Writer {
	if c.Out == nil {
		return io.Discard
	}
	return c.Out
}

func (c *ConfigureContext) Message(text string) {
	fmt.Fprint(c.out(), text)
}

func (c *ConfigureContext) Result(ok bool) {
	if ok {
		fmt.Fprintln(c.out(), "yes")
	} else {
		fmt.Fprintln(c.out(), "no")
	}
}

func (c *ConfigureContext) TryLink(ctx context.Context, env Environment, source, ext string) bool {
	linker := c.Linker
	if linker == nil {
		linker = ShellLinker{Verbose: c.Verbose}
	}
	return linker.TryLink(ctx, env, source, ext)
}

const pythonTestProgram = `
#include <Python.h>
int main()
{
	Py_Initialize();
}
`

// CheckPython looks for Python development headers and libraries. On
// success the environment gains them and a PythonExtension builder.
func CheckPython(ctx context.Context, cc *ConfigureContext) bool {
	cc.Message("Checking for Python... ")

	env, suffix, err := withPythonPaths(ctx, cc)
	if err != nil {
		logger.Debug("python lookup failed", zap.Error(err))
		cc.Result(false)
		return false
	}

	if !cc.TryLink(ctx, env, pythonTestProgram, ".c") {
		cc.Result(false)
		return false
	}

	ext, ok := env.Builder(BuilderSharedLibrary)
	if !ok {
		cc.Result(false)
		return false
	}
	ext.Kind = BuilderPythonExtension
	ext.Prefix = ""
	ext.Suffix = suffix

	cc.Env = env.WithBuilder(ext)
	cc.Result(true)
	return true
}

func withPythonPaths(ctx context.Context, cc *ConfigureContext) (Environment, string, error) {
	env := cc.Env

	if cc.PythonDir == "" {
		interp := cc.Interpreter
		if interp == nil {
			interp = SystemInterpreter{}
		}
		info, err := interp.Query(ctx)
		if err != nil {
			return env, "", err
		}

		version := info.Version
		if version == "" {
			version = info.ShortVersion
		}
		if env.Platform() == "win32" {
			version = strings.ReplaceAll(version, ".", "")
		}
		libdir := info.LibDir
		if libdir == "" {
			libdir = filepath.Join(info.Prefix, "libs")
		}

		env = env.AppendUnique("CPPPATH", info.Include).
			AppendUnique("LIBPATH", libdir).
			AppendUnique("LIBS", "python"+version)

		suffix := info.ExtSuffix
		if suffix == "" {
			suffix = extensionSuffix(env.Platform())
		}
		return env, suffix, nil
	}

	libs := filepath.Join(cc.PythonDir, "libs")
	matches, err := doublestar.Glob(os.DirFS(libs), "libpython[0-9]*.a")
	if err != nil {
		return env, "", err
	}
	if len(matches) == 0 {
		return env, "", fmt.Errorf("no libpython*.a in %s", libs)
	}
	sort.Strings(matches)
	base := filepath.Base(matches[0])
	lib := strings.TrimSuffix(strings.TrimPrefix(base, "lib"), ".a")

	env = env.AppendUnique("CPPPATH", filepath.Join(cc.PythonDir, "include")).
		AppendUnique("LIBPATH", libs).
		AppendUnique("LIBS", lib)
	return env, ".pyd", nil
}

func extensionSuffix(platform string) string {
	if platform == "win32" {
		return ".pyd"
	}
	return ".so"
}

const sysconfigScript = `import json, sys, sysconfig
v = sysconfig.get_config_var
print(json.dumps({
    "include": sysconfig.get_paths().get("include") or v("INCLUDEPY") or "",
    "libdir": v("LIBDIR") or "",
    "prefix": v("prefix") or sys.prefix,
    "version": v("VERSION") or "",
    "short_version": "%d.%d" % sys.version_info[:2],
    "ext_suffix": v("EXT_SUFFIX") or v("SO") or "",
}))`

// SystemInterpreter asks the installed Python about its build paths.
type SystemInterpreter struct {
	Python string
}

func (s SystemInterpreter) Query(ctx context.Context) (InterpreterInfo, error) {
	python := s.Python
	if python == "" {
		python = "python3"
	}

	// #nosec G204 - the interpreter is chosen by the user
	out, err := exec.CommandContext(ctx, python, "-c", sysconfigScript).Output()
	if err != nil {
		return InterpreterInfo{}, err
	}

	var info InterpreterInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return InterpreterInfo{}, err
	}
	return info, nil
}

const tryLinkCommand = "$CC -o $TARGET $SOURCES $_CPPINCFLAGS $_LIBDIRFLAGS $_LIBFLAGS"

// ShellLinker compiles and links a test program with the environment's
// compiler. Success is the exit status of the command alone.
type ShellLinker struct {
	Verbose bool
}

func (l ShellLinker) TryLink(ctx context.Context, env Environment, source, ext string) bool {
	dir, err := os.MkdirTemp("", "sconspp-conftest")
	if err != nil {
		logger.Debug("conftest dir", zap.Error(err))
		return false
	}
	defer func() { _ = os.RemoveAll(dir) }()

	if err := os.WriteFile(filepath.Join(dir, "conftest"+ext), []byte(source), 0o600); err != nil {
		logger.Debug("conftest source", zap.Error(err))
		return false
	}

	nodes, err := NewNodeTable(dir)
	if err != nil {
		return false
	}
	src, err := nodes.File("conftest" + ext)
	if err != nil {
		logger.Debug("conftest source node", zap.Error(err))
		return false
	}
	prog, err := nodes.File("conftest")
	if err != nil {
		logger.Debug("conftest program node", zap.Error(err))
		return false
	}

	command := env.SubstFor(tryLinkCommand, []*Node{prog}, []*Node{src})
	out, err := ExecuteCommandWithContext(ctx, command, l.Verbose, false)
	if err != nil {
		logger.Debug("trial link failed", zap.String("command", command), zap.String("output", out), zap.Error(err))
		return false
	}
	return true
}
