package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

func ExecuteCommand(ctx context.Context, command string) (string, error) {
	var cmd *exec.Cmd

	if strings.TrimSpace(command) == "" {
		return "", fmt.Errorf("empty command")
	}

	if runtime.GOOS == "windows" {
		// #nosec G204 - commands come from the build environment
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		// #nosec G204 - commands come from the build environment
		cmd = exec.CommandContext(ctx, "/bin/bash", "-c", command)
	}

	out, err := cmd.CombinedOutput()
	return string(out), err
}

func ExecuteCommandWithContext(ctx context.Context, command string, verbose, dryRun bool) (string, error) {
	if verbose {
		fmt.Printf("→ %s\n", command)
	}

	if dryRun {
		fmt.Printf("  [DRY RUN] Would execute: %s\n", command)
		return "", nil
	}

	return ExecuteCommand(ctx, command)
}

type RealizeOptions struct {
	Verbose bool
	DryRun  bool
}

const linkCommand = "$CC $LINKFLAGS -o $TARGET $SOURCES $_LIBDIRFLAGS $_LIBFLAGS"

// Realize brings node up to date by running the actions of the node and of
// everything it is built from, sources first. Every node is rebuilt; there is
// no up-to-date check.
func Realize(ctx context.Context, env Environment, node *Node, opts RealizeOptions) error {
	return realize(ctx, env, node, opts, make(map[*Node]bool), nil)
}

func realize(ctx context.Context, env Environment, node *Node, opts RealizeOptions, done map[*Node]bool, parent *Node) error {
	if done[node] {
		return nil
	}
	done[node] = true

	if err := ctx.Err(); err != nil {
		return err
	}

	if !node.HasBuilder() {
		if node.exists() {
			return nil
		}
		needed := "the build"
		if parent != nil {
			needed = parent.Path()
		}
		return newError(ErrCodeSourceMissing, node.Path(), needed)
	}

	for _, src := range node.Sources {
		if err := realize(ctx, env, src, opts, done, node); err != nil {
			return err
		}
	}

	if opts.DryRun {
		fmt.Printf("  [DRY RUN] Would build: %s (%s)\n", node.Path(), node.Builder.Kind)
		return nil
	}
	if opts.Verbose {
		fmt.Printf("→ %s %s\n", node.Builder.Kind, node.Path())
	}
	logger.Debug("building", zap.String("target", node.Path()), zap.Stringer("builder", node.Builder.Kind))

	switch node.Builder.Kind {
	case BuilderCopy, BuilderInstall:
		if len(node.Sources) != 1 {
			return fmt.Errorf("%s: %s needs exactly one source, got %d", node.Path(), node.Builder.Kind, len(node.Sources))
		}
		return copyFile(node.Sources[0].Abspath(), node.Abspath())
	case BuilderTar:
		return writeArchive(ctx, node, node.Builder.Flags, node.Sources)
	case BuilderSharedLibrary, BuilderPythonExtension:
		link := env.Replace("LINKFLAGS", node.Builder.Flags...)
		command := link.SubstFor(linkCommand, []*Node{node}, node.Sources)
		out, err := ExecuteCommandWithContext(ctx, command, opts.Verbose, false)
		if err != nil {
			return fmt.Errorf("in %s -> %s: %w", node.Path(), strings.TrimSpace(out), err)
		}
		return nil
	default:
		return newError(ErrCodeBuilderNotFound, node.Builder.Kind)
	}
}

func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return copyTree(src, dst)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func copyTree(src, dst string) error {
	var (
		mu    sync.Mutex
		files []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			mu.Lock()
			files = append(files, path)
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, path := range files {
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if err := copyFile(path, filepath.Join(dst, rel)); err != nil {
			return err
		}
	}
	return os.MkdirAll(dst, 0o755)
}
