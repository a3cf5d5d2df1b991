package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var cfg Config

const defaultLegacyRoot = "SCons"

func decodeConfig(path string) (Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &c)
	} else if len(bytes.TrimSpace(data)) > 0 {
		err = yaml.Unmarshal(data, &c)
	}
	if err != nil {
		return c, wrapError(err, ErrCodeConfig, path, err)
	}
	return c, nil
}

// loadConfig reads the build file at path and its includes into cfg.
func loadConfig(path string) error {
	c, err := decodeConfig(path)
	if err != nil {
		return err
	}

	for _, inc := range c.Includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		ic, err := decodeConfig(inc)
		if err != nil {
			logger.Warn("cannot load include", zap.String("file", inc), zap.Error(err))
			continue
		}
		mergeConfig(&c, ic)
	}

	if len(c.LegacyRoots) == 0 {
		c.LegacyRoots = []string{defaultLegacyRoot}
	}
	if c.Vars == nil {
		c.Vars = make(map[string]Var)
	}
	if c.Packages == nil {
		c.Packages = make(map[string]PackageSpec)
	}

	cfg = c
	return nil
}

func mergeConfig(dst *Config, src Config) {
	if dst.Vars == nil {
		dst.Vars = make(map[string]Var)
	}
	for k, v := range src.Vars {
		dst.Vars[k] = v
	}
	if dst.Packages == nil {
		dst.Packages = make(map[string]PackageSpec)
	}
	for k, v := range src.Packages {
		dst.Packages[k] = v
	}
	if src.PythonDir != "" {
		dst.PythonDir = src.PythonDir
	}
	dst.LegacyRoots = append(dst.LegacyRoots, src.LegacyRoots...)
	dst.Tools = append(dst.Tools, src.Tools...)
	dst.Checks = append(dst.Checks, src.Checks...)
}

func validateConfig(path string, c Config) error {
	for name, pkg := range c.Packages {
		switch {
		case pkg.Type == "":
			return newError(ErrCodeConfig, path, "package "+name+" has no type")
		case pkg.Root == "":
			return newError(ErrCodeConfig, path, "package "+name+" has no root")
		case len(pkg.Sources) == 0:
			return newError(ErrCodeConfig, path, "package "+name+" has no sources")
		}
	}
	return nil
}

// expandSources substitutes variables in the package's sources and expands
// glob patterns relative to dir.
func expandSources(pkgName string, pkg PackageSpec, dir string) []string {
	var out []string
	for _, src := range pkg.Sources {
		src = ParseVars(src, pkgName)
		if !strings.ContainsAny(src, "*?[{") {
			out = append(out, src)
			continue
		}

		pattern := src
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(dir, pattern)
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			logger.Warn("bad source pattern", zap.String("pattern", src), zap.Error(err))
			continue
		}
		if len(matches) == 0 {
			logger.Warn("source pattern matched nothing", zap.String("pattern", src))
		}
		out = append(out, matches...)
	}
	return out
}
