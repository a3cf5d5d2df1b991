package main

import (
	"path/filepath"
	"sort"
	"strings"
)

// TagInstallLocation records where an installed file ends up in a package.
const TagInstallLocation = "PACKAGING_INSTALL_LOCATION"

// Packager produces package targets from sources placed under root.
type Packager func(env Environment, targets, sources []*Node, root string) ([]*Node, error)

var packagers = map[string]Packager{}

func registerPackager(name string, p Packager) {
	packagers[name] = p
}

func lookupPackager(name string) (Packager, error) {
	p, ok := packagers[name]
	if !ok {
		return nil, newError(ErrCodePackagerNotFound, name)
	}
	return p, nil
}

func packagerNames() []string {
	names := make([]string, 0, len(packagers))
	for name := range packagers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PutIntoPackageRoot copies every source that is not already below root to
// the same relative location below it.
func PutIntoPackageRoot(env Environment, targets, sources []*Node, root string) ([]*Node, []*Node, error) {
	rootDir, err := env.Dir(root)
	if err != nil {
		return nil, nil, err
	}

	out := make([]*Node, 0, len(sources))
	for _, src := range sources {
		if src.IsUnder(rootDir) {
			out = append(out, src)
			continue
		}

		name := src.GetTag(TagInstallLocation)
		if name == "" {
			name = src.Path()
		}
		dst, err := env.File(filepath.Join(rootDir.Path(), makePathRelative(name)))
		if err != nil {
			return nil, nil, err
		}
		built, err := env.Call(BuilderCopy, []*Node{dst}, []*Node{src})
		if err != nil {
			return nil, nil, err
		}
		built[0].copyTags(src)
		out = append(out, built[0])
	}
	return targets, out, nil
}

// StripInstallBuilder replaces every Install-built source with the files it
// installs, tagged with their install location.
func StripInstallBuilder(env Environment, targets, sources []*Node) ([]*Node, []*Node, error) {
	out := make([]*Node, 0, len(sources))
	for _, src := range sources {
		if src.Builder == nil || src.Builder.Kind != BuilderInstall {
			out = append(out, src)
			continue
		}
		for _, orig := range src.Sources {
			orig.copyTags(src)
			orig.Tag(TagInstallLocation, src.Path())
			out = append(out, orig)
		}
	}
	return targets, out, nil
}

func makePathRelative(p string) string {
	p = strings.TrimPrefix(p, filepath.VolumeName(p))
	return strings.TrimLeft(p, `/\`)
}
