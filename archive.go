package main

import (
	"archive/tar"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
	"go.uber.org/zap"
)

type compression int8

const (
	compressNone compression = iota
	compressGzip
	compressXz
)

func (c compression) String() string {
	switch c {
	case compressGzip:
		return "gzip"
	case compressXz:
		return "xz"
	default:
		return "none"
	}
}

// parseTarFlags reads tar(1) style flags such as "-Jc".
func parseTarFlags(flags []string) (create bool, comp compression) {
	for _, f := range flags {
		for _, c := range strings.TrimLeft(f, "-") {
			switch c {
			case 'c':
				create = true
			case 'J':
				comp = compressXz
			case 'z':
				comp = compressGzip
			}
		}
	}
	return create, comp
}

// archiveName is the member name of n inside an archive.
func archiveName(n *Node) string {
	name := n.GetTag(TagInstallLocation)
	if name == "" {
		name = n.Path()
	}
	return filepath.ToSlash(makePathRelative(name))
}

func writeArchive(ctx context.Context, target *Node, flags []string, sources []*Node) (err error) {
	create, comp := parseTarFlags(flags)
	if !create {
		return newError(ErrCodeArchive, target.Path(), "flags "+strings.Join(flags, " ")+" do not create an archive")
	}

	if err := os.MkdirAll(filepath.Dir(target.Abspath()), 0o755); err != nil {
		return wrapError(err, ErrCodeArchive, target.Path(), err)
	}
	f, err := os.Create(target.Abspath())
	if err != nil {
		return wrapError(err, ErrCodeArchive, target.Path(), err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = wrapError(cerr, ErrCodeArchive, target.Path(), cerr)
		}
		if err != nil {
			_ = os.Remove(target.Abspath())
		}
	}()

	var out io.Writer = f
	var compressor io.WriteCloser
	switch comp {
	case compressXz:
		xw, xerr := xz.NewWriter(f)
		if xerr != nil {
			return wrapError(xerr, ErrCodeArchive, target.Path(), xerr)
		}
		compressor = xw
	case compressGzip:
		compressor = gzip.NewWriter(f)
	}
	if compressor != nil {
		out = compressor
	}

	tw := tar.NewWriter(out)
	for _, src := range sources {
		if err := addToArchive(ctx, tw, src); err != nil {
			_ = tw.Close()
			if compressor != nil {
				_ = compressor.Close()
			}
			return wrapError(err, ErrCodeArchive, target.Path(), err)
		}
	}
	if err := tw.Close(); err != nil {
		return wrapError(err, ErrCodeArchive, target.Path(), err)
	}
	if compressor != nil {
		if err := compressor.Close(); err != nil {
			return wrapError(err, ErrCodeArchive, target.Path(), err)
		}
	}

	logger.Debug("archive written",
		zap.String("target", target.Path()),
		zap.Int("members", len(sources)),
		zap.Stringer("compression", comp))
	return nil
}

func addToArchive(ctx context.Context, tw *tar.Writer, src *Node) error {
	info, err := os.Lstat(src.Abspath())
	if err != nil {
		return err
	}
	name := archiveName(src)
	if !info.IsDir() {
		return writeMember(tw, src.Abspath(), name, info)
	}

	// fastwalk calls back concurrently; collect then write in a stable order.
	var (
		mu    sync.Mutex
		paths []string
	)
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, src.Abspath(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		mu.Lock()
		paths = append(paths, path)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(paths)

	for _, path := range paths {
		info, err := os.Lstat(path)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src.Abspath(), path)
		if err != nil {
			return err
		}
		member := name
		if rel != "." {
			member = name + "/" + filepath.ToSlash(rel)
		}
		if err := writeMember(tw, path, member, info); err != nil {
			return err
		}
	}
	return nil
}

func writeMember(tw *tar.Writer, path, name string, info os.FileInfo) error {
	link := ""
	if info.Mode()&os.ModeSymlink != 0 {
		var err error
		if link, err = os.Readlink(path); err != nil {
			return err
		}
	}

	header, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return err
	}
	header.Name = name
	if info.IsDir() {
		header.Name += "/"
	}
	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = io.Copy(tw, file)
	return err
}
