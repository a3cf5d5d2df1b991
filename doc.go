/*
Package main implements sconspp, a helper tool for SCons-style builds.

sconspp reads a YAML (or TOML) build file and provides the pieces of a build
that sit next to the build engine itself: file system node lookups, packaging
into compressed tarballs, configure checks for Python development files, and
loading of tool modules through their legacy dotted names.

# Core Features

Node Lookups:
Every path maps to exactly one node. Entry lookups leave the node kind open;
File and Dir lookups settle it, and asking for a file as a directory fails.

Packaging:
The tarxz packager copies sources below the package root, replaces installed
files with the files they install, and builds a .tar.xz archive with the Tar
builder flags -Jc. The targz packager does the same with gzip.

Configure Checks:
CheckPython finds the Python headers and library, either from the installed
interpreter or from an explicit python_dir, and links a test program against
them. On success the environment gains the paths and a PythonExtension builder
(no prefix, extension module suffix). On failure the environment is left as it
was.

Legacy Module Names:
Tool modules that once lived under the SCons package are installed at top
level. Importing SCons.Tool.packaging.tarxz loads Tool.packaging.tarxz and
binds Tool under SCons, so both spellings keep working.

# CLI Commands

  - package: Build the packages of the build file (--dry-run, --verbose)
  - configure: Run the configure checks and print the resulting builders
  - node: Look up an entry, file or dir node
  - resolve: Import a tool module by dotted name and show what it exports
  - list: Display packages in table, JSON, or YAML format
  - validate: Validate the build file

# Configuration

sconspp uses a build file (default: sconspp.yaml) with the following structure:

	vars:
	  PKGROOT: "/pkg"

	tools:
	  - SCons.Tool.packaging.tarxz
	  - python_devel

	checks:
	  - CheckPython

	packages:
	  dist:
	    type: tarxz
	    target: "$@-1.0"
	    root: "$PKGROOT"
	    sources:
	      - "README"
	      - "docs/**"

Process settings come from SCONSPP_* environment variables: SCONSPP_FILE,
SCONSPP_PYTHON, SCONSPP_PYTHON_DIR, SCONSPP_CC, SCONSPP_LOG_LEVEL and
SCONSPP_LOG_DEV.

# Dependencies

  - github.com/agilira/orpheus: CLI framework
  - github.com/agilira/go-errors: coded errors
  - gopkg.in/yaml.v3, github.com/pelletier/go-toml/v2: build files
  - github.com/kelseyhightower/envconfig: process settings
  - go.uber.org/zap: diagnostics
  - github.com/ulikunitz/xz, github.com/klauspost/compress: archive compression
  - github.com/charlievieth/fastwalk, github.com/bmatcuk/doublestar/v4: tree walking and globbing
*/
package main
