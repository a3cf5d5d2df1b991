package main

import (
	"fmt"
	"os"

	goerrors "github.com/agilira/go-errors"
)

// Error codes
const (
	ErrCodeModuleNotFound   goerrors.ErrorCode = "MODULE_NOT_FOUND"
	ErrCodeModuleInit       goerrors.ErrorCode = "MODULE_INIT_FAILED"
	ErrCodeNodeKind         goerrors.ErrorCode = "NODE_KIND_MISMATCH"
	ErrCodeBuilderNotFound  goerrors.ErrorCode = "BUILDER_NOT_FOUND"
	ErrCodeBuildConflict    goerrors.ErrorCode = "BUILD_CONFLICT"
	ErrCodeNoTarget         goerrors.ErrorCode = "NO_TARGET"
	ErrCodeSourceMissing    goerrors.ErrorCode = "SOURCE_MISSING"
	ErrCodeArchive          goerrors.ErrorCode = "ARCHIVE_FAILED"
	ErrCodeConfig           goerrors.ErrorCode = "CONFIG_INVALID"
	ErrCodePackagerNotFound goerrors.ErrorCode = "PACKAGER_NOT_FOUND"
	ErrCodeCheckNotFound    goerrors.ErrorCode = "CHECK_NOT_FOUND"
)

var Exps = map[goerrors.ErrorCode]string{
	ErrCodeModuleNotFound:   "No module named %s",
	ErrCodeModuleInit:       "Module %s failed to initialize: %v",
	ErrCodeNodeKind:         "Tried to look up %s '%s' as a %s",
	ErrCodeBuilderNotFound:  "Builder %s Not Found",
	ErrCodeBuildConflict:    "Multiple ways to build the same target were specified for: %s",
	ErrCodeNoTarget:         "Builder %s called without targets",
	ErrCodeSourceMissing:    "Source '%s' not found, needed by '%s'",
	ErrCodeArchive:          "Cannot create archive %s: %v",
	ErrCodeConfig:           "Invalid build file %s: %v",
	ErrCodePackagerNotFound: "Packager %s Not Found",
	ErrCodeCheckNotFound:    "Configure check %s Not Found",
}

func newError(code goerrors.ErrorCode, args ...interface{}) error {
	return goerrors.New(code, fmt.Sprintf(Exps[code], args...))
}

func wrapError(err error, code goerrors.ErrorCode, args ...interface{}) error {
	return goerrors.Wrap(err, code, fmt.Sprintf(Exps[code], args...))
}

func hasCode(err error, code goerrors.ErrorCode) bool {
	return err != nil && goerrors.HasCode(err, code)
}

// RaiseException prints err and exits with status 1.
func RaiseException(err error) {
	fmt.Fprintf(os.Stderr, "sconspp: %v\n", err)
	os.Exit(1)
}
