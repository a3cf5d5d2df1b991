package main

import (
	"os"
	"strings"
	"time"
)

// GetVar resolves a build file variable: builtins, then vars, then the
// process environment, else "".
func GetVar(name string, pkgName string) string {
	name = strings.Trim(name, "$")
	switch name {
	case "TIMESTAMP":
		return time.Now().Format("2006-01-02 15:04:05")
	case "@":
		return pkgName
	case "PLATFORM":
		return hostPlatform()
	case "cwd":
		path, _ := os.Getwd()
		return path
	default:
		ret, exists := cfg.Vars[name]
		if exists {
			return string(ret)
		}
		return os.Getenv(name)
	}
}

func GetPackage(name string) (PackageSpec, bool) {
	pkg, ok := cfg.Packages[name]
	return pkg, ok
}
