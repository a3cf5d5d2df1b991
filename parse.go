package main

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// $var or ${var} or $@
var varPattern = regexp.MustCompile(`\$\w+|\$\{[^}]+\}|\$@`)

// ParseVars expands build file variables in text. Undefined variables are
// left in place.
func ParseVars(text string, pkgName string) string {
	matches := varPattern.FindAllString(text, -1)

	for _, m := range matches {
		varname := strings.TrimPrefix(m, "$")
		varname = strings.Trim(varname, "{}")

		val := GetVar("$"+varname, pkgName)
		if val == "" {
			logger.Warn("undefined variable", zap.String("var", m), zap.String("package", pkgName))
			continue
		}

		text = strings.Replace(text, m, val, 1)
	}

	return text
}
