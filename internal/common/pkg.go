// Package common holds small helpers shared by the code generator and the
// analyzer.
package common

import (
	"path"
	"strings"
	"unicode"
)

// PkgAlias guesses the name a package is imported under from its path: the
// last element, skipping a major version element ("/v2") and dropping a
// gopkg.in version (".v3"). Characters that cannot appear in an identifier
// are removed. Returns empty string if pkgPath is empty.
func PkgAlias(pkgPath string) string {
	if pkgPath == "" {
		return ""
	}

	base := path.Base(pkgPath)
	if isMajorVersion(base) {
		if dir := path.Dir(pkgPath); dir != "." {
			base = path.Base(dir)
		}
	}

	if i := strings.Index(base, ".v"); i > 0 && isMajorVersion(base[i+1:]) {
		base = base[:i]
	}

	base = strings.TrimPrefix(base, "go-")

	name := strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}

		return -1
	}, base)

	if name == "" || unicode.IsDigit(rune(name[0])) {
		name = "pkg" + name
	}

	return name
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}

	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
