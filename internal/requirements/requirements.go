// Package requirements reads pip requirements files.
package requirements

import (
	"regexp"
	"strings"

	"github.com/git-pkgs/pkgversions/internal/core"
)

const (
	name     = "requirements"
	priority = 10
)

var (
	fileNamePattern = regexp.MustCompile(`^.*\\requirements_.+\.txt$`)
	linePattern     = regexp.MustCompile(`^([a-zA-Z0-9\-]+)\s*[>=<~]*\s*([\d.]+)`)
)

func init() {
	core.Register(name, priority, Format{})
}

// Format matches requirements.txt and requirements_<suffix>.txt.
type Format struct{}

func (Format) Matches(path string) bool {
	if strings.HasSuffix(path, "requirements.txt") {
		return true
	}
	return fileNamePattern.MatchString(core.NormalizePath(path))
}

// Parse takes the name and the first version of every line that starts
// with a package name, e.g. "typed-astunparse >= 2.1.4, == 2.*" gives 2.1.4.
func (Format) Parse(content string) core.LoadSession {
	return core.ParseLines(content, ParseLine)
}

func (Format) Examples() []string {
	return []string{"requirements.txt", "requirements_<suffix>.txt"}
}

// ParseLine extracts one declared package from a requirements line.
func ParseLine(line string) (core.DeclaredPackage, bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return core.DeclaredPackage{}, false
	}
	return core.DeclaredPackage{Name: m[1], Version: m[2]}, true
}
