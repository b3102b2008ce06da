// Package dockerfile reads packages pinned by "pip install" in container build files.
package dockerfile

import (
	"regexp"
	"strings"

	"github.com/git-pkgs/pkgversions/internal/core"
)

const (
	name     = "dockerfile"
	priority = 20
)

var (
	fileNamePattern = regexp.MustCompile(`^.*\\Dockerfile(_.+)?$`)
	linePattern     = regexp.MustCompile(`pip install ([\w\-_]+)(==)([\d.]+)`)
)

func init() {
	core.Register(name, priority, Format{})
}

// Format matches Dockerfile and Dockerfile_<suffix>.
type Format struct{}

func (Format) Matches(path string) bool {
	if strings.HasSuffix(path, "Dockerfile") {
		return true
	}
	return fileNamePattern.MatchString(core.NormalizePath(path))
}

func (Format) Parse(content string) core.LoadSession {
	return core.ParseLines(content, ParseLine)
}

func (Format) Examples() []string {
	return []string{"Dockerfile", "Dockerfile_<suffix>"}
}

// ParseLine finds a "pip install <name>==<version>" anywhere in line.
func ParseLine(line string) (core.DeclaredPackage, bool) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return core.DeclaredPackage{}, false
	}
	return core.DeclaredPackage{Name: m[1], Version: m[3]}, true
}
