package core

import (
	"context"
	"path/filepath"
	"strings"
)

// Loader reads a declarations document and hands it to the matching format.
type Loader struct {
	reader FileReader
}

// NewLoader creates a Loader. If reader is nil, OSFileReader is used.
func NewLoader(reader FileReader) *Loader {
	if reader == nil {
		reader = OSFileReader{}
	}
	return &Loader{reader: reader}
}

// Load returns the packages declared in the document at path.
func (l *Loader) Load(ctx context.Context, path string) (*LoadSession, error) {
	_, format, ok := FormatFor(path)
	if !ok {
		return nil, &NoLoadingStrategyError{Path: path, Supported: SupportedFileNames()}
	}

	content, err := l.reader.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	session := format.Parse(content)
	if len(session.Packages) == 0 {
		return nil, &NoPackagesFoundError{Path: path}
	}
	return &session, nil
}

// ParseLines runs match over every line of content. Lines match rejects are
// kept as unparsed unless they are blank.
func ParseLines(content string, match func(line string) (DeclaredPackage, bool)) LoadSession {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.TrimSpace(content)

	session := LoadSession{}
	if content == "" {
		return session
	}

	for _, line := range strings.Split(content, "\n") {
		if pkg, ok := match(line); ok {
			session.Packages = append(session.Packages, pkg)
			continue
		}
		if strings.TrimSpace(line) != "" {
			session.UnparsedLines = append(session.UnparsedLines, line)
		}
	}
	return session
}

// NormalizePath converts forward slashes to backslashes so that file name
// patterns behave the same for POSIX and Windows paths.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, "/", `\`)
}

// DefaultDevcontainerDockerfilePath assumes the caller runs from <root>/src
// and the Dockerfile lives in <root>/.devcontainer.
func DefaultDevcontainerDockerfilePath(cwd string) string {
	return filepath.Join(strings.ReplaceAll(cwd, "src", ".devcontainer"), "Dockerfile")
}
