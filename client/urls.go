// Package client builds the URLs of a package index.
package client

import (
	"fmt"
	"strings"

	packageurl "github.com/package-url/packageurl-go"

	"github.com/git-pkgs/pkgversions/internal/core"
)

// DefaultIndexURL is the public Python package index.
const DefaultIndexURL = "https://pypi.org"

// URLBuilder constructs URLs for an index.
type URLBuilder interface {
	Feed(name string) string
	History(name string) string
	Project(name, version string) string
	PURL(name, version string) string
}

// IndexURLs is the URLBuilder for pypi.org and compatible mirrors.
type IndexURLs struct {
	BaseURL string
}

// NewIndexURLs returns an IndexURLs rooted at baseURL, or DefaultIndexURL when empty.
func NewIndexURLs(baseURL string) *IndexURLs {
	if baseURL == "" {
		baseURL = DefaultIndexURL
	}
	return &IndexURLs{BaseURL: strings.TrimSuffix(baseURL, "/")}
}

// Feed returns the RSS release feed of a project.
func (u *IndexURLs) Feed(name string) string {
	return fmt.Sprintf("%s/rss/project/%s/releases.xml", u.BaseURL, name)
}

// History returns the release history section of a project page.
func (u *IndexURLs) History(name string) string {
	return fmt.Sprintf("%s/project/%s/#history", u.BaseURL, name)
}

func (u *IndexURLs) Project(name, version string) string {
	if version != "" {
		return fmt.Sprintf("%s/project/%s/%s/", u.BaseURL, name, version)
	}
	return fmt.Sprintf("%s/project/%s/", u.BaseURL, name)
}

func (u *IndexURLs) PURL(name, version string) string {
	return packageurl.NewPackageURL(packageurl.TypePyPi, "", core.NormalizeName(name), version, nil, "").ToString()
}

// BuildURLs returns a map of all non-empty URLs for a package.
// Keys are "feed", "history", "project", and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	result := make(map[string]string)
	if v := urls.Feed(name); v != "" {
		result["feed"] = v
	}
	if v := urls.History(name); v != "" {
		result["history"] = v
	}
	if v := urls.Project(name, version); v != "" {
		result["project"] = v
	}
	if v := urls.PURL(name, version); v != "" {
		result["purl"] = v
	}
	return result
}
