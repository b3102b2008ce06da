package core

import (
	"fmt"
	"strings"

	"github.com/git-pkgs/purl"
	packageurl "github.com/package-url/packageurl-go"
)

// NormalizeName applies PEP 503 style normalization used by index URLs and PURLs.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "_", "-")
	name = strings.ReplaceAll(name, ".", "-")
	return name
}

// PURL returns the Package URL of the declared package.
func (p DeclaredPackage) PURL() string {
	return packageurl.NewPackageURL(packageurl.TypePyPi, "", NormalizeName(p.Name), p.Version, nil, "").ToString()
}

// DeclaredPackageFromPURL turns pkg:pypi/<name>@<version> into a DeclaredPackage.
func DeclaredPackageFromPURL(s string) (DeclaredPackage, error) {
	p, err := purl.Parse(s)
	if err != nil {
		return DeclaredPackage{}, err
	}
	if p.Type != packageurl.TypePyPi {
		return DeclaredPackage{}, fmt.Errorf("unsupported PURL type %q in %s", p.Type, s)
	}
	if p.Version == "" {
		return DeclaredPackage{}, fmt.Errorf("PURL has no version: %s", s)
	}
	return DeclaredPackage{Name: p.Name, Version: p.Version}, nil
}
