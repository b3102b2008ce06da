// Package badge extracts pre-release and yanked markers from a package's
// rendered release history page.
package badge

import (
	"bytes"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/git-pkgs/pkgversions/internal/core"
)

const (
	// VersionXPath selects the version text of every release entry carrying a qualifier span.
	VersionXPath = "//p[@class='release__version'][span]/text()"
	// LabelXPath selects the qualifier text of those entries.
	LabelXPath = "//p[@class='release__version'][span]/span/text()"
)

// Scrape pairs the Nth badged version with the Nth label. found is false
// when the page lists no badged version at all.
func Scrape(packageName string, data []byte) (badges []core.StabilityBadge, found bool, err error) {
	doc, err := htmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, false, err
	}

	versions, err := texts(doc, VersionXPath)
	if err != nil {
		return nil, false, err
	}
	if len(versions) == 0 {
		return nil, false, nil
	}

	labels, err := texts(doc, LabelXPath)
	if err != nil {
		return nil, false, err
	}
	if len(versions) != len(labels) {
		return nil, false, &core.ScrapeInconsistencyError{
			PackageName: packageName,
			Versions:    len(versions),
			Labels:      len(labels),
		}
	}

	badges = make([]core.StabilityBadge, 0, len(versions))
	for i, v := range versions {
		badges = append(badges, core.StabilityBadge{
			PackageName: packageName,
			Version:     v,
			Label:       core.StabilityLabel(labels[i]),
		})
	}
	return badges, true, nil
}

// texts evaluates expr and returns the trimmed, non-empty text of each match.
func texts(doc *html.Node, expr string) ([]string, error) {
	nodes, err := htmlquery.QueryAll(doc, expr)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if s := strings.TrimSpace(htmlquery.InnerText(n)); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
