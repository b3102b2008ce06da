// Package core provides the shared data model, the error taxonomy, the
// declaration-format registry and the release assembly steps.
package core

import (
	"fmt"
	"time"
)

// DateLayout is how release dates appear in descriptions and reports.
const DateLayout = "2006-01-02"

// DeclaredPackage is a (name, version) pair read from a local declarations document.
type DeclaredPackage struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
}

func (p DeclaredPackage) String() string {
	return fmt.Sprintf("{ 'name': '%s', 'version': '%s' }", p.Name, p.Version)
}

// LoadSession is the outcome of loading one declarations document.
type LoadSession struct {
	Packages      []DeclaredPackage
	UnparsedLines []string
}

func (s LoadSession) String() string {
	return fmt.Sprintf("{ 'packages': '%d', 'unparsed_lines': '%d' }", len(s.Packages), len(s.UnparsedLines))
}

// RawReleaseRecord is one <item> of a release feed, verbatim.
// A nil field means the element was absent or empty.
type RawReleaseRecord struct {
	Title          *string
	Link           *string
	Description    *string
	Author         *string
	PublishedAt    *time.Time
	PublishedAtRaw *string
}

func (r RawReleaseRecord) String() string {
	return fmt.Sprintf("{ 'title': '%s', 'link': '%s', 'description': '%s', 'author': '%s', 'pubdate_str': '%s' }",
		optional(r.Title), optional(r.Link), optional(r.Description), optional(r.Author), optional(r.PublishedAtRaw))
}

func optional(s *string) string {
	if s == nil {
		return "None"
	}
	return *s
}

// StabilityLabel is the qualifier shown next to a version on the history page.
type StabilityLabel string

const (
	LabelPreRelease StabilityLabel = "pre-release"
	LabelYanked     StabilityLabel = "yanked"
)

// StabilityBadge flags one version of a package as pre-release or yanked.
type StabilityBadge struct {
	PackageName string         `json:"package_name" yaml:"package_name"`
	Version     string         `json:"version" yaml:"version"`
	Label       StabilityLabel `json:"label" yaml:"label"`
}

func (b StabilityBadge) String() string {
	return fmt.Sprintf("{ 'package_name': '%s', 'version': '%s', 'label': '%s' }", b.PackageName, b.Version, b.Label)
}

// CanonicalRelease is a dated, versioned release derived from a RawReleaseRecord.
type CanonicalRelease struct {
	PackageName string    `json:"package_name" yaml:"package_name"`
	Version     string    `json:"version" yaml:"version"`
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`
}

func (r CanonicalRelease) String() string {
	return fmt.Sprintf("{ 'package_name': '%s', 'version': '%s', 'date': '%s' }",
		r.PackageName, r.Version, r.PublishedAt.Format(DateLayout))
}

// ReleaseTimeline is the result of one fetch for one package.
// Use NewTimeline to build one; Releases is never empty and
// MostRecentRelease is always Releases[0].
type ReleaseTimeline struct {
	PackageName       string
	MostRecentRelease CanonicalRelease
	Releases          []CanonicalRelease
	RawRecords        []RawReleaseRecord

	// Badges holds the scraped badges. BadgesScraped is false when badge
	// data was not requested or the history page had no version labels.
	Badges        []StabilityBadge
	BadgesScraped bool
}

func (t ReleaseTimeline) String() string {
	badges := "None"
	if t.BadgesScraped {
		badges = fmt.Sprint(len(t.Badges))
	}
	return fmt.Sprintf("{ 'package_name': '%s', 'most_recent_release': '('%s', '%s')', 'releases': '%d', 'xml_items': '%d', 'badges': '%s' }",
		t.PackageName, t.MostRecentRelease.Version, t.MostRecentRelease.PublishedAt.Format(DateLayout),
		len(t.Releases), len(t.RawRecords), badges)
}

// StatusDetail compares one declared package with its most recent release.
type StatusDetail struct {
	CurrentPackage    DeclaredPackage  `json:"current_package" yaml:"current_package"`
	MostRecentRelease CanonicalRelease `json:"most_recent_release" yaml:"most_recent_release"`
	IsVersionMatching bool             `json:"is_version_matching" yaml:"is_version_matching"`
	Description       string           `json:"description" yaml:"description"`
}

func (d StatusDetail) String() string {
	return fmt.Sprintf("{ 'description': '%s' }", d.Description)
}

// StatusSummary aggregates the details of one evaluation run.
type StatusSummary struct {
	TotalPackages      int            `json:"total_packages" yaml:"total_packages"`
	MatchingCount      int            `json:"matching" yaml:"matching"`
	MatchingPercent    string         `json:"matching_prc" yaml:"matching_prc"`
	MismatchingCount   int            `json:"mismatching" yaml:"mismatching"`
	MismatchingPercent string         `json:"mismatching_prc" yaml:"mismatching_prc"`
	Details            []StatusDetail `json:"details" yaml:"details"`
}

func (s StatusSummary) String() string {
	return fmt.Sprintf("{ 'total_packages': '%d', 'matching': '%d', 'matching_prc': '%s', 'mismatching': '%d', 'mismatching_prc': '%s' }",
		s.TotalPackages, s.MatchingCount, s.MatchingPercent, s.MismatchingCount, s.MismatchingPercent)
}

// Percent formats value/total as a percentage with two decimals.
// A zero total yields "0.00%".
func Percent(value, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(value)/float64(total)*100)
}

// Summarize tallies details into a StatusSummary.
func Summarize(details []StatusDetail) StatusSummary {
	matching := 0
	for _, d := range details {
		if d.IsVersionMatching {
			matching++
		}
	}
	total := len(details)
	mismatching := total - matching

	return StatusSummary{
		TotalPackages:      total,
		MatchingCount:      matching,
		MatchingPercent:    Percent(matching, total),
		MismatchingCount:   mismatching,
		MismatchingPercent: Percent(mismatching, total),
		Details:            details,
	}
}
