package core

import "sort"

// Usable keeps the records that carry both a title and a parsed publish date.
func Usable(records []RawReleaseRecord) []RawReleaseRecord {
	usable := make([]RawReleaseRecord, 0, len(records))
	for _, r := range records {
		if r.Title == nil || *r.Title == "" {
			continue
		}
		if r.PublishedAt == nil {
			continue
		}
		usable = append(usable, r)
	}
	return usable
}

// Canonicalize converts usable records into releases of packageName.
// Records without a title or date are skipped.
func Canonicalize(packageName string, records []RawReleaseRecord) []CanonicalRelease {
	releases := make([]CanonicalRelease, 0, len(records))
	for _, r := range Usable(records) {
		releases = append(releases, CanonicalRelease{
			PackageName: packageName,
			Version:     *r.Title,
			PublishedAt: *r.PublishedAt,
		})
	}
	return releases
}

// SortDescending returns a copy of releases, newest first. Releases sharing
// a publish date keep their document order.
func SortDescending(releases []CanonicalRelease) []CanonicalRelease {
	sorted := make([]CanonicalRelease, len(releases))
	copy(sorted, releases)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})
	return sorted
}

// DropBadged removes every release whose version carries a badge.
func DropBadged(releases []CanonicalRelease, badges []StabilityBadge) []CanonicalRelease {
	flagged := make(map[string]struct{}, len(badges))
	for _, b := range badges {
		flagged[b.Version] = struct{}{}
	}

	kept := make([]CanonicalRelease, 0, len(releases))
	for _, r := range releases {
		if _, ok := flagged[r.Version]; ok {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// TimelineInput carries everything NewTimeline needs.
type TimelineInput struct {
	PackageName   string
	SourceURL     string
	Releases      []CanonicalRelease // sorted, newest first
	RawRecords    []RawReleaseRecord
	Badges        []StabilityBadge
	BadgesScraped bool
}

// NewTimeline validates in and builds a ReleaseTimeline.
func NewTimeline(in TimelineInput) (*ReleaseTimeline, error) {
	if len(in.Releases) == 0 {
		return nil, &NoSuitableReleasesError{URL: in.SourceURL}
	}
	return &ReleaseTimeline{
		PackageName:       in.PackageName,
		MostRecentRelease: in.Releases[0],
		Releases:          in.Releases,
		RawRecords:        in.RawRecords,
		Badges:            in.Badges,
		BadgesScraped:     in.BadgesScraped,
	}, nil
}
