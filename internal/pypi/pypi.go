// Package pypi assembles release timelines from pypi.org and compatible indexes.
package pypi

import (
	"context"
	"errors"
	"fmt"

	"github.com/git-pkgs/pkgversions/client"
	"github.com/git-pkgs/pkgversions/internal/badge"
	"github.com/git-pkgs/pkgversions/internal/core"
	"github.com/git-pkgs/pkgversions/internal/feed"
)

// Index retrieves a package's release feed, and its history page when
// stability filtering is requested, through an injected Getter.
type Index struct {
	getter core.Getter
	urls   *client.IndexURLs
}

// New returns an Index rooted at baseURL, or client.DefaultIndexURL when empty.
func New(baseURL string, getter core.Getter) *Index {
	return &Index{
		getter: getter,
		urls:   client.NewIndexURLs(baseURL),
	}
}

func (i *Index) URLs() client.URLBuilder {
	return i.urls
}

// FetchTimeline builds the release timeline of name, newest first. With
// onlyStable, releases flagged on the history page are dropped.
func (i *Index) FetchTimeline(ctx context.Context, name string, onlyStable bool) (*core.ReleaseTimeline, error) {
	feedURL := i.urls.Feed(name)

	data, err := i.getter.GetBody(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("fetching release feed of %s: %w", name, err)
	}

	records, err := feed.Parse(data)
	if err != nil {
		var parseErr *core.ParseError
		if errors.As(err, &parseErr) {
			parseErr.URL = feedURL
		}
		return nil, err
	}

	if len(core.Usable(records)) == 0 {
		return nil, &core.NoSuitableReleasesError{URL: feedURL}
	}
	releases := core.SortDescending(core.Canonicalize(name, records))

	in := core.TimelineInput{
		PackageName: name,
		SourceURL:   feedURL,
		Releases:    releases,
		RawRecords:  records,
	}

	if onlyStable {
		badges, found, err := i.fetchBadges(ctx, name)
		if err != nil {
			return nil, err
		}
		if found {
			in.Releases = core.DropBadged(releases, badges)
			in.Badges = badges
			in.BadgesScraped = true
		}
	}

	return core.NewTimeline(in)
}

func (i *Index) fetchBadges(ctx context.Context, name string) ([]core.StabilityBadge, bool, error) {
	data, err := i.getter.GetBody(ctx, i.urls.History(name))
	if err != nil {
		return nil, false, fmt.Errorf("fetching release history of %s: %w", name, err)
	}
	return badge.Scrape(name, data)
}
