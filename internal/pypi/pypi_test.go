package pypi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/git-pkgs/pkgversions/fetch"
	"github.com/git-pkgs/pkgversions/internal/core"
)

type item struct {
	title   string
	pubDate string
}

func rssFeed(items ...item) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>releases</title>`)
	for _, it := range items {
		b.WriteString("<item>")
		if it.title != "" {
			fmt.Fprintf(&b, "<title>%s</title>", it.title)
		}
		if it.pubDate != "" {
			fmt.Fprintf(&b, "<pubDate>%s</pubDate>", it.pubDate)
		}
		b.WriteString("</item>")
	}
	b.WriteString("</channel></rss>")
	return b.String()
}

func historyPage(badged map[string]string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for version, label := range badged {
		fmt.Fprintf(&b, `<p class="release__version">%s <span class="badge">%s</span></p>`, version, label)
	}
	b.WriteString(`<p class="release__version">0.1.0</p></body></html>`)
	return b.String()
}

type indexServer struct {
	*httptest.Server
	feedHits    atomic.Int32
	historyHits atomic.Int32
}

func newIndexServer(t *testing.T, feeds map[string]string, histories map[string]string) *indexServer {
	t.Helper()
	s := &indexServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case strings.HasPrefix(path, "/rss/project/") && strings.HasSuffix(path, "/releases.xml"):
			s.feedHits.Add(1)
			name := strings.TrimSuffix(strings.TrimPrefix(path, "/rss/project/"), "/releases.xml")
			body, ok := feeds[name]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(body))
		case strings.HasPrefix(path, "/project/"):
			s.historyHits.Add(1)
			name := strings.Trim(strings.TrimPrefix(path, "/project/"), "/")
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(histories[name]))
		default:
			t.Errorf("unexpected path: %s", path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(s.Close)
	return s
}

func TestFetchTimeline(t *testing.T) {
	server := newIndexServer(t, map[string]string{
		"requests": rssFeed(
			item{"2.30.0", "Wed, 03 May 2023 15:15:59 GMT"},
			item{"2.31.0", "Mon, 22 May 2023 15:12:44 GMT"},
			item{"", "Tue, 23 May 2023 10:00:00 GMT"},
			item{"2.32.0", "not a date"},
		),
	}, nil)

	idx := New(server.URL, fetch.NewFetcher())
	timeline, err := idx.FetchTimeline(context.Background(), "requests", false)
	if err != nil {
		t.Fatalf("FetchTimeline failed: %v", err)
	}

	if timeline.MostRecentRelease.Version != "2.31.0" {
		t.Errorf("MostRecentRelease = %q, want %q", timeline.MostRecentRelease.Version, "2.31.0")
	}
	if timeline.MostRecentRelease != timeline.Releases[0] {
		t.Error("MostRecentRelease is not Releases[0]")
	}
	if len(timeline.Releases) != 2 {
		t.Errorf("len(Releases) = %d, want 2", len(timeline.Releases))
	}
	if len(timeline.RawRecords) != 4 {
		t.Errorf("len(RawRecords) = %d, want 4", len(timeline.RawRecords))
	}
	if timeline.BadgesScraped {
		t.Error("BadgesScraped = true without stability filtering")
	}
	if got := server.historyHits.Load(); got != 0 {
		t.Errorf("history hits = %d, want 0", got)
	}
}

func TestFetchTimelineOnlyStable(t *testing.T) {
	server := newIndexServer(t, map[string]string{
		"django": rssFeed(
			item{"5.1rc1", "Thu, 25 Jul 2024 10:00:00 GMT"},
			item{"5.0.7", "Wed, 10 Jul 2024 10:00:00 GMT"},
			item{"5.0.6", "Tue, 04 Jun 2024 10:00:00 GMT"},
		),
	}, map[string]string{
		"django": historyPage(map[string]string{"5.1rc1": "pre-release"}),
	})

	idx := New(server.URL, fetch.NewFetcher())

	stable, err := idx.FetchTimeline(context.Background(), "django", true)
	if err != nil {
		t.Fatalf("FetchTimeline failed: %v", err)
	}
	if stable.MostRecentRelease.Version != "5.0.7" {
		t.Errorf("MostRecentRelease = %q, want %q", stable.MostRecentRelease.Version, "5.0.7")
	}
	if !stable.BadgesScraped || len(stable.Badges) != 1 {
		t.Errorf("Badges = %v (scraped %v), want one badge", stable.Badges, stable.BadgesScraped)
	}

	all, err := idx.FetchTimeline(context.Background(), "django", false)
	if err != nil {
		t.Fatalf("FetchTimeline failed: %v", err)
	}
	if all.MostRecentRelease.Version != "5.1rc1" {
		t.Errorf("MostRecentRelease = %q, want %q", all.MostRecentRelease.Version, "5.1rc1")
	}
	if len(all.Releases) != 3 {
		t.Errorf("len(Releases) = %d, want 3", len(all.Releases))
	}
}

func TestFetchTimelineOnlyStableNoBadges(t *testing.T) {
	server := newIndexServer(t, map[string]string{
		"numpy": rssFeed(item{"2.1.2", "Sat, 05 Oct 2024 10:00:00 GMT"}),
	}, map[string]string{
		"numpy": "<html><body><p class=\"release__version\">2.1.2</p></body></html>",
	})

	timeline, err := New(server.URL, fetch.NewFetcher()).FetchTimeline(context.Background(), "numpy", true)
	if err != nil {
		t.Fatalf("FetchTimeline failed: %v", err)
	}
	if timeline.BadgesScraped {
		t.Error("BadgesScraped = true, want false when the page has no badges")
	}
	if timeline.Badges != nil {
		t.Errorf("Badges = %v, want nil", timeline.Badges)
	}
	if len(timeline.Releases) != 1 {
		t.Errorf("len(Releases) = %d, want 1", len(timeline.Releases))
	}
}

func TestFetchTimelineAllBadged(t *testing.T) {
	server := newIndexServer(t, map[string]string{
		"beta": rssFeed(
			item{"1.0b2", "Thu, 25 Jul 2024 10:00:00 GMT"},
			item{"1.0b1", "Wed, 10 Jul 2024 10:00:00 GMT"},
		),
	}, map[string]string{
		"beta": historyPage(map[string]string{"1.0b2": "pre-release", "1.0b1": "yanked"}),
	})

	idx := New(server.URL, fetch.NewFetcher())

	_, err := idx.FetchTimeline(context.Background(), "beta", true)
	if !errors.Is(err, core.ErrNoSuitableReleases) {
		t.Errorf("FetchTimeline(stable) = %v, want ErrNoSuitableReleases", err)
	}

	all, err := idx.FetchTimeline(context.Background(), "beta", false)
	if err != nil {
		t.Fatalf("FetchTimeline failed: %v", err)
	}
	if len(all.Releases) != 2 {
		t.Errorf("len(Releases) = %d, want 2", len(all.Releases))
	}
}

func TestFetchTimelineNoSuitableReleases(t *testing.T) {
	server := newIndexServer(t, map[string]string{
		"undated": rssFeed(item{"1.0", ""}, item{"", "Wed, 10 Jul 2024 10:00:00 GMT"}),
	}, nil)

	_, err := New(server.URL, fetch.NewFetcher()).FetchTimeline(context.Background(), "undated", false)

	var noReleases *core.NoSuitableReleasesError
	if !errors.As(err, &noReleases) {
		t.Fatalf("FetchTimeline = %v, want NoSuitableReleasesError", err)
	}
	if want := server.URL + "/rss/project/undated/releases.xml"; noReleases.URL != want {
		t.Errorf("URL = %q, want %q", noReleases.URL, want)
	}
	if got := server.historyHits.Load(); got != 0 {
		t.Errorf("history hits = %d, want 0", got)
	}
}

func TestFetchTimelineMalformedFeed(t *testing.T) {
	server := newIndexServer(t, map[string]string{"broken": "this is not a feed"}, nil)

	_, err := New(server.URL, fetch.NewFetcher()).FetchTimeline(context.Background(), "broken", false)

	var parseErr *core.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("FetchTimeline = %v, want ParseError", err)
	}
	if !strings.HasSuffix(parseErr.URL, "/rss/project/broken/releases.xml") {
		t.Errorf("URL = %q, want the feed URL", parseErr.URL)
	}
}

func TestFetchTimelineNotFound(t *testing.T) {
	server := newIndexServer(t, nil, nil)

	_, err := New(server.URL, fetch.NewFetcher()).FetchTimeline(context.Background(), "missing", false)
	if !errors.Is(err, fetch.ErrNotFound) {
		t.Errorf("FetchTimeline = %v, want fetch.ErrNotFound", err)
	}
}

func TestFetchTimelineScrapeInconsistency(t *testing.T) {
	server := newIndexServer(t, map[string]string{
		"odd": rssFeed(item{"1.0", "Wed, 10 Jul 2024 10:00:00 GMT"}),
	}, map[string]string{
		"odd": `<html><body><p class="release__version">1.0 <span></span></p></body></html>`,
	})

	_, err := New(server.URL, fetch.NewFetcher()).FetchTimeline(context.Background(), "odd", true)
	if !errors.Is(err, core.ErrScrapeInconsistency) {
		t.Errorf("FetchTimeline = %v, want ErrScrapeInconsistency", err)
	}
}

func TestURLs(t *testing.T) {
	idx := New("", core.GetterFunc(func(context.Context, string) ([]byte, error) {
		return nil, nil
	}))
	if got, want := idx.URLs().Feed("requests"), "https://pypi.org/rss/project/requests/releases.xml"; got != want {
		t.Errorf("Feed = %q, want %q", got, want)
	}
}
