// Package pkgversions compares locally declared Python package versions with
// the most recent releases published on PyPI.
//
// Declared packages are read from a requirements file or from the
// "pip install" lines of a Dockerfile. For each package the release feed of
// the index is fetched and its newest release compared with the declared
// version.
//
// Basic usage:
//
//	import (
//		"context"
//		"github.com/git-pkgs/pkgversions"
//		_ "github.com/git-pkgs/pkgversions/all"
//	)
//
//	checker, err := pkgversions.New(pkgversions.Options{})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	summary, err := checker.Check(context.Background(), "requirements.txt", 5)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(summary)
//
// Declaration formats register themselves when imported; the all
// subpackage imports every supported format.
package pkgversions

import (
	"context"
	"log/slog"

	"github.com/git-pkgs/purl"

	"github.com/git-pkgs/pkgversions/client"
	"github.com/git-pkgs/pkgversions/fetch"
	"github.com/git-pkgs/pkgversions/internal/core"
	"github.com/git-pkgs/pkgversions/internal/pypi"
	"github.com/git-pkgs/pkgversions/internal/status"
)

// Re-export types from internal/core
type (
	// DeclaredPackage is a (name, version) pair read from a declarations document.
	DeclaredPackage = core.DeclaredPackage

	// LoadSession holds the packages and unparsed lines of one document.
	LoadSession = core.LoadSession

	// RawReleaseRecord is one item of a release feed.
	RawReleaseRecord = core.RawReleaseRecord

	// StabilityBadge flags a version as pre-release or yanked.
	StabilityBadge = core.StabilityBadge

	// StabilityLabel is the qualifier of a StabilityBadge.
	StabilityLabel = core.StabilityLabel

	// CanonicalRelease is a dated release of a package.
	CanonicalRelease = core.CanonicalRelease

	// ReleaseTimeline is the ordered release list of a package.
	ReleaseTimeline = core.ReleaseTimeline

	// StatusDetail compares one declared package with its most recent release.
	StatusDetail = core.StatusDetail

	// StatusSummary aggregates the details of a run.
	StatusSummary = core.StatusSummary

	Getter          = core.Getter
	FileReader      = core.FileReader
	Logger          = core.Logger
	Sleeper         = core.Sleeper
	TimelineFetcher = core.TimelineFetcher
)

// Re-export types from status and client
type (
	// Checker evaluates declared packages against the index.
	Checker = status.Checker

	// Result carries either a summary or an error.
	Result = status.Result

	// URLBuilder constructs URLs for an index.
	URLBuilder = client.URLBuilder
)

// Re-export constants
const (
	LabelPreRelease = core.LabelPreRelease
	LabelYanked     = core.LabelYanked

	DefaultIndexURL    = client.DefaultIndexURL
	DefaultMinWaitTime = status.DefaultMinWaitTime
	DefaultCacheSize   = pypi.DefaultCacheSize
)

// Re-export errors
var (
	ErrParse               = core.ErrParse
	ErrScrapeInconsistency = core.ErrScrapeInconsistency
	ErrNoSuitableReleases  = core.ErrNoSuitableReleases
	ErrNoPackagesFound     = core.ErrNoPackagesFound
	ErrNoLoadingStrategy   = core.ErrNoLoadingStrategy
	ErrInvalidWaitTime     = core.ErrInvalidWaitTime

	ErrNotFound     = fetch.ErrNotFound
	ErrRateLimited  = fetch.ErrRateLimited
	ErrUpstreamDown = fetch.ErrUpstreamDown
)

// Error types
type (
	ParseError               = core.ParseError
	ScrapeInconsistencyError = core.ScrapeInconsistencyError
	NoSuitableReleasesError  = core.NoSuitableReleasesError
	NoPackagesFoundError     = core.NoPackagesFoundError
	NoLoadingStrategyError   = core.NoLoadingStrategyError
	InvalidWaitTimeError     = core.InvalidWaitTimeError
)

// Options configures the checker built by New. Zero values select defaults.
type Options struct {
	// IndexURL is the base URL of the index. Defaults to DefaultIndexURL.
	IndexURL string

	// Getter retrieves feeds and history pages. Defaults to DefaultGetter().
	Getter Getter

	FileReader FileReader
	Logger     Logger
	Sleeper    Sleeper

	// OnlyStable drops pre-release and yanked versions.
	OnlyStable bool

	MinWaitTime int

	// CacheSize bounds the timeline cache. Defaults to DefaultCacheSize.
	CacheSize    int
	DisableCache bool
}

// New builds a Checker backed by the index at opts.IndexURL.
func New(opts Options) (*Checker, error) {
	getter := opts.Getter
	if getter == nil {
		getter = DefaultGetter()
	}

	var timelines TimelineFetcher = pypi.New(opts.IndexURL, getter)
	if !opts.DisableCache {
		cached, err := pypi.NewCachedIndex(timelines, opts.CacheSize)
		if err != nil {
			return nil, err
		}
		timelines = cached
	}

	return status.NewChecker(status.Options{
		Loader:      core.NewLoader(opts.FileReader),
		Timelines:   timelines,
		Logger:      opts.Logger,
		Sleeper:     opts.Sleeper,
		OnlyStable:  opts.OnlyStable,
		MinWaitTime: opts.MinWaitTime,
	}), nil
}

// DefaultGetter returns a fetcher with a per-host circuit breaker:
// - 30s timeout
// - no retries
// - breaker trips after 5 consecutive failures
func DefaultGetter(opts ...fetch.Option) Getter {
	return fetch.NewCircuitBreakerFetcher(fetch.NewFetcher(opts...))
}

// NewIndex returns a TimelineFetcher for the index at baseURL.
// If getter is nil, DefaultGetter() is used.
func NewIndex(baseURL string, getter Getter) TimelineFetcher {
	if getter == nil {
		getter = DefaultGetter()
	}
	return pypi.New(baseURL, getter)
}

// FetchTimeline fetches the release timeline of one package from the default index.
func FetchTimeline(ctx context.Context, name string, onlyStable bool) (*ReleaseTimeline, error) {
	return NewIndex("", nil).FetchTimeline(ctx, name, onlyStable)
}

// Load reads the declared packages of the document at path.
// If reader is nil, files are read from the local filesystem.
func Load(ctx context.Context, path string, reader FileReader) (*LoadSession, error) {
	return core.NewLoader(reader).Load(ctx, path)
}

// SupportedFormats returns the registered declaration formats in lookup order.
// Note: formats must be imported to be registered.
func SupportedFormats() []string {
	return core.SupportedFormats()
}

// SupportedFileNames returns example file names of every registered format.
func SupportedFileNames() []string {
	return core.SupportedFileNames()
}

// DefaultDevcontainerDockerfilePath returns <root>/.devcontainer/Dockerfile
// for a working directory of <root>/src.
func DefaultDevcontainerDockerfilePath(cwd string) string {
	return core.DefaultDevcontainerDockerfilePath(cwd)
}

// PURL represents a parsed Package URL.
type PURL = purl.PURL

// ParsePackageURL parses a Package URL string into its components.
func ParsePackageURL(purlStr string) (*PURL, error) {
	return purl.Parse(purlStr)
}

// ParsePURL converts pkg:pypi/<name>@<version> into a DeclaredPackage.
func ParsePURL(purlStr string) (DeclaredPackage, error) {
	return core.DeclaredPackageFromPURL(purlStr)
}

// BuildURLs returns a map of all non-empty URLs for a package.
// Keys are "feed", "history", "project", and "purl".
func BuildURLs(urls URLBuilder, name, version string) map[string]string {
	return client.BuildURLs(urls, name, version)
}

// NewURLs returns the URL builder of the index at baseURL.
func NewURLs(baseURL string) URLBuilder {
	return client.NewIndexURLs(baseURL)
}

// NewSlogLogger adapts a structured logger to Logger. If l is nil, slog.Default() is used.
func NewSlogLogger(l *slog.Logger) Logger {
	return core.NewSlogLogger(l)
}

// Summarize tallies details into a StatusSummary.
func Summarize(details []StatusDetail) StatusSummary {
	return core.Summarize(details)
}

// WithTimeout sets the timeout of a single request of the default getter.
var WithTimeout = fetch.WithTimeout

// WithMaxRetries enables retries on 429 and 5xx responses in the default getter.
var WithMaxRetries = fetch.WithMaxRetries

// WithUserAgent sets the User-Agent header of the default getter.
var WithUserAgent = fetch.WithUserAgent
