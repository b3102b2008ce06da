// Package status compares declared package versions with the most recent
// releases published on the index.
package status

import (
	"context"
	"errors"

	"github.com/git-pkgs/pkgversions/internal/core"
)

// DefaultMinWaitTime is the smallest accepted delay, in seconds, between two packages.
const DefaultMinWaitTime = 5

// PackageLoader reads the declared packages of a document.
type PackageLoader interface {
	Load(ctx context.Context, path string) (*core.LoadSession, error)
}

// Options holds the collaborators of a Checker. Timelines is required;
// the others fall back to defaults when nil.
type Options struct {
	Loader      PackageLoader
	Timelines   core.TimelineFetcher
	Logger      core.Logger
	Sleeper     core.Sleeper
	OnlyStable  bool
	MinWaitTime int
}

// Checker evaluates packages one at a time, in declaration order.
type Checker struct {
	loader      PackageLoader
	timelines   core.TimelineFetcher
	logger      core.Logger
	sleeper     core.Sleeper
	onlyStable  bool
	minWaitTime int
}

// Result carries either a summary or the error that prevented it.
type Result struct {
	Summary *core.StatusSummary
	Err     error
}

func NewChecker(opts Options) *Checker {
	c := &Checker{
		loader:      opts.Loader,
		timelines:   opts.Timelines,
		logger:      opts.Logger,
		sleeper:     opts.Sleeper,
		onlyStable:  opts.OnlyStable,
		minWaitTime: opts.MinWaitTime,
	}
	if c.loader == nil {
		c.loader = core.NewLoader(nil)
	}
	if c.logger == nil {
		c.logger = core.NewSlogLogger(nil)
	}
	if c.sleeper == nil {
		c.sleeper = core.TimeSleeper{}
	}
	if c.minWaitTime <= 0 {
		c.minWaitTime = DefaultMinWaitTime
	}
	return c
}

var errNoTimelines = errors.New("status: no timeline fetcher configured")

// Check loads the document at path and evaluates every declared package.
// Any failure aborts the run without a summary.
func (c *Checker) Check(ctx context.Context, path string, waitingTime int) (*core.StatusSummary, error) {
	if err := c.validate(waitingTime); err != nil {
		return nil, err
	}

	c.logger.Log(msgStarted())
	c.logger.Log(msgLoadingFrom(path))
	c.logger.Log(msgWaitingTime(waitingTime))

	session, err := c.loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	c.logger.Log(msgPackagesLoaded(len(session.Packages)))
	c.logger.Log(msgUnparsedLines(session.UnparsedLines))

	return c.run(ctx, session.Packages, waitingTime)
}

// CheckPackages evaluates an explicit package list, e.g. one built from PURLs.
func (c *Checker) CheckPackages(ctx context.Context, packages []core.DeclaredPackage, waitingTime int) (*core.StatusSummary, error) {
	if err := c.validate(waitingTime); err != nil {
		return nil, err
	}
	if len(packages) == 0 {
		return nil, &core.NoPackagesFoundError{Path: "arguments"}
	}

	c.logger.Log(msgStarted())
	c.logger.Log(msgWaitingTime(waitingTime))
	c.logger.Log(msgPackagesLoaded(len(packages)))

	return c.run(ctx, packages, waitingTime)
}

// Evaluate is Check returning a Result.
func (c *Checker) Evaluate(ctx context.Context, path string, waitingTime int) Result {
	summary, err := c.Check(ctx, path, waitingTime)
	return Result{Summary: summary, Err: err}
}

// EvaluatePackages is CheckPackages returning a Result.
func (c *Checker) EvaluatePackages(ctx context.Context, packages []core.DeclaredPackage, waitingTime int) Result {
	summary, err := c.CheckPackages(ctx, packages, waitingTime)
	return Result{Summary: summary, Err: err}
}

// TryCheck is Check that logs the error message and returns nil on failure.
func (c *Checker) TryCheck(ctx context.Context, path string, waitingTime int) *core.StatusSummary {
	return c.Settle(c.Evaluate(ctx, path, waitingTime))
}

// Settle returns the summary of res, or logs its error and returns nil.
func (c *Checker) Settle(res Result) *core.StatusSummary {
	switch {
	case res.Err != nil:
		c.logger.Log(res.Err.Error())
		return nil
	default:
		return res.Summary
	}
}

// LogSummary logs summary followed by each of its details.
func (c *Checker) LogSummary(summary *core.StatusSummary) {
	c.logger.Log(summary.String())
	core.LogList(c.logger, summary.Details)
}

func (c *Checker) validate(waitingTime int) error {
	if waitingTime < c.minWaitTime {
		return &core.InvalidWaitTimeError{WaitingTime: waitingTime, Minimum: c.minWaitTime}
	}
	if c.timelines == nil {
		return errNoTimelines
	}
	return nil
}

func (c *Checker) run(ctx context.Context, packages []core.DeclaredPackage, waitingTime int) (*core.StatusSummary, error) {
	c.logger.Log(msgEvaluationStarted())
	c.logger.Log(msgEstimatedTime(waitingTime, len(packages)))

	details, err := c.evaluateAll(ctx, packages, waitingTime)
	if err != nil {
		return nil, err
	}

	c.logger.Log(msgEvaluationCompleted())
	core.LogList(c.logger, details)
	c.logger.Log(msgSummaryStarted())

	summary := core.Summarize(details)

	c.logger.Log(msgSummaryCreated())
	c.logger.Log(summary.String())
	c.logger.Log(msgCompleted())

	return &summary, nil
}

func (c *Checker) evaluateAll(ctx context.Context, packages []core.DeclaredPackage, waitingTime int) ([]core.StatusDetail, error) {
	details := make([]core.StatusDetail, 0, len(packages))
	for i, pkg := range packages {
		timeline, err := c.timelines.FetchTimeline(ctx, pkg.Name, c.onlyStable)
		if err != nil {
			return nil, err
		}
		details = append(details, Compare(pkg, timeline.MostRecentRelease))

		if i < len(packages)-1 {
			if err := c.sleeper.Sleep(ctx, waitingTime); err != nil {
				return nil, err
			}
		}
	}
	return details, nil
}

// Compare matches the declared version against release by exact string equality.
func Compare(pkg core.DeclaredPackage, release core.CanonicalRelease) core.StatusDetail {
	matching := pkg.Version == release.Version
	return core.StatusDetail{
		CurrentPackage:    pkg,
		MostRecentRelease: release,
		IsVersionMatching: matching,
		Description:       Describe(pkg, release, matching),
	}
}
