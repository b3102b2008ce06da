package core

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is returned when a feed document is not well-formed.
	ErrParse = errors.New("malformed feed document")

	// ErrScrapeInconsistency is returned when a history page pairs an
	// unequal number of versions and labels.
	ErrScrapeInconsistency = errors.New("inconsistent history page")

	// ErrNoSuitableReleases is returned when a feed yields no dated, titled release.
	ErrNoSuitableReleases = errors.New("no suitable releases")

	// ErrNoPackagesFound is returned when a declarations document yields no package.
	ErrNoPackagesFound = errors.New("no packages found")

	// ErrNoLoadingStrategy is returned for an unsupported declarations file name.
	ErrNoLoadingStrategy = errors.New("no loading strategy")

	// ErrInvalidWaitTime is returned when the inter-request delay is below the minimum.
	ErrInvalidWaitTime = errors.New("invalid waiting time")
)

// ParseError wraps the underlying decoder failure.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("unable to parse feed document from '%s': %v", e.URL, e.Err)
	}
	return fmt.Sprintf("unable to parse feed document: %v", e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// ScrapeInconsistencyError reports a version/label count mismatch.
type ScrapeInconsistencyError struct {
	PackageName string
	Versions    int
	Labels      int
}

func (e *ScrapeInconsistencyError) Error() string {
	return fmt.Sprintf("the history page of '%s' lists %d badged versions but %d labels", e.PackageName, e.Versions, e.Labels)
}

func (e *ScrapeInconsistencyError) Unwrap() error {
	return ErrScrapeInconsistency
}

// NoSuitableReleasesError names the feed that yielded nothing usable.
type NoSuitableReleasesError struct {
	URL string
}

func (e *NoSuitableReleasesError) Error() string {
	return fmt.Sprintf("No suitable XML items found in '%s'. The application is not able to establish the most recent release.", e.URL)
}

func (e *NoSuitableReleasesError) Unwrap() error {
	return ErrNoSuitableReleases
}

// NoPackagesFoundError names the declarations document without packages.
type NoPackagesFoundError struct {
	Path string
}

func (e *NoPackagesFoundError) Error() string {
	return fmt.Sprintf("No packages found in '%s'. Please open the documentation to check the expected layout of the supported files.", e.Path)
}

func (e *NoPackagesFoundError) Unwrap() error {
	return ErrNoPackagesFound
}

// NoLoadingStrategyError names the unsupported declarations document.
type NoLoadingStrategyError struct {
	Path      string
	Supported []string
}

func (e *NoLoadingStrategyError) Error() string {
	return fmt.Sprintf("No loading strategy found for the provided file name. ('file_path': '%s', 'supported_file_names': %q)", e.Path, e.Supported)
}

func (e *NoLoadingStrategyError) Unwrap() error {
	return ErrNoLoadingStrategy
}

// InvalidWaitTimeError is returned before any I/O when the waiting time is too short.
type InvalidWaitTimeError struct {
	WaitingTime int
	Minimum     int
}

func (e *InvalidWaitTimeError) Error() string {
	return fmt.Sprintf("Waiting time ('%d') can't be less than %d seconds.", e.WaitingTime, e.Minimum)
}

func (e *InvalidWaitTimeError) Unwrap() error {
	return ErrInvalidWaitTime
}
