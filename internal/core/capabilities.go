package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Getter retrieves a remote document body.
type Getter interface {
	GetBody(ctx context.Context, url string) ([]byte, error)
}

// FileReader supplies the content of a declarations document.
type FileReader interface {
	ReadFile(ctx context.Context, path string) (string, error)
}

// Logger is a single-message sink.
type Logger interface {
	Log(msg string)
}

// Sleeper blocks between two package evaluations.
type Sleeper interface {
	Sleep(ctx context.Context, seconds int) error
}

// TimelineFetcher returns the release timeline of a package.
type TimelineFetcher interface {
	FetchTimeline(ctx context.Context, packageName string, onlyStable bool) (*ReleaseTimeline, error)
}

// GetterFunc adapts a function to Getter.
type GetterFunc func(ctx context.Context, url string) ([]byte, error)

func (f GetterFunc) GetBody(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

// FileReaderFunc adapts a function to FileReader.
type FileReaderFunc func(ctx context.Context, path string) (string, error)

func (f FileReaderFunc) ReadFile(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(msg string)

func (f LoggerFunc) Log(msg string) {
	f(msg)
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, seconds int) error

func (f SleeperFunc) Sleep(ctx context.Context, seconds int) error {
	return f(ctx, seconds)
}

// OSFileReader reads UTF-8 text files from the local filesystem.
type OSFileReader struct{}

func (OSFileReader) ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// SlogLogger forwards messages to a structured logger at info level.
type SlogLogger struct {
	Logger *slog.Logger
}

// NewSlogLogger returns a SlogLogger, falling back to slog.Default when l is nil.
func NewSlogLogger(l *slog.Logger) *SlogLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogLogger{Logger: l}
}

func (s *SlogLogger) Log(msg string) {
	s.Logger.Info(msg)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Log(string) {}

// LogList logs each item separately.
func LogList[T fmt.Stringer](l Logger, items []T) {
	for _, item := range items {
		l.Log(item.String())
	}
}

// TimeSleeper waits on the wall clock and returns early if ctx is done.
type TimeSleeper struct{}

func (TimeSleeper) Sleep(ctx context.Context, seconds int) error {
	if seconds <= 0 {
		return nil
	}
	timer := time.NewTimer(time.Duration(seconds) * time.Second)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
