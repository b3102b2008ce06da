// Command pkgversions reports whether locally declared Python packages are
// on the most recent release published on PyPI.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/git-pkgs/pkgversions"
	_ "github.com/git-pkgs/pkgversions/all"
	"github.com/git-pkgs/pkgversions/fetch"
	"github.com/git-pkgs/pkgversions/internal/config"
	"github.com/git-pkgs/pkgversions/internal/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if cfg == nil {
		// Help was shown
		return 0
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	logger.Debug("configuration loaded",
		"version", cfg.Version,
		"file", cfg.File,
		"purls", len(cfg.PURLs),
		"index_url", cfg.IndexURL,
		"stable", cfg.OnlyStable,
		"max_retries", cfg.MaxRetries,
		"circuit_breaker", cfg.CircuitBreaker)

	checker, err := pkgversions.New(pkgversions.Options{
		IndexURL:   cfg.IndexURL,
		Getter:     newGetter(cfg),
		Logger:     pkgversions.NewSlogLogger(logger),
		OnlyStable: cfg.OnlyStable,
		CacheSize:  cfg.CacheSize,
	})
	if err != nil {
		logger.Error("failed to build checker", "error", err)
		return 1
	}

	var res pkgversions.Result
	if len(cfg.PURLs) > 0 {
		packages := make([]pkgversions.DeclaredPackage, 0, len(cfg.PURLs))
		for _, p := range cfg.PURLs {
			pkg, err := pkgversions.ParsePURL(p)
			if err != nil {
				logger.Error("invalid package URL", "purl", p, "error", err)
				return 2
			}
			packages = append(packages, pkg)
		}
		res = checker.EvaluatePackages(ctx, packages, cfg.WaitTime)
	} else {
		res = checker.Evaluate(ctx, cfg.File, cfg.WaitTime)
	}

	if cfg.Tolerant {
		summary := checker.Settle(res)
		if summary == nil {
			return 0
		}
		res.Summary = summary
	} else if res.Err != nil {
		logger.Error("status check failed", "error", res.Err)
		return 1
	}

	if err := report.Render(stdout, res.Summary, cfg.Format); err != nil {
		logger.Error("failed to render report", "error", err)
		return 1
	}
	return 0
}

func newGetter(cfg *config.Config) pkgversions.Getter {
	f := fetch.NewFetcher(
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithMaxRetries(cfg.MaxRetries),
	)
	if !cfg.CircuitBreaker {
		return f
	}
	return fetch.NewCircuitBreakerFetcher(f)
}
