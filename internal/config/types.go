package config

import "time"

type Config struct {
	// Input
	File  string
	PURLs []string

	// Evaluation
	WaitTime   int
	OnlyStable bool
	Tolerant   bool

	// Index access
	IndexURL       string
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
	CircuitBreaker bool
	CacheSize      int

	// Output
	Format string
	Debug  bool

	Version string
}
