// Package config loads command-line, environment and file configuration.
package config

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/git-pkgs/pkgversions/internal/core"
	"github.com/git-pkgs/pkgversions/internal/report"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Input
	File  string   `long:"file" short:"f" env:"PKGVERSIONS_FILE" description:"Declarations document (requirements.txt, requirements_<suffix>.txt, Dockerfile, Dockerfile_<suffix>)"`
	PURLs []string `long:"purl" short:"p" description:"Check a single package given as pkg:pypi/<name>@<version> (repeatable)"`

	// Evaluation
	Wait     int  `long:"wait" short:"w" env:"PKGVERSIONS_WAIT" default:"5" description:"Seconds to wait between two packages"`
	Stable   bool `long:"stable" env:"PKGVERSIONS_STABLE" description:"Ignore pre-release and yanked versions"`
	Tolerant bool `long:"tolerant" env:"PKGVERSIONS_TOLERANT" description:"Log failures instead of exiting with an error"`

	// Index access
	IndexURL         string        `long:"index-url" env:"PKGVERSIONS_INDEX_URL" default:"https://pypi.org" description:"Base URL of the package index"`
	UserAgent        string        `long:"user-agent" env:"PKGVERSIONS_USER_AGENT" default:"pkgversions/1.0" description:"User agent string for HTTP requests"`
	Timeout          time.Duration `long:"timeout" env:"PKGVERSIONS_TIMEOUT" default:"30s" description:"Timeout of a single HTTP request"`
	MaxRetries       int           `long:"max-retries" env:"PKGVERSIONS_MAX_RETRIES" default:"0" description:"Retries on rate limiting and server errors"`
	NoCircuitBreaker bool          `long:"no-circuit-breaker" env:"PKGVERSIONS_NO_CIRCUIT_BREAKER" description:"Disable the per-host circuit breaker"`
	CacheSize        int           `long:"cache-size" env:"PKGVERSIONS_CACHE_SIZE" default:"128" description:"Number of release timelines kept in memory"`

	// Output
	Format string `long:"format" short:"o" env:"PKGVERSIONS_FORMAT" default:"text" description:"Report format (text, json, yaml)"`
	Debug  bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Config string `long:"config" short:"c" env:"PKGVERSIONS_CONFIG" description:"YAML configuration file"`
}

// fileCfg mirrors rawCfg for the YAML file. Nil fields are absent.
type fileCfg struct {
	File             *string  `yaml:"file"`
	PURLs            []string `yaml:"purls"`
	Wait             *int     `yaml:"wait"`
	Stable           *bool    `yaml:"stable"`
	Tolerant         *bool    `yaml:"tolerant"`
	IndexURL         *string  `yaml:"index_url"`
	UserAgent        *string  `yaml:"user_agent"`
	Timeout          *string  `yaml:"timeout"`
	MaxRetries       *int     `yaml:"max_retries"`
	NoCircuitBreaker *bool    `yaml:"no_circuit_breaker"`
	CacheSize        *int     `yaml:"cache_size"`
	Format           *string  `yaml:"format"`
	Debug            *bool    `yaml:"debug"`
}

// Load parses args (without the program name). A .env file in the working
// directory is loaded first. It returns (nil, nil) when help was requested.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	var raw rawCfg
	parser := flags.NewParser(&raw, flags.Default)
	parser.Usage = "[OPTIONS] [FILE]"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	var positional string
	if len(rest) > 0 {
		positional = rest[0]
	}

	if raw.Config != "" {
		if err := applyFile(parser, &raw, raw.Config, positional != ""); err != nil {
			return nil, err
		}
	}
	if raw.File == "" && positional != "" {
		raw.File = positional
	}

	cfg := &Config{
		File:           raw.File,
		PURLs:          raw.PURLs,
		WaitTime:       raw.Wait,
		OnlyStable:     raw.Stable,
		Tolerant:       raw.Tolerant,
		IndexURL:       raw.IndexURL,
		UserAgent:      raw.UserAgent,
		Timeout:        raw.Timeout,
		MaxRetries:     raw.MaxRetries,
		CircuitBreaker: !raw.NoCircuitBreaker,
		CacheSize:      raw.CacheSize,
		Format:         raw.Format,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if err := setDefaults(cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFile copies values from the YAML file at path into raw for every
// option that was given neither on the command line nor in the environment.
// The file's input (file or purls) is ignored once any input was given
// there, positional included.
func applyFile(parser *flags.Parser, raw *rawCfg, path string, positional bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file fileCfg
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	open := func(long string) bool {
		opt := parser.FindOptionByLongName(long)
		if opt == nil {
			return false
		}
		if opt.IsSet() && !opt.IsSetDefault() {
			return false
		}
		if key := opt.EnvKeyWithNamespace(); key != "" {
			if _, ok := os.LookupEnv(key); ok {
				return false
			}
		}
		return true
	}

	if !positional && open("file") && open("purl") {
		setString(true, &raw.File, file.File)
		if len(file.PURLs) > 0 {
			raw.PURLs = file.PURLs
		}
	}
	setValue(open("wait"), &raw.Wait, file.Wait)
	setValue(open("stable"), &raw.Stable, file.Stable)
	setValue(open("tolerant"), &raw.Tolerant, file.Tolerant)
	setString(open("index-url"), &raw.IndexURL, file.IndexURL)
	setString(open("user-agent"), &raw.UserAgent, file.UserAgent)
	setValue(open("max-retries"), &raw.MaxRetries, file.MaxRetries)
	setValue(open("no-circuit-breaker"), &raw.NoCircuitBreaker, file.NoCircuitBreaker)
	setValue(open("cache-size"), &raw.CacheSize, file.CacheSize)
	setString(open("format"), &raw.Format, file.Format)
	setValue(open("debug"), &raw.Debug, file.Debug)

	if open("timeout") && file.Timeout != nil {
		d, err := time.ParseDuration(*file.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q in %s: %w", *file.Timeout, path, err)
		}
		raw.Timeout = d
	}
	return nil
}

func setValue[T any](open bool, dst *T, src *T) {
	if open && src != nil {
		*dst = *src
	}
}

func setString(open bool, dst *string, src *string) {
	if open && src != nil && *src != "" {
		*dst = *src
	}
}

func setDefaults(cfg *Config) error {
	if cfg.File == "" && len(cfg.PURLs) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to resolve working directory: %w", err)
		}
		cfg.File = core.DefaultDevcontainerDockerfilePath(cwd)
	}
	if cfg.Format == "" {
		cfg.Format = report.FormatText
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.File != "" && len(cfg.PURLs) > 0 {
		return errors.New("--file and --purl are mutually exclusive")
	}
	if !slices.Contains(report.Formats, cfg.Format) {
		return fmt.Errorf("unknown format %q (supported: %v)", cfg.Format, report.Formats)
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("max retries can't be negative, got %d", cfg.MaxRetries)
	}
	return nil
}
