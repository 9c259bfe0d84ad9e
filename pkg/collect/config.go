// Package collect orchestrates the collection pipeline: enumerate articles
// embedding the case infobox template, extract identifiers from their
// wikitext, attach pageview counts, and persist the resulting case records.
package collect

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/caselink/pkg/wikiapi"
)

// Default collection settings.
const (
	// DefaultTemplate is the infobox template whose transclusions are
	// collected.
	DefaultTemplate = "Template:Infobox US Supreme Court case"

	// DefaultBatchSize is the number of titles per wikitext request; the
	// Action API caps titles at 50 per query.
	DefaultBatchSize = 50

	// DefaultWikitextWorkers is the worker count for wikitext batches.
	DefaultWikitextWorkers = 10

	// DefaultPageviewWorkers is the worker count for pageview requests.
	DefaultPageviewWorkers = 20

	// DefaultOutput is the collected-cases CSV path.
	DefaultOutput = "wiki_infobox_cases.csv"
)

// Config holds collection pipeline settings.
type Config struct {
	// Template is the template whose embedding pages are collected.
	Template string `yaml:"template"`

	// BatchSize is the number of titles per wikitext request (max 50).
	BatchSize int `yaml:"batch_size"`

	// WikitextWorkers is the concurrency for wikitext batch fetches.
	WikitextWorkers int `yaml:"wikitext_workers"`

	// PageviewWorkers is the concurrency for pageview fetches.
	PageviewWorkers int `yaml:"pageview_workers"`

	// SkipPageviews disables pageview collection; counts stay zero.
	SkipPageviews bool `yaml:"skip_pageviews"`

	// Output is the collected-cases CSV path.
	Output string `yaml:"output"`

	// UserAgent overrides the API client User-Agent.
	UserAgent string `yaml:"user_agent"`

	// Rate configures the API client's adaptive limiter.
	Rate RateSettings `yaml:"rate"`
}

// RateSettings is the YAML-facing form of wikiapi.RateConfig, with durations
// expressed as strings ("30ms", "1s").
type RateSettings struct {
	Initial  string  `yaml:"initial"`
	Min      string  `yaml:"min"`
	Max      string  `yaml:"max"`
	Backoff  float64 `yaml:"backoff"`
	Recovery float64 `yaml:"recovery"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Template:        DefaultTemplate,
		BatchSize:       DefaultBatchSize,
		WikitextWorkers: DefaultWikitextWorkers,
		PageviewWorkers: DefaultPageviewWorkers,
		Output:          DefaultOutput,
	}
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if config.BatchSize <= 0 || config.BatchSize > 50 {
		return config, fmt.Errorf("batch_size must be between 1 and 50, got %d", config.BatchSize)
	}
	if config.WikitextWorkers <= 0 || config.PageviewWorkers <= 0 {
		return config, fmt.Errorf("worker counts must be positive")
	}

	return config, nil
}

// RateConfig converts the YAML rate settings to a wikiapi.RateConfig,
// leaving zero values for wikiapi defaults to fill.
func (config Config) RateConfig() (wikiapi.RateConfig, error) {
	rate := wikiapi.RateConfig{
		Backoff:  config.Rate.Backoff,
		Recovery: config.Rate.Recovery,
	}

	var err error
	if rate.Initial, err = parseDuration(config.Rate.Initial); err != nil {
		return rate, fmt.Errorf("invalid rate.initial: %w", err)
	}
	if rate.Min, err = parseDuration(config.Rate.Min); err != nil {
		return rate, fmt.Errorf("invalid rate.min: %w", err)
	}
	if rate.Max, err = parseDuration(config.Rate.Max); err != nil {
		return rate, fmt.Errorf("invalid rate.max: %w", err)
	}
	return rate, nil
}

// parseDuration parses a duration string, treating empty as zero.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
