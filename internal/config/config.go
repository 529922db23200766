// Package config defines process configuration and its validation.
//
// Conventions:
//   - New builds a Config with defaults; Load layers file and env on top.
//   - Validate fails fast; nothing is analyzed with an invalid Config.
//   - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"math"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/okian/behavmetrix/internal/domain/elo"
	"github.com/okian/behavmetrix/pkg/metrics"
)

// Source kinds.
const (
	SourceSQLite = "sqlite"
	SourceJSON   = "json"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Source selects the snapshot reader: sqlite or json.
	Source string `koanf:"source"`

	// SourcePath is the SQLite database or JSON snapshot location.
	SourcePath string `koanf:"source_path"`

	// WorkerCount sets the number of analysis workers in batch mode.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// BaseScore is every individual's starting rating.
	BaseScore float64 `koanf:"base_score"`

	// KFactor scales every rating update.
	KFactor float64 `koanf:"k_factor"`

	// DominanceVocabulary maps behavior codes to the winning side
	// ("actor" or "receiver"). Empty uses AGG, DOM and SUB.
	DominanceVocabulary map[string]string `koanf:"dominance_vocabulary"`

	// InstabilityThreshold is the rating swing, in points, that flags an individual.
	InstabilityThreshold float64 `koanf:"instability_threshold"`

	// StressAlertThreshold is the mean stress that raises an alert.
	StressAlertThreshold float64 `koanf:"stress_alert_threshold"`

	// StressWindowDays restricts stress means to recent samples. 0 uses all.
	StressWindowDays int `koanf:"stress_window_days"`

	// EnrichmentGapDays is the longest tolerated interval between enrichment entries.
	EnrichmentGapDays int `koanf:"enrichment_gap_days"`

	// WelfareWatchThreshold is the welfare score below which an individual is flagged yellow.
	WelfareWatchThreshold float64 `koanf:"welfare_watch_threshold"`

	// WelfareAlertThreshold is the welfare score below which an individual is flagged red.
	WelfareAlertThreshold float64 `koanf:"welfare_alert_threshold"`

	// AffiliativeCode is the behavior whose colony share is reported.
	AffiliativeCode string `koanf:"affiliative_code"`

	// WindowDays bounds the log window read from the source. 0 reads everything.
	WindowDays int `koanf:"window_days"`

	// AnalysisTimeoutMS caps one analysis pass. 0 disables the timeout.
	AnalysisTimeoutMS int `koanf:"analysis_timeout_ms"`

	// MetricsTextfile, when set, receives the metrics after a run.
	MetricsTextfile string `koanf:"metrics_textfile"`

	// PushgatewayURL, when set, receives the metrics after a run.
	PushgatewayURL string `koanf:"pushgateway_url"`

	// MetricsEnabled turns metric collection on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace and MetricsSubsystem prefix every metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`

	// MetricsLabels are constant labels added to every metric, e.g. site.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// MetricsBuckets are the latency histogram buckets in milliseconds.
	MetricsBuckets []float64 `koanf:"metrics_buckets"`
}

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Source:                SourceSQLite,
		SourcePath:            "behavmetrix.db",
		WorkerCount:           runtime.NumCPU(),
		QueueSize:             1024,
		BaseScore:             elo.DefaultBaseScore,
		KFactor:               elo.DefaultKFactor,
		InstabilityThreshold:  elo.DefaultInstabilityThreshold,
		StressAlertThreshold:  8.0,
		EnrichmentGapDays:     3,
		WelfareWatchThreshold: 60,
		WelfareAlertThreshold: 40,
		AffiliativeCode:       "GROOM",
		AnalysisTimeoutMS:     30_000,
		MetricsEnabled:        true,
		MetricsNamespace:      "behavmetrix",
		MetricsSubsystem:      "analysis",
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Source) {
	case SourceSQLite, SourceJSON:
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidConfig, c.Source)
	}
	if c.SourcePath == "" {
		return fmt.Errorf("%w: source_path must not be empty", ErrInvalidConfig)
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	}
	if !finite(c.BaseScore) {
		return fmt.Errorf("%w: base_score must be finite", ErrInvalidConfig)
	}
	if !finite(c.KFactor) || c.KFactor <= 0 {
		return fmt.Errorf("%w: k_factor must be positive", ErrInvalidConfig)
	}
	if !finite(c.InstabilityThreshold) || c.InstabilityThreshold < 0 {
		return fmt.Errorf("%w: instability_threshold must not be negative", ErrInvalidConfig)
	}
	if !finite(c.StressAlertThreshold) {
		return fmt.Errorf("%w: stress_alert_threshold must be finite", ErrInvalidConfig)
	}
	if c.StressWindowDays < 0 || c.WindowDays < 0 {
		return fmt.Errorf("%w: windows must not be negative", ErrInvalidConfig)
	}
	if c.EnrichmentGapDays <= 0 {
		return fmt.Errorf("%w: enrichment_gap_days must be positive", ErrInvalidConfig)
	}
	if !finite(c.WelfareWatchThreshold) || !finite(c.WelfareAlertThreshold) ||
		c.WelfareAlertThreshold > c.WelfareWatchThreshold {
		return fmt.Errorf("%w: welfare_alert_threshold must not exceed welfare_watch_threshold", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.AffiliativeCode) == "" {
		return fmt.Errorf("%w: affiliative_code must not be empty", ErrInvalidConfig)
	}
	if c.AnalysisTimeoutMS < 0 {
		return fmt.Errorf("%w: analysis_timeout_ms must not be negative", ErrInvalidConfig)
	}
	if _, err := c.Vocabulary(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return c.validateMetrics()
}

// validateMetrics restricts names to the legacy Prometheus charset.
func (c *Config) validateMetrics() error {
	if !metricName.MatchString(c.MetricsNamespace) || !metricName.MatchString(c.MetricsSubsystem) {
		return fmt.Errorf("%w: metrics namespace and subsystem must be metric name parts", ErrInvalidConfig)
	}
	for name := range c.MetricsLabels {
		if !metricName.MatchString(name) || strings.HasPrefix(name, "__") {
			return fmt.Errorf("%w: invalid metrics label %q", ErrInvalidConfig, name)
		}
	}
	for i, b := range c.MetricsBuckets {
		if !finite(b) || (i > 0 && b <= c.MetricsBuckets[i-1]) {
			return fmt.Errorf("%w: metrics_buckets must be finite and strictly increasing", ErrInvalidConfig)
		}
	}
	return nil
}

// MetricsOptions translates the metrics settings into manager options.
func (c *Config) MetricsOptions() []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricsEnabled(c.MetricsEnabled),
		metrics.WithNamespace(c.MetricsNamespace),
		metrics.WithSubsystem(c.MetricsSubsystem),
		metrics.WithCustomLabels(c.MetricsLabels),
		metrics.WithHistogramBuckets(c.MetricsBuckets),
	}
}

// Vocabulary parses DominanceVocabulary, falling back to the default table.
func (c *Config) Vocabulary() (elo.Vocabulary, error) {
	if len(c.DominanceVocabulary) == 0 {
		return elo.DefaultVocabulary(), nil
	}
	return elo.ParseVocabulary(c.DominanceVocabulary)
}

// StressWindow returns the stress window as a duration.
func (c *Config) StressWindow() time.Duration {
	return time.Duration(c.StressWindowDays) * 24 * time.Hour
}

// Window returns the log window as a duration.
func (c *Config) Window() time.Duration {
	return time.Duration(c.WindowDays) * 24 * time.Hour
}

// AnalysisTimeout returns the per-pass timeout.
func (c *Config) AnalysisTimeout() time.Duration {
	return time.Duration(c.AnalysisTimeoutMS) * time.Millisecond
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
