// Package projectconfig provides the ProjectConfig struct and loader for
// .council.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the project configuration file looked up by Load.
const ConfigFileName = ".council.yaml"

// Default values for project configuration. These are the single source of
// truth — New() references them and no other code should duplicate them.
const (
	DefaultEngine  = "openrouter"
	DefaultTimeout = 120
	DefaultWorkers = 4

	DefaultResultsDir     = "results/"
	DefaultTranscriptsDir = "transcripts/"

	DefaultCacheDir        = ".council-cache"
	DefaultPerformancePath = ".council/performance.json"
	DefaultSessionDir      = ".council/sessions"

	DefaultPublishContainer = "council-results"
)

// ModelEntry is one council member in configuration.
type ModelEntry struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name,omitempty"`
}

// EngineConfig selects and configures the completion engine.
type EngineConfig struct {
	Kind   string         `yaml:"kind,omitempty"`
	Config map[string]any `yaml:"config,omitempty"`
}

// OptionsConfig holds aggregation behavior toggles.
type OptionsConfig struct {
	WeightedAggregation *bool `yaml:"weighted_aggregation,omitempty"`
	ConfidenceWeighting *bool `yaml:"confidence_weighting,omitempty"`
	StructuredRankings  *bool `yaml:"structured_rankings,omitempty"`
}

// PathsConfig holds output directory paths.
type PathsConfig struct {
	Results     string `yaml:"results,omitempty"`
	Transcripts string `yaml:"transcripts,omitempty"`
}

// PerformanceConfig holds performance-history settings.
type PerformanceConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Path    string `yaml:"path,omitempty"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// SessionConfig holds session logging settings.
type SessionConfig struct {
	Log *bool  `yaml:"log,omitempty"`
	Dir string `yaml:"dir,omitempty"`
}

// AzurePublishConfig holds Azure Blob Storage publishing settings.
type AzurePublishConfig struct {
	Enabled    *bool  `yaml:"enabled,omitempty"`
	ServiceURL string `yaml:"service_url,omitempty"`
	Container  string `yaml:"container,omitempty"`
}

// PublishConfig holds result publishing settings.
type PublishConfig struct {
	Azure AzurePublishConfig `yaml:"azure,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .council.yaml.
type ProjectConfig struct {
	Models         []ModelEntry      `yaml:"models,omitempty"`
	Chairman       string            `yaml:"chairman,omitempty"`
	Engine         EngineConfig      `yaml:"engine,omitempty"`
	Options        OptionsConfig     `yaml:"options,omitempty"`
	Paths          PathsConfig       `yaml:"paths,omitempty"`
	Performance    PerformanceConfig `yaml:"performance,omitempty"`
	Cache          CacheConfig       `yaml:"cache,omitempty"`
	Session        SessionConfig     `yaml:"session,omitempty"`
	Publish        PublishConfig     `yaml:"publish,omitempty"`
	Workers        int               `yaml:"workers,omitempty"`
	TimeoutSeconds int               `yaml:"timeout_seconds,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Engine: EngineConfig{
			Kind: DefaultEngine,
		},
		Options: OptionsConfig{
			WeightedAggregation: boolPtr(true),
			ConfidenceWeighting: boolPtr(true),
			StructuredRankings:  boolPtr(false),
		},
		Paths: PathsConfig{
			Results:     DefaultResultsDir,
			Transcripts: DefaultTranscriptsDir,
		},
		Performance: PerformanceConfig{
			Enabled: boolPtr(true),
			Path:    DefaultPerformancePath,
		},
		Cache: CacheConfig{
			Enabled: boolPtr(false),
			Dir:     DefaultCacheDir,
		},
		Session: SessionConfig{
			Log: boolPtr(false),
			Dir: DefaultSessionDir,
		},
		Publish: PublishConfig{
			Azure: AzurePublishConfig{
				Enabled:   boolPtr(false),
				Container: DefaultPublishContainer,
			},
		},
		Workers:        DefaultWorkers,
		TimeoutSeconds: DefaultTimeout,
	}
}

// Load finds .council.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, _, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading %s: %w", ConfigFileName, err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
	}

	// Merge file values onto defaults.
	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// FindPath returns the path of the nearest .council.yaml, walking up from
// startDir, or os.ErrNotExist when none is found.
func FindPath(startDir string) (string, error) {
	_, path, err := findConfigFile(startDir)
	return path, err
}

// findConfigFile walks up from dir looking for .council.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found. Propagates
// real I/O errors (e.g. permission denied) instead of silently swallowing
// them.
func findConfigFile(dir string) ([]byte, string, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ConfigFileName)
		data, err := os.ReadFile(p)
		if err == nil {
			return data, p, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, "", os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	if len(src.Models) > 0 {
		dst.Models = src.Models
	}
	if src.Chairman != "" {
		dst.Chairman = src.Chairman
	}

	// Engine
	if src.Engine.Kind != "" {
		dst.Engine.Kind = src.Engine.Kind
	}
	if src.Engine.Config != nil {
		dst.Engine.Config = src.Engine.Config
	}

	// Options
	if src.Options.WeightedAggregation != nil {
		dst.Options.WeightedAggregation = src.Options.WeightedAggregation
	}
	if src.Options.ConfidenceWeighting != nil {
		dst.Options.ConfidenceWeighting = src.Options.ConfidenceWeighting
	}
	if src.Options.StructuredRankings != nil {
		dst.Options.StructuredRankings = src.Options.StructuredRankings
	}

	// Paths
	if src.Paths.Results != "" {
		dst.Paths.Results = src.Paths.Results
	}
	if src.Paths.Transcripts != "" {
		dst.Paths.Transcripts = src.Paths.Transcripts
	}

	// Performance
	if src.Performance.Enabled != nil {
		dst.Performance.Enabled = src.Performance.Enabled
	}
	if src.Performance.Path != "" {
		dst.Performance.Path = src.Performance.Path
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}

	// Session
	if src.Session.Log != nil {
		dst.Session.Log = src.Session.Log
	}
	if src.Session.Dir != "" {
		dst.Session.Dir = src.Session.Dir
	}

	// Publish
	if src.Publish.Azure.Enabled != nil {
		dst.Publish.Azure.Enabled = src.Publish.Azure.Enabled
	}
	if src.Publish.Azure.ServiceURL != "" {
		dst.Publish.Azure.ServiceURL = src.Publish.Azure.ServiceURL
	}
	if src.Publish.Azure.Container != "" {
		dst.Publish.Azure.Container = src.Publish.Azure.Container
	}

	if src.Workers != 0 {
		dst.Workers = src.Workers
	}
	if src.TimeoutSeconds != 0 {
		dst.TimeoutSeconds = src.TimeoutSeconds
	}
}

func boolPtr(b bool) *bool {
	return &b
}
