package config

import "fmt"

// Config represents the full application configuration.
type Config struct {
	GitHub        GitHubConfig        `yaml:"github"`
	Watch         WatchConfig         `yaml:"watch"`
	Output        OutputConfig        `yaml:"output"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// GitHubConfig configures API access.
type GitHubConfig struct {
	// Token is the bearer token used when GITHUB_TOKEN is not set in the
	// environment. Supports ${VAR} expansion.
	Token string `yaml:"token"`

	// BaseURL overrides the API endpoint (GitHub Enterprise).
	BaseURL string `yaml:"baseURL"`
}

// WatchConfig holds watch-loop timings as duration strings (e.g. "30s").
type WatchConfig struct {
	Interval    string `yaml:"interval"`
	IdleTimeout string `yaml:"idleTimeout"`
	Grace       string `yaml:"grace"`
}

// OutputConfig controls presentation defaults.
type OutputConfig struct {
	// Format is "text" or "json".
	Format string `yaml:"format"`

	// Color is "auto", "always", or "never".
	Color string `yaml:"color"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // debug, info, error
	Format  string `yaml:"format"` // human, json
}

// ConfigurationError means the process cannot proceed: no usable
// credential, or no resolvable repository or pull request. It is always
// produced before any network call and causes a non-zero exit.
type ConfigurationError struct {
	Missing string
	Hint    string
}

func (e *ConfigurationError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("configuration error: no usable %s", e.Missing)
	}
	return fmt.Sprintf("configuration error: no usable %s (%s)", e.Missing, e.Hint)
}
