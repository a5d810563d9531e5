package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "wpfinger.config.yml"

	// MaxThreads caps how many targets may be scanned concurrently.
	MaxThreads = 64

	envTargets     = "WPFINGER_TARGETS"
	envTargetsFile = "WPFINGER_TARGETS_FILE"
	envTimeout     = "WPFINGER_TIMEOUT"
	envThreads     = "WPFINGER_THREADS"
	envContentDir  = "WPFINGER_CONTENT_DIR"
	envChecksFile  = "WPFINGER_CHECKS_FILE"
	envSummaryFile = "WPFINGER_SUMMARY_FILE"
)

// Loader merges configuration coming from files, environment variables, and CLI flags.
type Loader struct {
	ConfigPath string
}

// CheckSpec describes one plugin or theme vulnerability check. Fixed and
// Introduced are optional range bounds; empty means unbounded.
type CheckSpec struct {
	Kind       string `yaml:"kind"`
	Name       string `yaml:"name"`
	Fixed      string `yaml:"fixed"`
	Introduced string `yaml:"introduced"`
}

// RuntimeConfig contains the fully merged settings required by wpfinger sub-commands.
type RuntimeConfig struct {
	Targets        []string
	TimeoutSeconds int
	Threads        int
	ContentDir     string
	Checks         []CheckSpec
	SummaryFile    string
}

// Overrides captures values coming from env vars or CLI flags.
type Overrides struct {
	Targets     []string
	TargetsFile string
	Timeout     int
	TimeoutSet  bool
	Threads     int
	ThreadsSet  bool
	ContentDir  string
	Checks      []CheckSpec
	ChecksFile  string
	SummaryFile string
}

// DefaultRuntimeConfig returns the baseline configuration when no overrides are provided.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		TimeoutSeconds: 10,
		Threads:        10,
		ContentDir:     "wp-content",
	}
}

// Load resolves the final runtime configuration.
func (l Loader) Load(override Overrides) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	path := l.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	if fileExists(path) {
		fileOv, err := loadFromFile(path)
		if err != nil {
			return cfg, err
		}
		if err := cfg.apply(fileOv); err != nil {
			return cfg, err
		}
	}

	if err := cfg.apply(overridesFromEnv()); err != nil {
		return cfg, err
	}

	if err := cfg.apply(override); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate ensures the config contains the minimum required data for the scan command.
func (c RuntimeConfig) Validate() error {
	if len(c.Targets) == 0 {
		return errors.New("no targets configured; provide --targets, --targets-file, or set WPFINGER_TARGETS")
	}

	if c.Threads < 1 || c.Threads > MaxThreads {
		return fmt.Errorf("threads must be between 1 and %d (got %d)", MaxThreads, c.Threads)
	}

	if c.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout must be at least 1 second (got %d)", c.TimeoutSeconds)
	}

	if c.ContentDir == "" {
		return errors.New("content directory cannot be empty")
	}

	for _, check := range c.Checks {
		if err := check.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Validate rejects checks the cascade cannot act on.
func (s CheckSpec) Validate() error {
	if s.Kind != "plugin" && s.Kind != "theme" {
		return fmt.Errorf("check kind must be plugin or theme (got %q)", s.Kind)
	}
	if s.Name == "" {
		return errors.New("check name cannot be empty")
	}
	return nil
}

func (c *RuntimeConfig) apply(src Overrides) error {
	if len(src.Targets) > 0 {
		c.Targets = cleanList(src.Targets)
	}

	if src.TargetsFile != "" {
		values, err := readTargetsFile(src.TargetsFile)
		if err != nil {
			return err
		}
		c.Targets = values
	}

	if src.TimeoutSet {
		c.TimeoutSeconds = src.Timeout
	}

	if src.ThreadsSet {
		c.Threads = src.Threads
	}

	if src.ContentDir != "" {
		c.ContentDir = src.ContentDir
	}

	if len(src.Checks) > 0 {
		c.Checks = src.Checks
	}

	if src.ChecksFile != "" {
		checks, err := ReadChecksFile(src.ChecksFile)
		if err != nil {
			return err
		}
		c.Checks = checks
	}

	if src.SummaryFile != "" {
		c.SummaryFile = src.SummaryFile
	}

	return nil
}

func loadFromFile(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, err
	}

	type rawConfig struct {
		Targets     targetList  `yaml:"targets"`
		TargetsFile string      `yaml:"targetsFile"`
		Timeout     *int        `yaml:"timeout"`
		Threads     *int        `yaml:"threads"`
		ContentDir  string      `yaml:"contentDir"`
		Checks      []CheckSpec `yaml:"checks"`
		ChecksFile  string      `yaml:"checksFile"`
		SummaryFile string      `yaml:"summaryFile"`
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Overrides{}, err
	}

	over := Overrides{
		Targets:     raw.Targets,
		TargetsFile: raw.TargetsFile,
		ContentDir:  raw.ContentDir,
		Checks:      raw.Checks,
		ChecksFile:  raw.ChecksFile,
		SummaryFile: raw.SummaryFile,
	}

	if raw.Timeout != nil {
		over.Timeout = *raw.Timeout
		over.TimeoutSet = true
	}

	if raw.Threads != nil {
		over.Threads = *raw.Threads
		over.ThreadsSet = true
	}

	return over, nil
}

func overridesFromEnv() Overrides {
	ov := Overrides{}

	if value := os.Getenv(envTargets); value != "" {
		ov.Targets = ParseTargetsList(value)
	}

	if value := os.Getenv(envTargetsFile); value != "" {
		ov.TargetsFile = value
	}

	if value := os.Getenv(envTimeout); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			ov.Timeout = parsed
			ov.TimeoutSet = true
		}
	}

	if value := os.Getenv(envThreads); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			ov.Threads = parsed
			ov.ThreadsSet = true
		}
	}

	if value := os.Getenv(envContentDir); value != "" {
		ov.ContentDir = value
	}

	if value := os.Getenv(envChecksFile); value != "" {
		ov.ChecksFile = value
	}

	if value := os.Getenv(envSummaryFile); value != "" {
		ov.SummaryFile = value
	}

	return ov
}

// ReadChecksFile loads a YAML list of plugin/theme checks.
func ReadChecksFile(path string) ([]CheckSpec, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var checks []CheckSpec
	if err := yaml.Unmarshal(data, &checks); err != nil {
		return nil, fmt.Errorf("invalid checks file %s: %w", path, err)
	}

	for _, check := range checks {
		if err := check.Validate(); err != nil {
			return nil, fmt.Errorf("invalid checks file %s: %w", path, err)
		}
	}

	return checks, nil
}

// ParseTargetsList turns comma or newline separated input into individual targets.
func ParseTargetsList(input string) []string {
	return splitOnDelimiters(input, []rune{',', '\n', '\r'})
}

func splitOnDelimiters(input string, delims []rune) []string {
	if input == "" {
		return nil
	}

	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}

	separator := func(r rune) bool {
		for _, d := range delims {
			if r == d {
				return true
			}
		}
		return false
	}

	parts := strings.FieldsFunc(trimmed, separator)
	return cleanList(parts)
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		candidate := strings.TrimSpace(v)
		if candidate != "" {
			out = append(out, candidate)
		}
	}
	return out
}

func readTargetsFile(path string) ([]string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var targets []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return targets, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// targetList enables YAML fields that can be specified as a scalar or sequence.
type targetList []string

func (t *targetList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var out []string
		for _, node := range value.Content {
			out = append(out, strings.TrimSpace(node.Value))
		}
		*t = cleanList(out)
	case yaml.ScalarNode:
		*t = ParseTargetsList(value.Value)
	default:
		return fmt.Errorf("unsupported YAML type for targets")
	}
	return nil
}
