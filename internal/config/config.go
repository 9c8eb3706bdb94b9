// Package config loads and validates epubpack configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a packaging run.
type Config struct {
	Project string `yaml:"project"`
	Version string `yaml:"version"`
	// Output is the destination directory; it is destroyed and recreated at run start.
	Output string `yaml:"output"`
	// Nodes is the path to the node manifest (YAML) describing modules, exceptions and protocols.
	Nodes string `yaml:"nodes,omitempty"`
	// Extras lists auxiliary markdown files packaged as additional pages.
	Extras []string `yaml:"extras,omitempty"`
	// Logo is an optional image copied into OEBPS/assets and referenced from the title page.
	Logo string `yaml:"logo,omitempty"`
	// Titles overrides the display title per extra page, keyed by filename stem.
	Titles map[string]string `yaml:"titles,omitempty"`
	// Language is the package language tag (BCP 47). Defaults to "en".
	Language string `yaml:"language,omitempty"`

	Build   BuildConfig   `yaml:"build,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// BuildConfig holds packaging performance and strictness knobs.
type BuildConfig struct {
	// PageConcurrency caps the number of pages rendered in parallel within a batch.
	// 0 (default) launches one unit per page with no cap.
	PageConcurrency int `yaml:"page_concurrency,omitempty"`
	// StrictAssembly turns unreadable staging files into fatal archive errors.
	// The default reproduces the historical warn-and-skip behavior.
	StrictAssembly bool `yaml:"strict_assembly,omitempty"`
}

// LoggingConfig selects log verbosity and output format.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug|info|warn|error
	Format string `yaml:"format,omitempty"` // text|json
}

// ArchiveName returns the final archive filename: <project>-v<version>.epub.
func (c *Config) ArchiveName() string {
	return fmt.Sprintf("%s-v%s.epub", c.Project, c.Version)
}

// ArchivePath returns the full output path of the final archive.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.Output, c.ArchiveName())
}

// ExtraStem returns the output filename stem for an extra document:
// the uppercased basename without extension.
func ExtraStem(path string) string {
	base := filepath.Base(path)
	return strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
}

// ExtraTitle resolves the display title for an extra document. The configured
// titles map (keyed by uppercased stem) wins; the default is the stem itself.
func (c *Config) ExtraTitle(path string) string {
	stem := ExtraStem(path)
	if t, ok := c.Titles[stem]; ok && t != "" {
		return t
	}
	return stem
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// Load .env files if present; existing process env is never overridden.
	if err := godotenv.Load(".env", ".env.local"); err != nil {
		// Missing .env files are the common case; not an error.
		_ = err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Output == "" {
		c.Output = "./book"
	}
	if c.Version == "" {
		c.Version = "0.0.0"
	}
	c.Language = NormalizeLanguage(c.Language)
	if c.Build.PageConcurrency < 0 {
		c.Build.PageConcurrency = 0
	}
	if v := os.Getenv("EPUBPACK_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("EPUBPACK_LOG_LEVEL"); v != "" && c.Logging.Level == "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for unusable values. Extras extension
// checking deliberately stays in the stager so a bad extra fails its own
// unit of work, not the whole load step.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Project) == "" {
		return fmt.Errorf("config: project name is required")
	}
	if strings.ContainsAny(c.Project, `/\`) {
		return fmt.Errorf("config: project name must not contain path separators: %q", c.Project)
	}
	if strings.TrimSpace(c.Version) == "" {
		return fmt.Errorf("config: version is required")
	}
	return nil
}

// NormalizeLanguage canonicalizes a BCP 47 language tag, falling back to "en"
// for empty or unparsable values.
func NormalizeLanguage(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "en"
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "en"
	}
	return tag.String()
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Project:  "myapp",
		Version:  "0.1.0",
		Output:   "./book",
		Nodes:    "nodes.yaml",
		Extras:   []string{"README.md", "CHANGELOG.md"},
		Titles:   map[string]string{"README": "About MyApp"},
		Language: "en",
		Build: BuildConfig{
			PageConcurrency: 0,
			StrictAssembly:  false,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
