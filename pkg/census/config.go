// Package census wires together the asset repository, designer-config
// registry, text, scene, preprocessor, generator, mission, and
// item-source packages into the top-level wiki-data-extraction pipeline,
// plus the output formatter that turns a resolved Provenance into
// serializable entries.
package census

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the single top-level configuration record every path and
// pipeline parameter is derived from.
type Config struct {
	// Version tags the data set being processed (e.g. a game build number).
	// Like every other field, it feeds Hash, which keys the preprocessor cache.
	Version string `yaml:"version"`

	// AssetsRoot is the read-only root directory described in the external
	// interfaces layout: bundle directories, scene/additive, localization,
	// designer_config, story_script, sceneinfo.
	AssetsRoot string `yaml:"assets_root"`

	// CacheRoot is where the scene preprocessor's content-addressed cache is
	// kept.
	CacheRoot string `yaml:"cache_root"`

	// OutputDir is the directory the CLI writes its output files into.
	OutputDir string `yaml:"output_dir"`

	// Languages lists the localization directory names to load (e.g.
	// "English", "French").
	Languages []string `yaml:"languages"`

	// LanguageCodes lists the corresponding short codes the localized text
	// table is keyed by, parallel to Languages by index.
	LanguageCodes []string `yaml:"language_codes"`

	// WikiLanguage selects which of Languages/LanguageCodes drives
	// WikiItemName display-name grouping.
	WikiLanguage string `yaml:"wiki_language"`

	// KnownBadDropsPath optionally names a YAML side-file listing drop-table
	// ids to treat as known-bogus, maintained independently of the Go
	// source (see the resolved Open Question in DESIGN.md).
	KnownBadDropsPath string `yaml:"known_bad_drops_path,omitempty"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadConfigFromBytes(data)
}

// LoadConfigFromBytes parses and validates YAML configuration from bytes,
// useful for testing and programmatic config construction.
func LoadConfigFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks every field, returning a wrapped field-scoped error
// describing the first failure found.
func (c *Config) Validate() error {
	if c.Version == "" {
		return errors.New("version must not be empty")
	}
	if c.AssetsRoot == "" {
		return errors.New("assets_root must not be empty")
	}
	if c.CacheRoot == "" {
		return errors.New("cache_root must not be empty")
	}
	if c.OutputDir == "" {
		return errors.New("output_dir must not be empty")
	}
	if len(c.Languages) == 0 {
		return errors.New("languages must list at least one language")
	}
	if len(c.LanguageCodes) != len(c.Languages) {
		return fmt.Errorf("language_codes must be parallel to languages: got %d codes for %d languages",
			len(c.LanguageCodes), len(c.Languages))
	}
	if c.WikiLanguage == "" {
		return errors.New("wiki_language must not be empty")
	}

	found := false
	for _, lang := range c.Languages {
		if lang == c.WikiLanguage {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("wiki_language %q is not present in languages %v", c.WikiLanguage, c.Languages)
	}

	return nil
}

// ToYAML re-serializes the config for hashing and diagnostics.
func (c *Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// Hash returns a deterministic digest of the config, used to derive the
// preprocessor cache's version tag so a config change invalidates it.
func (c *Config) Hash() []byte {
	data, err := c.ToYAML()
	if err != nil {
		h := sha256.New()
		h.Write([]byte(c.Version))
		return h.Sum(nil)
	}
	h := sha256.New()
	h.Write(data)
	return h.Sum(nil)
}
