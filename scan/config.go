package scan

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/altmm/altmm/internal/dedup"
)

const DefaultConfigFile = ".altmm.yaml"

// Config is the content of the configuration file.
type Config struct {
	Name string `yaml:"name"`
	// IncludeFloatingHypotheses compares `$f` hypotheses as well as `$e` ones.
	IncludeFloatingHypotheses bool         `yaml:"includeFloatingHypotheses"`
	Filter                    FilterConfig `yaml:"filter"`
}

// FilterConfig configures which labels may join an existing group.
type FilterConfig struct {
	// Suffixes marks known alternative versions of a theorem.
	Suffixes []string `yaml:"suffixes"`
	// Hyphens ignores labels that only differ from a member by hyphens.
	Hyphens bool `yaml:"hyphens"`
}

func DefaultConfig() Config {
	return Config{
		Name: "altmm",
		Filter: FilterConfig{
			Suffixes: append([]string(nil), dedup.DefaultSuffixes...),
			Hyphens:  true,
		},
	}
}

// LoadConfig reads the configuration file at path. Keys missing from the
// file keep their default value, and a missing file yields the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, err
	}
	return config, nil
}

// WriteConfig stores config at path as YAML.
func WriteConfig(path string, config Config) error {
	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}

// Options converts the configuration into engine options.
func (c Config) Options() dedup.Options {
	suffixes := c.Filter.Suffixes
	if suffixes == nil {
		suffixes = []string{}
	}
	return dedup.Options{
		IncludeFloatingHypotheses: c.IncludeFloatingHypotheses,
		Suffixes:                  suffixes,
		DisableHyphenRule:         !c.Filter.Hyphens,
	}
}
