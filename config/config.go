// Package config defines the settings for converting a directory of photos in to GeoJSON.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// The directory (or gocloud.dev/blob URI) containing photos.
	Input string `yaml:"input"`
	// The directory where output files are written. Ignored if WriterURI is set.
	OutputDir string `yaml:"output_dir"`
	// An optional whosonfirst/go-writer URI (for example "stdout://") that overrides OutputDir.
	WriterURI string `yaml:"writer_uri"`
	// The base name, sans extension, of the CSV and GeoJSON files.
	Name    string       `yaml:"name"`
	Gather  GatherConfig `yaml:"gather"`
	Output  OutputConfig `yaml:"output"`
	Lookup  LookupConfig `yaml:"lookup"`
	Strict  bool         `yaml:"strict"`
	Verbose bool         `yaml:"verbose"`
}

type GatherConfig struct {
	Recursive      bool `yaml:"recursive"`
	Fingerprint    bool `yaml:"fingerprint"`
	ImageHashes    bool `yaml:"imagehashes"`
	ExifTimestamps bool `yaml:"exif_timestamps"`
	Dedupe         bool `yaml:"dedupe"`
}

type OutputConfig struct {
	CSV    bool `yaml:"csv"`
	CRS    bool `yaml:"crs"`
	Pretty bool `yaml:"pretty"`
}

type LookupConfig struct {
	// Zero or more gocloud.dev/blob URIs (or local directories) containing previously exported GeoJSON files.
	Sources []string `yaml:"sources"`
}

// Default returns the settings used when no config file or flags are supplied: read photos from
// "inputs" and write "outputs/gpsphoto_output.csv" and "outputs/gpsphoto_output.geojson".
func Default() Config {

	return Config{
		Input:     "inputs",
		OutputDir: "outputs",
		Name:      "gpsphoto_output",
		Output: OutputConfig{
			CSV:    true,
			CRS:    true,
			Pretty: true,
		},
	}
}

// Load reads the YAML file at 'path' on top of Default and validates the result.
func Load(path string) (Config, error) {

	b, err := os.ReadFile(path)

	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that required settings are present.
func (cfg Config) Validate() error {

	if strings.TrimSpace(cfg.Input) == "" {
		return fmt.Errorf("input is required")
	}

	if strings.TrimSpace(cfg.OutputDir) == "" && strings.TrimSpace(cfg.WriterURI) == "" {
		return fmt.Errorf("output_dir or writer_uri is required")
	}

	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("name is required")
	}

	if strings.ContainsAny(cfg.Name, `/\`) {
		return fmt.Errorf("name must not contain path separators")
	}

	return nil
}
