// Package config provides configuration loading and structs for the
// ebook2pdf tool.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/yuanying/ebook2pdf/internal/paginate"
)

// Config holds all configuration for a conversion run.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Output  OutputConfig  `yaml:"output"`
	Page    PageConfig    `yaml:"page"`
	Fonts   FontsConfig   `yaml:"fonts"`
	Extract ExtractConfig `yaml:"extract"`
}

// OutputConfig holds output file settings.
type OutputConfig struct {
	// Quality is the JPEG quality for page rasters, 1 to 100.
	Quality int `yaml:"quality"`
}

// PageConfig holds page geometry in points. Zero values keep the
// standard A4 layout.
type PageConfig struct {
	Width         float64 `yaml:"width"`
	Height        float64 `yaml:"height"`
	Margin        float64 `yaml:"margin"`
	LineHeight    float64 `yaml:"line_height"`
	BodySize      float64 `yaml:"body_size"`
	TitleSize     float64 `yaml:"title_size"`
	TitleGap      float64 `yaml:"title_gap"`
	Scale         float64 `yaml:"scale"`
	ProgressEvery int     `yaml:"progress_every"`
}

// Options converts the page geometry into compositor options.
func (p PageConfig) Options() paginate.Options {
	return paginate.Options{
		PageWidth:     p.Width,
		PageHeight:    p.Height,
		Margin:        p.Margin,
		LineHeight:    p.LineHeight,
		BodySize:      p.BodySize,
		TitleSize:     p.TitleSize,
		TitleGap:      p.TitleGap,
		Scale:         p.Scale,
		ProgressEvery: p.ProgressEvery,
	}
}

// FontsConfig holds TTF file paths replacing the bundled Go fonts.
type FontsConfig struct {
	Regular string `yaml:"regular"`
	Bold    string `yaml:"bold"`
}

// ExtractConfig holds text extraction settings.
type ExtractConfig struct {
	// Limit caps extracted text at this many bytes; 0 means unlimited.
	Limit int `yaml:"limit"`
}

// Load reads and parses the config file at path, resolves font paths
// against the config directory, and applies defaults. Returns an error
// if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Fonts.Regular = expandPath(cfg.Fonts.Regular, configDir)
	cfg.Fonts.Bold = expandPath(cfg.Fonts.Bold, configDir)

	return &cfg, nil
}

// expandPath resolves a relative path against the config file directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(configDir, path)
}
