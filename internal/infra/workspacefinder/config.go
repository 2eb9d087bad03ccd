package workspacefinder

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nick-merrill/life-expectancy/internal/domain"
)

// LoadConfig loads lifex.yaml from the workspace root and applies defaults.
func LoadConfig(root string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	path := filepath.Join(root, "lifex.yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "workspacefinder.loadconfig",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	// Apply parsed values on top of defaults.
	if y.Lifex.Defaults.Table != "" {
		cfg.Defaults.Table = y.Lifex.Defaults.Table
	}
	if y.Lifex.Defaults.MinAge != nil {
		if *y.Lifex.Defaults.MinAge < 0 {
			return cfg, invalidConfig(path, "defaults.min_age cannot be negative")
		}
		cfg.Defaults.MinAge = *y.Lifex.Defaults.MinAge
	}
	if y.Lifex.Defaults.Optimistic != nil {
		cfg.Defaults.Optimistic = *y.Lifex.Defaults.Optimistic
	}
	if len(y.Lifex.Defaults.Percentiles) > 0 {
		for _, p := range y.Lifex.Defaults.Percentiles {
			if p < 1 || p > 99 {
				return cfg, invalidConfig(path, fmt.Sprintf("defaults.percentiles: %d outside [1, 99]", p))
			}
		}
		cfg.Defaults.Percentiles = y.Lifex.Defaults.Percentiles
	}
	if y.Lifex.Paths.TablesDir != "" {
		cfg.Paths.TablesDir = y.Lifex.Paths.TablesDir
	}
	if y.Lifex.Paths.ChartsDir != "" {
		cfg.Paths.ChartsDir = y.Lifex.Paths.ChartsDir
	}
	if y.Lifex.Chart.Width > 0 {
		cfg.Chart.Width = y.Lifex.Chart.Width
	}
	if y.Lifex.Chart.Height > 0 {
		cfg.Chart.Height = y.Lifex.Chart.Height
	}
	if y.Lifex.Chart.Title != "" {
		cfg.Chart.Title = y.Lifex.Chart.Title
	}

	return cfg, nil
}

type yamlConfig struct {
	Lifex struct {
		Defaults struct {
			Table       string `yaml:"table"`
			MinAge      *int   `yaml:"min_age"`
			Optimistic  *bool  `yaml:"optimistic"`
			Percentiles []int  `yaml:"percentiles"`
		} `yaml:"defaults"`

		Paths struct {
			TablesDir string `yaml:"tables_dir"`
			ChartsDir string `yaml:"charts_dir"`
		} `yaml:"paths"`

		Chart struct {
			Width  int    `yaml:"width"`
			Height int    `yaml:"height"`
			Title  string `yaml:"title"`
		} `yaml:"chart"`
	} `yaml:"lifex"`
}

func invalidConfig(path, msg string) error {
	return &domain.OpError{
		Op:   "workspacefinder.loadconfig",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("%s: %w", msg, domain.ErrInvalidConfig),
	}
}
