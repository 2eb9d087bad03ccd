package domain

// Config represents the minimal lifex configuration loaded from lifex.yaml.
type Config struct {
	Defaults DefaultsConfig
	Paths    PathsConfig
	Chart    ChartConfig
}

type DefaultsConfig struct {
	Table       string
	MinAge      int
	Optimistic  bool
	Percentiles []int
}

type PathsConfig struct {
	TablesDir string
	ChartsDir string
}

type ChartConfig struct {
	Width  int
	Height int
	Title  string // template, rendered with {{table}} and {{min_age}}
}

// DefaultConfig provides sane defaults if lifex.yaml is partially missing.
func DefaultConfig() Config {
	return Config{
		Defaults: DefaultsConfig{
			Table:       "us-total-population",
			MinAge:      0,
			Optimistic:  false,
			Percentiles: append([]int(nil), DefaultPercentiles...),
		},
		Paths: PathsConfig{
			TablesDir: "tables",
			ChartsDir: "charts",
		},
		Chart: ChartConfig{
			Width:  1024,
			Height: 512,
			Title:  "{{table}} from age {{min_age}}",
		},
	}
}
