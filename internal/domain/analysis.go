package domain

// Analysis is the outcome of one full pipeline run over a table: the
// conditional distribution, its summary, and where the chart went (if
// anywhere).
type Analysis struct {
	Table        string                  `json:"table"`
	TablePath    string                  `json:"table_path"`
	Optimistic   bool                    `json:"optimistic"`
	Distribution ConditionalDistribution `json:"distribution"`
	Summary      Summary                 `json:"summary"`
	ChartPath    string                  `json:"chart_path,omitempty"`
}
