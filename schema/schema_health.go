package schema

// HealthPenalty describes one category deduction of the health score.
type HealthPenalty struct {
	Category    string  `json:"category"`
	PerIssue    string  `json:"per_issue"`
	Cap         float64 `json:"cap"`
	CapPerIssue bool    `json:"cap_per_issue"`
}

// HealthBandRange is the lower bound of a health band.
type HealthBandRange struct {
	Band     HealthBand `json:"band"`
	MinScore float64    `json:"min_score"`
}

// HealthModel is the render model for the health score definition.
type HealthModel struct {
	Start      float64           `json:"start"`
	Penalties  []HealthPenalty   `json:"penalties"`
	Bands      []HealthBandRange `json:"bands"`
	MaxTextLen int               `json:"max_text_chars"`
}
