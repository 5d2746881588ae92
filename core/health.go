package core

import (
	"math"

	"github.com/zeyadhassan/codepulse/schema"
)

// Health score penalties.
const (
	complexityDivisor   = 5.0  // each issue costs complexity/5
	complexityIssueCap  = 10.0 // per issue
	duplicationCap      = 30.0 // one point per duplicated percent
	styleCap            = 10.0 // one point per style issue
	healthStart         = 100.0
	goodHealthThreshold = 80.0
	fairHealthThreshold = 60.0
)

// computeHealth starts at 100 and subtracts capped penalties per category.
func computeHealth(complexityIssues []schema.ComplexityIssue, dupPercentage float64, styleCount int) float64 {
	score := healthStart
	for _, is := range complexityIssues {
		score -= math.Min(complexityIssueCap, float64(is.Complexity)/complexityDivisor)
	}
	score -= math.Min(duplicationCap, dupPercentage)
	score -= math.Min(styleCap, float64(styleCount))
	return math.Max(0, math.Min(healthStart, score))
}

// GetHealthModel describes how the health score is computed.
func GetHealthModel() schema.HealthModel {
	return schema.HealthModel{
		Start: healthStart,
		Penalties: []schema.HealthPenalty{
			{Category: "complexity", PerIssue: "complexity / 5", Cap: complexityIssueCap, CapPerIssue: true},
			{Category: "duplication", PerIssue: "duplicated line percentage", Cap: duplicationCap},
			{Category: "style", PerIssue: "1 per issue", Cap: styleCap},
		},
		Bands: []schema.HealthBandRange{
			{Band: schema.GoodHealth, MinScore: goodHealthThreshold},
			{Band: schema.FairHealth, MinScore: fairHealthThreshold},
			{Band: schema.PoorHealth, MinScore: 0},
		},
		MaxTextLen: MaxTextChars,
	}
}
