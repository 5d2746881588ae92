package schema

import "sort"

// EnrichedFileMetrics adds presentation data to a FileMetrics entry.
type EnrichedFileMetrics struct {
	Rank  int        `json:"rank"`
	Path  string     `json:"path"`
	Label HealthBand `json:"label"`
	FileMetrics
}

// GetHealthBand classifies a health score.
func GetHealthBand(score float64) HealthBand {
	switch {
	case score >= 80:
		return GoodHealth
	case score >= 60:
		return FairHealth
	default:
		return PoorHealth
	}
}

// EnrichFiles ranks tracked files from least to most healthy.
// Ties are broken by path so the order is stable.
func EnrichFiles(files map[string]FileMetrics, limit int) []EnrichedFileMetrics {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		a, b := files[paths[i]], files[paths[j]]
		if a.HealthScore != b.HealthScore {
			return a.HealthScore < b.HealthScore
		}
		return paths[i] < paths[j]
	})
	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}
	output := make([]EnrichedFileMetrics, len(paths))
	for i, p := range paths {
		output[i] = EnrichedFileMetrics{
			Rank:        i + 1,
			Path:        p,
			Label:       GetHealthBand(files[p].HealthScore),
			FileMetrics: files[p],
		}
	}
	return output
}
