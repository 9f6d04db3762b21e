package analyzer

import "time"

// Verdict is the coarse health classification derived from the drift score.
type Verdict string

const (
	VerdictHealthy    Verdict = "HEALTHY"
	VerdictMinorDrift Verdict = "MINOR_DRIFT"
	VerdictRisk       Verdict = "RISK"
	VerdictCritical   Verdict = "CRITICAL"
)

// VerdictForScore maps a drift score to its band. Upper bounds are inclusive:
// a score of exactly 10 is still healthy, exactly 30 still minor.
func VerdictForScore(score float64) Verdict {
	switch {
	case score <= 10:
		return VerdictHealthy
	case score <= 30:
		return VerdictMinorDrift
	case score <= 60:
		return VerdictRisk
	default:
		return VerdictCritical
	}
}

// Description returns the operator-facing explanation for a verdict.
func (v Verdict) Description() string {
	switch v {
	case VerdictHealthy:
		return "0-10% drift - System is healthy"
	case VerdictMinorDrift:
		return "11-30% drift - Minor inconsistencies detected"
	case VerdictRisk:
		return "31-60% drift - Significant risk of stale data"
	case VerdictCritical:
		return "61-100% drift - Critical consistency failure"
	default:
		return "unknown verdict"
	}
}

// StalenessDetail describes one stale cache entry found during analysis.
type StalenessDetail struct {
	RecordID      string `json:"recordId"`
	RecordVersion int64  `json:"recordVersion"`
	CacheVersion  int64  `json:"cacheVersion"`
	VersionDrift  int64  `json:"versionDrift"`
	AutoFixed     bool   `json:"autoFixed"`
}

// Report is the full drift analysis result. It is derived state: computed on
// demand, never persisted. Because the record and cache snapshots are taken
// without a shared lock, a report is approximately current rather than
// transactionally consistent with concurrent mutations.
type Report struct {
	TotalRecords   int64             `json:"totalRecords"`
	CachedRecords  int64             `json:"cachedRecords"`
	StaleRecords   int64             `json:"staleRecords"`
	DriftScore     float64           `json:"driftScore"`
	Verdict        Verdict           `json:"verdict"`
	AutoFixedCount int64             `json:"autoFixedCount"`
	GeneratedAt    time.Time         `json:"generatedAt"`
	StaleDetails   []StalenessDetail `json:"staleDetails"`
}

// Summary is the cheap polling variant of a Report.
type Summary struct {
	TotalRecords int64   `json:"totalRecords"`
	StaleRecords int64   `json:"staleRecords"`
	DriftScore   float64 `json:"driftScore"`
	Verdict      Verdict `json:"verdict"`
}

// driftScore is stale/total*100, or zero for an empty universe.
func driftScore(stale, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(stale) * 100.0 / float64(total)
}
