// Package threat scores URLs for phishing indicators.
// A fixed, ordered set of heuristic rules is evaluated against a single URL;
// every triggered rule adds points and a human-readable reason. The total is
// mapped to a confidence, a risk tier and a phishing flag.
package threat

// Risk is the categorical tier derived from a verdict's confidence.
type Risk string

const (
	RiskMinimal Risk = "MINIMAL"
	RiskLow     Risk = "LOW"
	RiskMedium  Risk = "MEDIUM"
	RiskHigh    Risk = "HIGH"
)

const (
	// ThresholdPhishing is the raw score at which a URL is flagged.
	ThresholdPhishing = 30

	// MaxReasons caps the reasons returned in a Verdict.
	MaxReasons = 5

	maxConfidence = 100
)

// Verdict is the outcome of scoring one URL.
type Verdict struct {
	IsPhishing bool `json:"is_phishing"`

	// Confidence is Score capped at 100.
	Confidence int `json:"confidence"`

	// Risk is derived from Confidence:
	//   70–100 → HIGH
	//   40–69  → MEDIUM
	//   20–39  → LOW
	//   0–19   → MINIMAL
	Risk Risk `json:"risk"`

	// Score is the raw, uncapped sum of all triggered rule weights.
	Score int `json:"score"`

	// Reasons lists distinct indicator descriptions in trigger order, at most MaxReasons.
	Reasons []string `json:"reasons"`
}

// Hit records the points a single rule instance contributed.
type Hit struct {
	Rule   string `json:"rule"`
	Points int    `json:"points"`
}

// Report is a Verdict plus the per-rule breakdown that produced it.
type Report struct {
	Verdict
	Hits []Hit `json:"hits"`
}

// Scorer assigns a phishing verdict to a scheme-qualified URL.
// Implementations never fail: malformed input yields a low-information verdict.
type Scorer interface {
	Check(rawURL string) Verdict
}

// RiskFor maps a 0–100 confidence to a risk tier.
func RiskFor(confidence int) Risk {
	switch {
	case confidence >= 70:
		return RiskHigh
	case confidence >= 40:
		return RiskMedium
	case confidence >= 20:
		return RiskLow
	default:
		return RiskMinimal
	}
}

// newVerdict derives the verdict fields from an accumulated score and reason list.
func newVerdict(score int, reasons []string) Verdict {
	confidence := min(score, maxConfidence)
	return Verdict{
		IsPhishing: score >= ThresholdPhishing,
		Confidence: confidence,
		Risk:       RiskFor(confidence),
		Score:      score,
		Reasons:    uniqueReasons(reasons, MaxReasons),
	}
}

// uniqueReasons drops exact duplicates, keeping first occurrences, then
// truncates to limit. The result is never nil.
func uniqueReasons(reasons []string, limit int) []string {
	out := make([]string, 0, min(len(reasons), limit))
	seen := make(map[string]struct{}, len(reasons))
	for _, r := range reasons {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out
}
