package domain

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

const (
	// Scores strictly above PositiveThreshold are positive, strictly below
	// NegativeThreshold are negative.
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05

	ToneUnknown = "unknown"
)

func (l SentimentLabel) Valid() bool {
	switch l {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

// DeriveLabel maps a locally computed score to its label.
func DeriveLabel(score float64) SentimentLabel {
	switch {
	case score > PositiveThreshold:
		return SentimentPositive
	case score < NegativeThreshold:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// ClampScore bounds a score to [-1, 1].
func ClampScore(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

// Classification is the enrichment output attached to an article.
type Classification struct {
	SentimentScore float64
	SentimentLabel SentimentLabel
	Tone           string
	Topics         []string
}

// NeutralClassification is the fallback used whenever classification is
// skipped or fails.
func NeutralClassification() Classification {
	return Classification{
		SentimentScore: 0,
		SentimentLabel: SentimentNeutral,
		Tone:           ToneUnknown,
	}
}
