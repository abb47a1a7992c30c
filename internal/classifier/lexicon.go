package classifier

import (
	"context"
	"strings"
	"unicode"

	"crypto_news/internal/domain"
)

var (
	positiveWords = wordSet(
		"good", "great", "excellent", "positive", "amazing", "wonderful",
		"fantastic", "terrific", "outstanding", "superb", "brilliant",
		"happy", "pleased", "delighted", "satisfied", "impressed",
	)
	negativeWords = wordSet(
		"bad", "terrible", "awful", "poor", "negative", "horrible",
		"dreadful", "disappointing", "inadequate", "inferior", "mediocre",
		"annoyed", "angry", "upset", "dissatisfied", "troubled",
	)
)

// toneLexicon is checked in order; ties go to the earlier tone.
var toneLexicon = []struct {
	tone  string
	words map[string]struct{}
}{
	{"analytical", wordSet("analyze", "analysis", "research", "study", "data", "evidence", "investigate")},
	{"confident", wordSet("confident", "certain", "sure", "definitely", "absolutely", "undoubtedly")},
	{"tentative", wordSet("maybe", "perhaps", "possibly", "might", "could", "uncertain", "unclear")},
	{"informative", wordSet("inform", "information", "explain", "clarify", "detail", "elaborate")},
	{"critical", wordSet("criticize", "problem", "issue", "concern", "flaw", "defect", "negative")},
}

const toneNeutral = "neutral"

// LexiconClassifier scores sentiment locally from word lists and derives the
// label from the score. Topics come from the keyword table.
type LexiconClassifier struct {
	table *KeywordTable
}

func NewLexiconClassifier(table *KeywordTable) *LexiconClassifier {
	return &LexiconClassifier{table: table}
}

func (c *LexiconClassifier) Name() string {
	return "lexicon"
}

func (c *LexiconClassifier) Classify(_ context.Context, text string) (domain.Classification, error) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return domain.NeutralClassification(), nil
	}

	var positive, negative int
	toneCounts := make([]int, len(toneLexicon))
	for _, tok := range tokens {
		if _, ok := positiveWords[tok]; ok {
			positive++
		} else if _, ok := negativeWords[tok]; ok {
			negative++
		}
		for i, t := range toneLexicon {
			if _, ok := t.words[tok]; ok {
				toneCounts[i]++
			}
		}
	}

	score := domain.ClampScore(float64(positive-negative) / float64(len(tokens)))

	tone := toneNeutral
	best := 0
	for i, n := range toneCounts {
		if n > best {
			best = n
			tone = toneLexicon[i].tone
		}
	}

	return domain.Classification{
		SentimentScore: score,
		SentimentLabel: domain.DeriveLabel(score),
		Tone:           tone,
		Topics:         c.table.Match(text),
	}, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
