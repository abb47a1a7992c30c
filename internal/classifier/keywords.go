package classifier

import (
	"fmt"
	"strings"
)

// KeywordTable maps topic names to case-insensitive substring keywords. It is
// immutable once built.
type KeywordTable struct {
	entries []topicKeywords
}

type topicKeywords struct {
	topic    string
	keywords []string
}

// TopicKeywords is one row of a keyword table definition.
type TopicKeywords struct {
	Topic    string
	Keywords []string
}

// NewKeywordTable copies and normalizes the given rows. Row order is kept and
// determines the order of matched topics.
func NewKeywordTable(rows []TopicKeywords) (*KeywordTable, error) {
	seen := make(map[string]struct{}, len(rows))
	entries := make([]topicKeywords, 0, len(rows))

	for _, row := range rows {
		topic := strings.TrimSpace(row.Topic)
		if topic == "" {
			return nil, fmt.Errorf("keyword table: empty topic name")
		}
		if _, dup := seen[topic]; dup {
			return nil, fmt.Errorf("keyword table: duplicate topic %q", topic)
		}
		seen[topic] = struct{}{}

		keywords := make([]string, 0, len(row.Keywords))
		for _, kw := range row.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("keyword table: topic %q has no keywords", topic)
		}

		entries = append(entries, topicKeywords{topic: topic, keywords: keywords})
	}

	return &KeywordTable{entries: entries}, nil
}

// DefaultKeywordTable returns the built-in crypto topic table.
func DefaultKeywordTable() *KeywordTable {
	table, err := NewKeywordTable([]TopicKeywords{
		{Topic: "Bitcoin", Keywords: []string{"bitcoin", "btc"}},
		{Topic: "Ethereum", Keywords: []string{"ethereum", "eth"}},
		{Topic: "DeFi", Keywords: []string{"defi", "decentralized finance"}},
		{Topic: "NFT", Keywords: []string{"nft", "non-fungible"}},
		{Topic: "Regulation", Keywords: []string{"regulation", "sec", "compliance", "legal"}},
		{Topic: "Mining", Keywords: []string{"mining", "miner"}},
		{Topic: "Exchanges", Keywords: []string{"exchange", "trading", "binance", "coinbase"}},
		{Topic: "Cryptocurrency", Keywords: []string{"cryptocurrency", "crypto"}},
	})
	if err != nil {
		panic(err)
	}
	return table
}

// Match returns every topic with at least one keyword occurring in text.
func (t *KeywordTable) Match(text string) []string {
	if t == nil || text == "" {
		return nil
	}

	lower := strings.ToLower(text)
	var topics []string
	for _, e := range t.entries {
		for _, kw := range e.keywords {
			if strings.Contains(lower, kw) {
				topics = append(topics, e.topic)
				break
			}
		}
	}
	return topics
}

// Topics lists the table's topic names in definition order.
func (t *KeywordTable) Topics() []string {
	names := make([]string, len(t.entries))
	for i, e := range t.entries {
		names[i] = e.topic
	}
	return names
}
