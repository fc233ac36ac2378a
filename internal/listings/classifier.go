package listings

import (
	"strings"

	"github.com/Zymart/shopbot-backend/pkg/enums"
)

// Classification is the result of categorizing a listing from its free text.
type Classification struct {
	Category   enums.ListingCategory
	Tags       []string
	Confidence float64
}

// Classifier derives a category and search tags from the listing title and
// description. Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(itemName, description string) Classification
}

// categoryKeywords maps each category to the tokens that vote for it. First
// category with the most hits wins; ties break in declaration order.
var categoryKeywords = []struct {
	category enums.ListingCategory
	tokens   []string
}{
	{enums.ListingCategoryVanguard, []string{"vanguard", "valk", "exotic"}},
	{enums.ListingCategoryRoblox, []string{"roblox", "limited", "adopt me", "blox", "pet sim", "mm2"}},
	{enums.ListingCategorySkins, []string{"skin", "knife", "glove", "fortnite", "cs2", "valorant"}},
	{enums.ListingCategoryCurrency, []string{"robux", "coins", "gold", "gems", "credits", "vbucks"}},
	{enums.ListingCategoryAnime, []string{"anime", "fruit", "shindo", "aut", "gpo"}},
	{enums.ListingCategoryRare, []string{"rare", "og", "untradeable", "discontinued", "event"}},
}

type keywordClassifier struct{}

// NewKeywordClassifier returns the default token-voting classifier.
func NewKeywordClassifier() Classifier {
	return keywordClassifier{}
}

func (keywordClassifier) Classify(itemName, description string) Classification {
	text := strings.ToLower(itemName + " " + description)

	best := enums.ListingCategoryOther
	bestHits := 0
	var tags []string
	for _, entry := range categoryKeywords {
		hits := 0
		for _, token := range entry.tokens {
			if strings.Contains(text, token) {
				hits++
				tags = appendUnique(tags, strings.ReplaceAll(token, " ", "-"))
			}
		}
		if hits > bestHits {
			best = entry.category
			bestHits = hits
		}
	}

	confidence := 0.0
	if bestHits > 0 {
		confidence = float64(bestHits) / float64(bestHits+1)
	}
	return Classification{Category: best, Tags: tags, Confidence: confidence}
}

func appendUnique(tags []string, tag string) []string {
	for _, existing := range tags {
		if existing == tag {
			return tags
		}
	}
	return append(tags, tag)
}
