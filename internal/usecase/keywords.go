package usecase

import (
	"regexp"
	"strings"
)

const maxDerivedTags = 6

var (
	// Matches size/quantity patterns like "8 oz", "250 ml", "2.5 lb", "0-6 months"
	sizeQuantityPattern = regexp.MustCompile(`\b\d+\.?\d*\s*(fl\s*)?oz\b|\b\d+\.?\d*\s*ounces?\b|\b\d+\.?\d*\s*lbs?\b|\b\d+\.?\d*\s*ml\b|\b\d+\.?\d*\s*(kg|g|cm|mm|in)\b|\b\d+\s*-\s*\d+\s*(months?|mo|m)\b|\b\d+\+?\s*(months?|mo)\b`)

	// Matches pack/count patterns like "3 pack", "pack of 6", "2-pack", "24 count", "4 ct"
	packCountPattern = regexp.MustCompile(`\b\d+[-\s]*(pack|pk|count|ct|pcs|pieces?)\b|\bpack\s*of\s*\d+\b|\bset\s*of\s*\d+\b`)
)

// keywordNoiseWords are marketing and packaging terms that make poor tags
var keywordNoiseWords = map[string]bool{
	"new": true, "improved": true, "premium": true, "best": true, "ultimate": true,
	"deluxe": true, "original": true, "classic": true, "edition": true, "bundle": true,
	"size": true, "large": true, "medium": true, "small": true, "mini": true,
	"pack": true, "set": true, "piece": true, "pieces": true, "count": true,
	"box": true, "bag": true, "color": true, "colour": true, "white": true,
	"black": true, "grey": true, "gray": true,
}

// ExtractKeywords derives search tags from a product name and brand. Size,
// pack-count and marketing terms are dropped, the brand itself is not a
// tag, and at most six distinct keywords are returned in name order.
func ExtractKeywords(name, brand string) []string {
	cleaned := strings.ToLower(name)
	cleaned = sizeQuantityPattern.ReplaceAllString(cleaned, " ")
	cleaned = packCountPattern.ReplaceAllString(cleaned, " ")

	brandTokens := make(map[string]bool)
	for _, t := range tokenize(brand) {
		brandTokens[t] = true
	}

	keywords := make([]string, 0, maxDerivedTags)
	seen := make(map[string]bool)
	for _, t := range tokenize(cleaned) {
		if len(t) < 3 || keywordNoiseWords[t] || brandTokens[t] || seen[t] {
			continue
		}
		seen[t] = true
		keywords = append(keywords, t)
		if len(keywords) == maxDerivedTags {
			break
		}
	}
	return keywords
}
