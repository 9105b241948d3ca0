package usecase

import (
	"regexp"
	"strings"
)

var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// DefaultCatalogCategories is the canonical category set products are filed under
var DefaultCatalogCategories = []string{
	"nursing", "feeding", "sleeping", "safety", "travel", "play",
	"bathing", "clothing", "health", "nursery",
}

// defaultCategoryAliases maps retailer vocabulary onto catalog categories
var defaultCategoryAliases = map[string]string{
	"breastfeeding": "nursing",
	"pump":          "nursing",
	"pumping":       "nursing",
	"bottle":        "feeding",
	"bottles":       "feeding",
	"highchair":     "feeding",
	"bib":           "feeding",
	"bibs":          "feeding",
	"crib":          "sleeping",
	"bassinet":      "sleeping",
	"swaddle":       "sleeping",
	"monitor":       "safety",
	"babyproofing":  "safety",
	"gate":          "safety",
	"stroller":      "travel",
	"carrier":       "travel",
	"car":           "travel",
	"toy":           "play",
	"toys":          "play",
	"activity":      "play",
	"bath":          "bathing",
	"tub":           "bathing",
	"apparel":       "clothing",
	"onesie":        "clothing",
	"thermometer":   "health",
	"furniture":     "nursery",
	"decor":         "nursery",
}

// categoryStopWords carry no signal about where a product belongs
var categoryStopWords = map[string]bool{
	"and": true, "the": true, "for": true, "of": true, "with": true,
	"baby": true, "babies": true, "infant": true, "toddler": true, "kids": true,
	"products": true, "product": true, "accessories": true, "essentials": true,
	"gear": true, "supplies": true, "items": true,
}

// CategoryMatchConfig holds configuration for the category matcher
type CategoryMatchConfig struct {
	Categories        []string
	Aliases           map[string]string
	MinConfidence     float64
	FuzzyEditDistance int
}

// CategoryMatcher files free-text categories, such as the ones an LLM
// extracts from retailer pages, under the canonical catalog categories
type CategoryMatcher struct {
	categories    []string
	known         map[string]bool
	aliases       map[string]string
	minConfidence float64
	fuzzyDistance int
}

// NewCategoryMatcher creates a matcher, filling unset configuration with defaults
func NewCategoryMatcher(config CategoryMatchConfig) *CategoryMatcher {
	categories := config.Categories
	if len(categories) == 0 {
		categories = DefaultCatalogCategories
	}

	m := &CategoryMatcher{
		known:         make(map[string]bool, len(categories)),
		aliases:       make(map[string]string),
		minConfidence: config.MinConfidence,
		fuzzyDistance: config.FuzzyEditDistance,
	}
	for _, c := range categories {
		c = normalizeCategory(c)
		if c == "" || m.known[c] {
			continue
		}
		m.known[c] = true
		m.categories = append(m.categories, c)
	}

	aliases := config.Aliases
	if aliases == nil {
		aliases = defaultCategoryAliases
	}
	for k, v := range aliases {
		if v = normalizeCategory(v); m.known[v] {
			m.aliases[normalizeCategory(k)] = v
		}
	}

	if m.minConfidence <= 0 {
		m.minConfidence = 30.0
	}
	if m.fuzzyDistance <= 0 {
		m.fuzzyDistance = 1
	}
	return m
}

// Match returns the canonical category for raw together with a 0-100
// confidence. When nothing reaches the confidence threshold the
// normalized input is returned unchanged with its best score.
func (m *CategoryMatcher) Match(raw string) (string, float64) {
	normalized := normalizeCategory(raw)
	if normalized == "" {
		return "", 0
	}
	if m.known[normalized] {
		return normalized, 100
	}

	tokens := tokenize(normalized)
	if len(tokens) == 0 {
		return normalized, 0
	}

	best, bestScore := "", 0.0
	for _, c := range m.categories {
		matched := 0
		for _, t := range tokens {
			if m.tokenMatches(t, c) {
				matched++
			}
		}
		score := float64(matched) / float64(len(tokens)) * 100
		// first category in configuration order wins a tie
		if score > bestScore {
			best, bestScore = c, score
		}
	}

	if best == "" || bestScore < m.minConfidence {
		return normalized, bestScore
	}
	return best, bestScore
}

func (m *CategoryMatcher) tokenMatches(token, category string) bool {
	if token == category || m.aliases[token] == category || m.aliases[strings.TrimSuffix(token, "s")] == category {
		return true
	}
	// "sleep" files under "sleeping", "nurse" under "nursing"
	if len(token) >= 4 && (strings.HasPrefix(category, token) || strings.HasPrefix(token, category)) {
		return true
	}
	if len(token) >= 5 && len(category) >= 4 && strings.HasPrefix(category, token[:len(token)-1]) {
		return true
	}
	return fuzzyTokenMatch(token, category, m.fuzzyDistance)
}

// tokenize splits a string into lowercase tokens without punctuation,
// stop words or pure numbers
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 1 || categoryStopWords[word] || isNumeric(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// fuzzyTokenMatch checks if two tokens are within the edit distance threshold.
// Tokens shorter than four characters only match exactly.
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	prev := make([]int, len(r2)+1)
	curr := make([]int, len(r2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= len(r2); j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(r2)]
}
