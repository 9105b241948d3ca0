package usecase

import (
	"testing"
)

func TestNewCategoryMatcher(t *testing.T) {
	t.Run("uses defaults when unset", func(t *testing.T) {
		m := NewCategoryMatcher(CategoryMatchConfig{})
		if len(m.categories) != len(DefaultCatalogCategories) {
			t.Errorf("categories = %d, want %d", len(m.categories), len(DefaultCatalogCategories))
		}
		if m.minConfidence != 30 {
			t.Errorf("minConfidence = %v, want 30 (default)", m.minConfidence)
		}
		if m.fuzzyDistance != 1 {
			t.Errorf("fuzzyDistance = %v, want 1 (default)", m.fuzzyDistance)
		}
	})

	t.Run("drops aliases for unknown categories", func(t *testing.T) {
		m := NewCategoryMatcher(CategoryMatchConfig{Categories: []string{"Travel", "travel", " "}})
		if len(m.categories) != 1 || m.categories[0] != "travel" {
			t.Errorf("categories = %v, want [travel]", m.categories)
		}
		if _, ok := m.aliases["crib"]; ok {
			t.Error("alias to an unconfigured category should be dropped")
		}
		if m.aliases["stroller"] != "travel" {
			t.Errorf("stroller alias = %q, want travel", m.aliases["stroller"])
		}
	})
}

func TestCategoryMatcher_Match(t *testing.T) {
	m := NewCategoryMatcher(CategoryMatchConfig{})

	testCases := []struct {
		name      string
		raw       string
		want      string
		wantScore float64
	}{
		{name: "exact category", raw: " Feeding ", want: "feeding", wantScore: 100},
		{name: "stem of category", raw: "Sleep", want: "sleeping", wantScore: 100},
		{name: "typo within edit distance", raw: "sleepng", want: "sleeping", wantScore: 100},
		{name: "alias", raw: "Bath Time", want: "bathing", wantScore: 50},
		{name: "plural alias", raw: "Strollers", want: "travel", wantScore: 100},
		{name: "tie goes to the first configured category", raw: "Sleep & Nursery", want: "sleeping", wantScore: 50},
		{name: "stop words only keeps input", raw: "Baby Gear", want: "baby gear", wantScore: 0},
		{name: "no match keeps input", raw: "Kitchen Gadgets", want: "kitchen gadgets", wantScore: 0},
		{name: "empty", raw: "  ", want: "", wantScore: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, score := m.Match(tc.raw)
			if got != tc.want {
				t.Errorf("Match(%q) = %q, want %q", tc.raw, got, tc.want)
			}
			if score != tc.wantScore {
				t.Errorf("Match(%q) score = %v, want %v", tc.raw, score, tc.wantScore)
			}
		})
	}

	t.Run("below threshold keeps input", func(t *testing.T) {
		strict := NewCategoryMatcher(CategoryMatchConfig{MinConfidence: 60})
		got, score := strict.Match("Bath Time")
		if got != "bath time" {
			t.Errorf("Match = %q, want %q", got, "bath time")
		}
		if score != 50 {
			t.Errorf("score = %v, want 50", score)
		}
	})

	t.Run("custom categories", func(t *testing.T) {
		custom := NewCategoryMatcher(CategoryMatchConfig{Categories: []string{"gear", "toys"}})
		if got, _ := custom.Match("Stuffed Toys"); got != "toys" {
			t.Errorf("Match = %q, want toys", got)
		}
	})
}

func TestTokenize(t *testing.T) {
	got := tokenize("Baby Bottles, 3 x 250ml & Accessories!")
	want := []string{"bottles", "250ml"}
	if len(got) != len(want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tokenize[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLevenshteinDistance(t *testing.T) {
	testCases := []struct {
		s1, s2 string
		want   int
	}{
		{"kitten", "sitting", 3},
		{"", "abc", 3},
		{"abc", "", 3},
		{"same", "same", 0},
		{"crib", "cribs", 1},
	}

	for _, tc := range testCases {
		if got := levenshteinDistance(tc.s1, tc.s2); got != tc.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tc.s1, tc.s2, got, tc.want)
		}
	}
}

func TestFuzzyTokenMatch(t *testing.T) {
	if !fuzzyTokenMatch("nursng", "nursing", 1) {
		t.Error("expected one-edit match")
	}
	if fuzzyTokenMatch("car", "cat", 1) {
		t.Error("short tokens must match exactly")
	}
	if fuzzyTokenMatch("bathing", "bath", 1) {
		t.Error("length difference beyond threshold must not match")
	}
}
