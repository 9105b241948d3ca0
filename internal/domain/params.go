package domain

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Lenient parsers shared by the query-string and JSON filter decoders.
// A value that does not parse is reported as not supplied (nil).

// ParseList splits repeated and comma-separated values, trimming blanks and
// duplicates. It returns nil when nothing remains.
func ParseList(raw []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			part = strings.TrimSpace(part)
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}

func ParseInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

func ParseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseBool accepts true/false, 1/0 and yes/no in any case
func ParseBool(s string) *bool {
	var v bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		v = true
	case "false", "0", "no":
		v = false
	default:
		return nil
	}
	return &v
}

func ParseString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// UnmarshalJSON decodes a filter object leniently. Numbers and booleans may
// arrive as strings, list fields accept a single value, and a field of the
// wrong shape is dropped instead of failing the whole filter. Anything other
// than an object decodes to an empty filter.
func (f *ProductFilter) UnmarshalJSON(data []byte) error {
	*f = ProductFilter{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}

	f.Categories = ParseList(append(rawStrings(fields["categories"]), rawStrings(fields["category"])...))
	f.MilestoneIDs = ParseList(append(rawStrings(fields["milestoneIds"]), rawStrings(fields["milestoneId"])...))
	f.AgeMonths = ParseInt(rawScalar(fields["ageMonths"]))
	f.MinPrice = ParseFloat(rawScalar(fields["minPrice"]))
	f.MaxPrice = ParseFloat(rawScalar(fields["maxPrice"]))
	f.MinRating = ParseFloat(rawScalar(fields["minRating"]))
	f.BudgetTier = ParseString(rawScalar(fields["budgetTier"]))
	if f.BudgetTier == nil {
		f.BudgetTier = ParseString(rawScalar(fields["budget"]))
	}
	f.Search = ParseString(rawScalar(fields["search"]))
	f.EcoFriendly = ParseBool(rawScalar(fields["ecoFriendly"]))
	f.Premium = ParseBool(rawScalar(fields["premium"]))
	f.InStock = ParseBool(rawScalar(fields["inStock"]))
	return nil
}

// rawScalar returns the text of a JSON string, number or boolean, and ""
// for null, arrays, objects or a missing field
func rawScalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '[', '{', 'n':
		return ""
	}
	return string(raw)
}

// rawStrings reads a list field given as an array or a single scalar
func rawStrings(raw json.RawMessage) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		if s := rawScalar(raw); s != "" {
			return []string{s}
		}
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := rawScalar(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
