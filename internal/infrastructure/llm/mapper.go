package llm

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/nestlings/planner/internal/domain"
)

// numberRegex finds the first decimal number in strings like "$1,299.00"
var numberRegex = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// flexNumber decodes a JSON number, a numeric string or null
type flexNumber struct {
	value *float64
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		match := numberRegex.FindString(strings.ReplaceAll(s, ",", ""))
		if match == "" {
			return nil
		}
		v, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return nil
		}
		n.value = &v
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	n.value = &v
	return nil
}

func (n flexNumber) intPtr() *int {
	if n.value == nil {
		return nil
	}
	v := int(*n.value)
	return &v
}

// flexBool decodes a JSON boolean, "true"/"false" strings or null
type flexBool struct {
	value *bool
}

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	switch strings.ToLower(strings.Trim(string(bytes.TrimSpace(data)), `"`)) {
	case "true", "yes":
		v = true
	case "false", "no":
		v = false
	default:
		return nil
	}
	b.value = &v
	return nil
}

func (b flexBool) or(fallback bool) bool {
	if b.value == nil {
		return fallback
	}
	return *b.value
}

type draftPayload struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Category     string     `json:"category"`
	Subcategory  string     `json:"subcategory"`
	Brand        string     `json:"brand"`
	ImageURL     string     `json:"imageUrl"`
	Price        flexNumber `json:"price"`
	Currency     string     `json:"currency"`
	AgeMinMonths flexNumber `json:"ageMinMonths"`
	AgeMaxMonths flexNumber `json:"ageMaxMonths"`
	MilestoneIDs []string   `json:"milestoneIds"`
	Tags         []string   `json:"tags"`
	EcoFriendly  flexBool   `json:"ecoFriendly"`
	Premium      flexBool   `json:"premium"`
	Rating       flexNumber `json:"rating"`
	InStock      flexBool   `json:"inStock"`
}

type bundlePayload struct {
	Title   string               `json:"title"`
	Summary string               `json:"summary"`
	Items   []domain.CuratedPick `json:"items"`
}

// stripCodeFence removes a markdown ```json fence some models wrap around replies
func stripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseDraft decodes an extraction reply into a ProductDraft
func parseDraft(content string) (*domain.ProductDraft, error) {
	var p draftPayload
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &p); err != nil {
		return nil, fmt.Errorf("%w: extraction reply is not valid JSON: %v", domain.ErrLLMFailure, err)
	}

	return &domain.ProductDraft{
		Name:         strings.TrimSpace(p.Name),
		Description:  strings.TrimSpace(p.Description),
		Category:     strings.TrimSpace(p.Category),
		Subcategory:  strings.TrimSpace(p.Subcategory),
		Brand:        strings.TrimSpace(p.Brand),
		ImageURL:     strings.TrimSpace(p.ImageURL),
		Price:        p.Price.value,
		Currency:     strings.TrimSpace(p.Currency),
		AgeMinMonths: p.AgeMinMonths.intPtr(),
		AgeMaxMonths: p.AgeMaxMonths.intPtr(),
		MilestoneIDs: p.MilestoneIDs,
		Tags:         p.Tags,
		EcoFriendly:  p.EcoFriendly.or(false),
		Premium:      p.Premium.or(false),
		Rating:       p.Rating.value,
		InStock:      p.InStock.value,
	}, nil
}

// parseBundle decodes a curation reply
func parseBundle(content string) (*bundlePayload, error) {
	var b bundlePayload
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &b); err != nil {
		return nil, fmt.Errorf("%w: curation reply is not valid JSON: %v", domain.ErrLLMFailure, err)
	}
	for i := range b.Items {
		b.Items[i].ProductID = strings.TrimSpace(b.Items[i].ProductID)
		b.Items[i].Reason = strings.TrimSpace(b.Items[i].Reason)
	}
	return &b, nil
}
