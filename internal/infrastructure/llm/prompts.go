package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/nestlings/planner/internal/domain"
)

const maxPageTextChars = 6000

const extractSystemPrompt = `You extract structured baby product data from retailer pages.
Reply with one JSON object with these keys:
name (string), description (string, at most 300 characters), category (one of: nursing, feeding, sleeping, safety, travel, play, bathing, clothing, health, nursery, other),
subcategory (string), brand (string), imageUrl (string), price (number in whole currency units or null), currency (ISO 4217 code),
ageMinMonths (integer or null), ageMaxMonths (integer or null), milestoneIds (array drawn from: prenatal, newborn, month3, month6, month9, month12, month18, month24),
tags (array of short lowercase strings), ecoFriendly (boolean), premium (boolean), rating (number 0-5 or null), inStock (boolean or null).
Use null when the page does not state a value. Never invent prices or ratings.`

const curateSystemPrompt = `You are a baby registry curator. Choose a small, complementary bundle of products for the given developmental milestone.
Only choose products from the supplied candidates, referring to them by id.
Reply with one JSON object: {"title": string, "summary": string, "items": [{"productId": string, "reason": string}]}.
Pick between 3 and 8 items, one sentence per reason, and respect the caregiver's budget tier and eco preference.`

// ExtractProduct asks the model to turn a reduced source page into a product draft
func (c *Client) ExtractProduct(ctx context.Context, page *domain.SourcePage) (*domain.ProductDraft, error) {
	if page == nil {
		return nil, fmt.Errorf("%w: no page supplied", domain.ErrInvalidRequest)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "URL: %s\n", page.URL)
	fmt.Fprintf(&b, "Title: %s\n", page.Title)
	if page.Description != "" {
		fmt.Fprintf(&b, "Meta description: %s\n", page.Description)
	}
	if page.ImageURL != "" {
		fmt.Fprintf(&b, "Image: %s\n", page.ImageURL)
	}
	if page.PriceHint != "" {
		fmt.Fprintf(&b, "Price hint: %s %s\n", page.PriceHint, page.Currency)
	}
	fmt.Fprintf(&b, "Page text:\n%s", truncate(page.Text, maxPageTextChars))

	content, err := c.complete(ctx, "extract", extractSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}
	return parseDraft(content)
}

type candidateView struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Price       *float64 `json:"price"`
	Rating      *float64 `json:"rating"`
	EcoFriendly bool     `json:"ecoFriendly"`
	Premium     bool     `json:"premium"`
}

type curateInput struct {
	Milestone  string          `json:"milestone"`
	Details    string          `json:"details,omitempty"`
	AgeMonths  int             `json:"ageMonths"`
	Budget     string          `json:"budgetTier"`
	Eco        bool            `json:"ecoPriority"`
	Candidates []candidateView `json:"candidates"`
}

// CurateBundle asks the model to pick and explain a milestone bundle from candidates
func (c *Client) CurateBundle(ctx context.Context, milestone *domain.Milestone, profile domain.PreferenceProfile, candidates []domain.Product) (string, string, []domain.CuratedPick, error) {
	if milestone == nil {
		return "", "", nil, fmt.Errorf("%w: no milestone supplied", domain.ErrInvalidRequest)
	}

	in := curateInput{
		Milestone: milestone.Title,
		Details:   milestone.Description,
		AgeMonths: milestone.AgeMonths,
		Budget:    string(profile.BudgetTier),
		Eco:       profile.EcoPriority,
	}
	for _, p := range candidates {
		view := candidateView{
			ID:          p.ID,
			Name:        p.Name,
			Category:    p.Category,
			Rating:      p.Rating,
			EcoFriendly: p.EcoFriendly,
			Premium:     p.Premium,
		}
		if price, ok := p.DisplayPrice(); ok {
			view.Price = &price
		}
		in.Candidates = append(in.Candidates, view)
	}

	user, err := json.Marshal(in)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to encode candidates: %w", err)
	}

	content, err := c.complete(ctx, "curate", curateSystemPrompt, string(user))
	if err != nil {
		return "", "", nil, err
	}

	bundle, err := parseBundle(content)
	if err != nil {
		return "", "", nil, err
	}
	return bundle.Title, bundle.Summary, bundle.Items, nil
}
