package domain

import "errors"

var (
	// ErrProductNotFound is returned when no product exists for the given id
	ErrProductNotFound = errors.New("product not found")

	// ErrMilestoneNotFound is returned when no milestone exists for the given id
	ErrMilestoneNotFound = errors.New("milestone not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrInvalidProduct is returned when a product violates a catalog invariant
	ErrInvalidProduct = errors.New("invalid product")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrLLMUnavailable is returned when no LLM client is configured
	ErrLLMUnavailable = errors.New("LLM integration not configured")

	// ErrLLMFailure is returned when the LLM API request fails
	ErrLLMFailure = errors.New("LLM API request failed")

	// ErrSourceFetch is returned when a product source page cannot be fetched
	ErrSourceFetch = errors.New("source page fetch failed")

	// ErrUnauthorized is returned when a caller identity is required but missing
	ErrUnauthorized = errors.New("unauthorized")
)
