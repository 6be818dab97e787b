package models

import (
	"fmt"
	"strings"
)

// DefaultNumber is used when a request does not name a count.
const DefaultNumber = 10

// ScrapeRequest is the caller's intent for one run.
type ScrapeRequest struct {
	Kind             Kind   `yaml:"kind"`
	Keyword          string `yaml:"keyword"`
	ASIN             string `yaml:"asin"`
	Number           int    `yaml:"number"`
	IncludeSponsored bool   `yaml:"sponsored"`
	Sort             bool   `yaml:"sort"`
	Persist          bool   `yaml:"save"`
	Interactive      bool   `yaml:"cli"`
}

// ValidationError rejects a request before any network activity.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Reason
	}
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// WithDefaults returns a copy with the default count applied.
func (r ScrapeRequest) WithDefaults() ScrapeRequest {
	if r.Number == 0 {
		r.Number = DefaultNumber
	}
	r.Keyword = strings.TrimSpace(r.Keyword)
	r.ASIN = strings.TrimSpace(r.ASIN)
	return r
}

// Target is the keyword for products and the ASIN for reviews.
func (r ScrapeRequest) Target() string {
	if r.Kind == KindReviews {
		return r.ASIN
	}
	return r.Keyword
}

// Validate checks the request against its kind's rules.
func (r ScrapeRequest) Validate() error {
	if !r.Kind.Valid() {
		return &ValidationError{Field: "kind", Reason: fmt.Sprintf("must be %q or %q, got %q", KindProducts, KindReviews, r.Kind)}
	}
	if r.Number < 0 {
		return &ValidationError{Field: "number", Reason: "cannot be negative"}
	}

	switch r.Kind {
	case KindProducts:
		if r.Keyword == "" {
			return &ValidationError{Field: "keyword", Reason: "keyword is missing"}
		}
	case KindReviews:
		if r.ASIN == "" {
			return &ValidationError{Field: "asin", Reason: "ASIN is missing"}
		}
	}

	if ceiling := r.Kind.Ceiling(); r.Number > ceiling {
		return &ValidationError{Field: "number", Reason: fmt.Sprintf("maximum you can get is %d %s", ceiling, r.Kind)}
	}
	return nil
}
