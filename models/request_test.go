package models

import (
	"errors"
	"strings"
	"testing"
)

func TestScrapeRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     ScrapeRequest
		wantErr string
	}{
		{
			name: "valid products",
			req:  ScrapeRequest{Kind: KindProducts, Keyword: "xbox one", Number: 100},
		},
		{
			name: "valid reviews",
			req:  ScrapeRequest{Kind: KindReviews, ASIN: "B01GW3H3U8", Number: 200},
		},
		{
			name:    "unknown kind",
			req:     ScrapeRequest{Kind: "offers", Keyword: "xbox"},
			wantErr: "kind",
		},
		{
			name:    "missing keyword",
			req:     ScrapeRequest{Kind: KindProducts, Number: 10},
			wantErr: "keyword is missing",
		},
		{
			name:    "missing asin",
			req:     ScrapeRequest{Kind: KindReviews, Number: 10},
			wantErr: "ASIN is missing",
		},
		{
			name:    "products over ceiling",
			req:     ScrapeRequest{Kind: KindProducts, Keyword: "xbox", Number: 101},
			wantErr: "maximum you can get is 100 products",
		},
		{
			name:    "reviews over ceiling",
			req:     ScrapeRequest{Kind: KindReviews, ASIN: "B01GW3H3U8", Number: 201},
			wantErr: "maximum you can get is 200 reviews",
		},
		{
			name:    "negative number",
			req:     ScrapeRequest{Kind: KindProducts, Keyword: "xbox", Number: -1},
			wantErr: "negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
		})
	}
}

func TestScrapeRequestWithDefaults(t *testing.T) {
	req := ScrapeRequest{Kind: KindProducts, Keyword: "  ps5  "}.WithDefaults()
	if req.Number != DefaultNumber {
		t.Fatalf("number = %d, want %d", req.Number, DefaultNumber)
	}
	if req.Keyword != "ps5" {
		t.Fatalf("keyword = %q, want trimmed", req.Keyword)
	}
	if got := req.Target(); got != "ps5" {
		t.Fatalf("target = %q, want ps5", got)
	}

	reviews := ScrapeRequest{Kind: KindReviews, ASIN: "B01GW3H3U8", Number: 30}.WithDefaults()
	if reviews.Number != 30 {
		t.Fatalf("explicit number overwritten: %d", reviews.Number)
	}
	if got := reviews.Target(); got != "B01GW3H3U8" {
		t.Fatalf("target = %q, want asin", got)
	}
}
