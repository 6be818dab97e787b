// Package models defines data structures for the scraper.
package models

// Kind selects which listing the scraper walks.
type Kind string

const (
	KindProducts Kind = "products"
	KindReviews  Kind = "reviews"
)

// Ceiling returns the maximum number of records a single run may request.
func (k Kind) Ceiling() int {
	switch k {
	case KindProducts:
		return 100
	case KindReviews:
		return 200
	default:
		return 0
	}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindProducts || k == KindReviews
}

// Record is one extracted item, keyed by the identifier scraped from the page.
type Record interface {
	Key() string
	// Rank is the value sorted on when ordering is requested.
	Rank() float64
}

// Product is a single search result card.
type Product struct {
	ASIN           string  `json:"asin"`
	Title          string  `json:"title"`
	Price          string  `json:"price"`
	BeforeDiscount string  `json:"before_discount"`
	URL            string  `json:"url"`
	Rating         float64 `json:"rating"`
	Reviews        int     `json:"reviews"`
	Score          float64 `json:"score"`
	Sponsored      bool    `json:"sponsored"`
	Discounted     bool    `json:"discounted"`
}

func (p *Product) Key() string    { return p.ASIN }
func (p *Product) Rank() float64 { return p.Score }

// Review is a single customer review on a product's review listing.
type Review struct {
	ID     string  `json:"id"`
	Date   string  `json:"review_data"`
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
	Title  string  `json:"title"`
	Body   string  `json:"review"`
}

func (r *Review) Key() string    { return r.ID }
func (r *Review) Rank() float64 { return r.Rating }

// ResultSet holds the outcome of one scrape run.
type ResultSet struct {
	Kind    Kind
	Records []Record
	// Pages counts successful page fetches; Cursor is the page that would
	// have been requested next.
	Pages  int
	Cursor int
	// Path is the persisted output file, empty when nothing was written.
	Path string
	// StopReason names why pagination ended.
	StopReason string
}

// Len returns the number of accumulated records.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Records)
}

// Products returns the product records, skipping any other kind.
func (rs *ResultSet) Products() []*Product {
	out := make([]*Product, 0, rs.Len())
	for _, rec := range rs.Records {
		if p, ok := rec.(*Product); ok {
			out = append(out, p)
		}
	}
	return out
}

// Reviews returns the review records, skipping any other kind.
func (rs *ResultSet) Reviews() []*Review {
	out := make([]*Review, 0, rs.Len())
	for _, rec := range rs.Records {
		if r, ok := rec.(*Review); ok {
			out = append(out, r)
		}
	}
	return out
}
