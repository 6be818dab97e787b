package pipeline

import (
	"fmt"
	"strconv"

	"github.com/aluiziolira/go-scrape-amazon/models"
)

// Schema describes the tabular layout of one record kind.
type Schema struct {
	Kind    models.Kind
	Columns []string
	Row     func(models.Record) ([]string, error)
}

// ProductSchema is the column layout for product results.
func ProductSchema() Schema {
	return Schema{
		Kind:    models.KindProducts,
		Columns: []string{"title", "price", "rating", "reviews", "score", "url", "sponsored", "discounted", "before_discount", "asin"},
		Row: func(rec models.Record) ([]string, error) {
			p, ok := rec.(*models.Product)
			if !ok {
				return nil, fmt.Errorf("product schema: unexpected record %T", rec)
			}
			return []string{
				p.Title,
				p.Price,
				strconv.FormatFloat(p.Rating, 'f', -1, 64),
				strconv.Itoa(p.Reviews),
				strconv.FormatFloat(p.Score, 'f', 2, 64),
				p.URL,
				strconv.FormatBool(p.Sponsored),
				strconv.FormatBool(p.Discounted),
				p.BeforeDiscount,
				p.ASIN,
			}, nil
		},
	}
}

// ReviewSchema is the column layout for review results.
func ReviewSchema() Schema {
	return Schema{
		Kind:    models.KindReviews,
		Columns: []string{"id", "review_data", "name", "rating", "title", "review"},
		Row: func(rec models.Record) ([]string, error) {
			r, ok := rec.(*models.Review)
			if !ok {
				return nil, fmt.Errorf("review schema: unexpected record %T", rec)
			}
			return []string{
				r.ID,
				r.Date,
				r.Name,
				strconv.FormatFloat(r.Rating, 'f', -1, 64),
				r.Title,
				r.Body,
			}, nil
		},
	}
}

// SchemaFor returns the layout for kind.
func SchemaFor(kind models.Kind) (Schema, error) {
	switch kind {
	case models.KindProducts:
		return ProductSchema(), nil
	case models.KindReviews:
		return ReviewSchema(), nil
	default:
		return Schema{}, fmt.Errorf("no schema for kind %q", kind)
	}
}
