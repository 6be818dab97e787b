// Package parser turns listing pages into records.
package parser

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-amazon/models"
)

const (
	productNodes    = "div[data-index]"
	productScope    = "div[data-asin]"
	reviewContainer = ".a-section.a-spacing-none.review-views.celwidget"
	reviewScope     = "[id]"
)

// Options bounds a single extraction.
type Options struct {
	// Remaining is how many more records the caller can accept.
	Remaining int
	// IncludeSponsored keeps sponsored product cards; they are skipped otherwise.
	IncludeSponsored bool
}

// Extractor parses product and review listing pages.
type Extractor struct {
	// Host prefixes relative product links.
	Host string
	// OnGap, when set, is told about every field that could not be read.
	OnGap func(kind models.Kind, field string)
}

// NewExtractor returns an extractor building absolute links against host.
func NewExtractor(host string) *Extractor {
	return &Extractor{Host: host}
}

// Extract parses body once and returns at most opts.Remaining records in the
// order their identifiers were first seen.
func (x *Extractor) Extract(body []byte, kind models.Kind, opts Options) ([]models.Record, error) {
	if opts.Remaining <= 0 {
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	switch kind {
	case models.KindProducts:
		return x.products(doc, opts), nil
	case models.KindReviews:
		return x.reviews(doc, opts), nil
	default:
		return nil, fmt.Errorf("unsupported kind %q", kind)
	}
}

func (x *Extractor) products(doc *goquery.Document, opts Options) []models.Record {
	reg := newRegistry(opts.Remaining)
	doc.Find(productNodes).EachWithBreak(func(_ int, node *goquery.Selection) bool {
		if reg.full() {
			return false
		}
		asin, ok := node.Attr("data-asin")
		if !ok || asin == "" {
			return true
		}
		if !opts.IncludeSponsored && isSponsored(node) {
			return true
		}
		reg.add(asin)
		return true
	})

	fields := productFields(x.Host)
	out := make([]models.Record, 0, len(reg.order))
	for _, asin := range reg.order {
		p := &models.Product{ASIN: asin}
		applyFields(scoped(doc, productScope, "data-asin", asin), p, fields, x.gap(models.KindProducts))
		out = append(out, p)
	}
	return out
}

func (x *Extractor) reviews(doc *goquery.Document, opts Options) []models.Record {
	reg := newRegistry(opts.Remaining)
	doc.Find(reviewContainer).First().Children().EachWithBreak(func(_ int, node *goquery.Selection) bool {
		if reg.full() {
			return false
		}
		id, ok := node.Attr("id")
		if !ok || id == "" {
			return true
		}
		reg.add(id)
		return true
	})

	fields := reviewFields()
	out := make([]models.Record, 0, len(reg.order))
	for _, id := range reg.order {
		r := &models.Review{ID: id}
		applyFields(scoped(doc, reviewScope, "id", id), r, fields, x.gap(models.KindReviews))
		out = append(out, r)
	}
	return out
}

func (x *Extractor) gap(kind models.Kind) func(string) {
	if x.OnGap == nil {
		return nil
	}
	return func(field string) {
		x.OnGap(kind, field)
	}
}

// scoped selects every node carrying attr=id, so repeated cards for the same
// identifier feed a single record.
func scoped(doc *goquery.Document, selector, attr, id string) *goquery.Selection {
	return doc.Find(selector).FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr(attr)
		return v == id
	})
}

type registry struct {
	limit int
	order []string
	seen  map[string]struct{}
}

func newRegistry(limit int) *registry {
	return &registry{limit: limit, seen: make(map[string]struct{})}
}

func (r *registry) full() bool {
	return len(r.order) >= r.limit
}

func (r *registry) add(id string) {
	if _, ok := r.seen[id]; ok {
		return
	}
	r.seen[id] = struct{}{}
	r.order = append(r.order, id)
}
