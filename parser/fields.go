package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/aluiziolira/go-scrape-amazon/models"
)

var errNodeMissing = errors.New("node not found")

// field is one best-effort extraction step. A failing step leaves its
// target at the zero value and never aborts the record.
type field[T any] struct {
	name    string
	extract func(item *goquery.Selection, rec *T) error
}

func applyFields[T any](item *goquery.Selection, rec *T, fields []field[T], gap func(string)) {
	for _, f := range fields {
		if err := f.extract(item, rec); err != nil && gap != nil {
			gap(f.name)
		}
	}
}

func first(item *goquery.Selection, selector string) (*goquery.Selection, error) {
	sel := item.Find(selector)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%s: %w", selector, errNodeMissing)
	}
	return sel.First(), nil
}

func textOf(item *goquery.Selection, selector string) (string, error) {
	sel, err := first(item, selector)
	if err != nil {
		return "", err
	}
	text := CleanText(sel.Text())
	if text == "" {
		return "", fmt.Errorf("%s: empty text", selector)
	}
	return text, nil
}

const sponsoredSelector = ".puis-sponsored-label-text, .s-sponsored-label-text, .s-sponsored-label-info-icon"

func isSponsored(item *goquery.Selection) bool {
	return item.HasClass("AdHolder") || item.Find(sponsoredSelector).Length() > 0
}

func productFields(host string) []field[models.Product] {
	return []field[models.Product]{
		{name: "price", extract: extractPrice},
		{name: "rating", extract: extractRating},
		{name: "title", extract: func(item *goquery.Selection, p *models.Product) error {
			return extractTitle(item, p, host)
		}},
		{name: "sponsored", extract: func(item *goquery.Selection, p *models.Product) error {
			p.Sponsored = isSponsored(item)
			return nil
		}},
	}
}

func extractPrice(item *goquery.Selection, p *models.Product) error {
	prices := item.Find(".a-offscreen")
	if prices.Length() == 0 {
		return fmt.Errorf("price: %w", errNodeMissing)
	}
	p.Price = CleanText(prices.Eq(0).Text())
	if prices.Length() > 1 {
		p.BeforeDiscount = CleanText(prices.Eq(1).Text())
		p.Discounted = true
	}
	return nil
}

// extractRating reads the star label and the review count that sits next to
// the star widget's wrapper.
func extractRating(item *goquery.Selection, p *models.Product) error {
	star, err := first(item, ".a-icon-star-small")
	if err != nil {
		return err
	}
	label := star.Find(".a-icon-alt").First().Text()
	if strings.TrimSpace(label) == "" {
		label = star.Text()
	}
	rating, err := ParseLeadingNumber(label)
	if err != nil {
		return fmt.Errorf("rating: %w", err)
	}
	p.Rating = rating

	holder := star.Parent().Parent().Parent().Next()
	aria, ok := holder.Attr("aria-label")
	if !ok {
		return fmt.Errorf("review count: %w", errNodeMissing)
	}
	reviews, err := ParseCount(aria)
	if err != nil {
		return fmt.Errorf("review count: %w", err)
	}
	p.Reviews = reviews
	p.Score = Score(p.Rating, p.Reviews)
	return nil
}

func extractTitle(item *goquery.Selection, p *models.Product, host string) error {
	img, err := first(item, `[data-image-source-density="1"]`)
	if err != nil {
		return err
	}
	alt, ok := img.Attr("alt")
	if !ok {
		return fmt.Errorf("title: %w", errNodeMissing)
	}
	p.Title = CleanText(alt)

	href, ok := img.Parent().Parent().Attr("href")
	if !ok {
		return fmt.Errorf("url: %w", errNodeMissing)
	}
	p.URL = AbsoluteURL(host, href)
	return nil
}

func reviewFields() []field[models.Review] {
	return []field[models.Review]{
		{name: "review_data", extract: func(item *goquery.Selection, r *models.Review) (err error) {
			r.Date, err = textOf(item, `[data-hook="review-date"]`)
			return err
		}},
		{name: "name", extract: func(item *goquery.Selection, r *models.Review) (err error) {
			r.Name, err = textOf(item, ".a-profile-name")
			return err
		}},
		{name: "rating", extract: func(item *goquery.Selection, r *models.Review) error {
			label, err := textOf(item, `[data-hook="review-star-rating"]`)
			if err != nil {
				return err
			}
			rating, err := ParseLeadingNumber(label)
			if err != nil {
				return err
			}
			r.Rating = rating
			return nil
		}},
		{name: "title", extract: func(item *goquery.Selection, r *models.Review) (err error) {
			r.Title, err = textOf(item, `[data-hook="review-title"]`)
			return err
		}},
		{name: "review", extract: func(item *goquery.Selection, r *models.Review) (err error) {
			r.Body, err = textOf(item, `[data-hook="review-body"]`)
			return err
		}},
	}
}
