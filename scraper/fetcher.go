package scraper

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"

	"github.com/aluiziolira/go-scrape-amazon/config"
	"github.com/aluiziolira/go-scrape-amazon/models"
)

const (
	bodyKey   = "body"
	statusKey = "status"
)

// PageFetcher issues one GET per listing page over a shared cookie jar.
type PageFetcher struct {
	cfg       *config.Config
	collector *colly.Collector
	jar       http.CookieJar
	metrics   *Metrics
}

// NewPageFetcher builds a synchronous collector configured from cfg.
func NewPageFetcher(cfg *config.Config, metrics *Metrics) (*PageFetcher, error) {
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("base url must include a host")
	}
	proxyURL, err := cfg.ProxyURL()
	if err != nil {
		return nil, err
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(cfg.Timeout)

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if proxyURL != nil {
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	collector.WithTransport(transport)

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	collector.SetCookieJar(jar)

	if cfg.RandomUserAgent {
		extensions.RandomUserAgent(collector)
	}

	collector.OnResponse(func(r *colly.Response) {
		r.Ctx.Put(bodyKey, r.Body)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.Ctx != nil {
			r.Ctx.Put(statusKey, r.StatusCode)
		}
	})

	return &PageFetcher{
		cfg:       cfg,
		collector: collector,
		jar:       jar,
		metrics:   metrics,
	}, nil
}

// WithTransport swaps the round tripper; the cookie jar is kept.
func (f *PageFetcher) WithTransport(rt http.RoundTripper) {
	f.collector.WithTransport(rt)
}

// Cookies returns the cookies the session would send to u.
func (f *PageFetcher) Cookies(u *url.URL) []*http.Cookie {
	return f.jar.Cookies(u)
}

// WarmUp visits the site root so the session picks up its baseline cookies.
func (f *PageFetcher) WarmUp(ctx context.Context) error {
	_, err := f.get(ctx, "warmup", f.cfg.BaseURL, 0, false)
	return err
}

// Fetch retrieves page cursor of the listing for target (a keyword or an ASIN).
func (f *PageFetcher) Fetch(ctx context.Context, kind models.Kind, cursor int, target string) ([]byte, error) {
	pageURL, err := f.PageURL(kind, cursor, target)
	if err != nil {
		return nil, err
	}
	return f.get(ctx, "page", pageURL, cursor, true)
}

// PageURL builds the listing URL for the given page.
func (f *PageFetcher) PageURL(kind models.Kind, cursor int, target string) (string, error) {
	query := url.Values{}
	var path string
	switch kind {
	case models.KindProducts:
		path = "s"
		query.Set("k", target)
		if cursor > 1 {
			query.Set("page", strconv.Itoa(cursor))
			query.Set("ref", "sr_pg_"+strconv.Itoa(cursor))
		}
	case models.KindReviews:
		path = "product-reviews/" + url.PathEscape(target) + "/"
		if cursor > 1 {
			query.Set("pageNumber", strconv.Itoa(cursor))
		}
	default:
		return "", fmt.Errorf("unsupported kind %q", kind)
	}

	out := f.cfg.Host() + "/" + path
	if len(query) > 0 {
		out += "?" + query.Encode()
	}
	return out, nil
}

func (f *PageFetcher) header(referer bool) http.Header {
	hdr := http.Header{}
	hdr.Set("User-Agent", f.cfg.UserAgent)
	hdr.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	hdr.Set("Accept-Language", "en-US,en;q=0.5")
	hdr.Set("Accept-Encoding", "gzip")
	if referer {
		hdr.Set("Referer", f.cfg.BaseURL)
	}
	for key, value := range f.cfg.Headers {
		hdr.Set(key, value)
	}
	return hdr
}

func (f *PageFetcher) get(ctx context.Context, phase, target string, page int, referer bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{URL: target, Page: page, Err: err}
	}

	reqCtx := colly.NewContext()
	start := time.Now()
	f.metrics.IncRequest(phase)
	err := f.collector.Request(http.MethodGet, target, nil, reqCtx, f.header(referer))
	f.metrics.ObserveDuration(time.Since(start))
	if err != nil {
		status, _ := reqCtx.GetAny(statusKey).(int)
		classified := classifyError(err, status)
		f.metrics.IncError(errorTypeLabel(classified))
		return nil, &FetchError{URL: target, Page: page, Err: classified}
	}

	body, _ := reqCtx.GetAny(bodyKey).([]byte)
	return body, nil
}
