package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aluiziolira/go-scrape-amazon/config"
	"github.com/aluiziolira/go-scrape-amazon/models"
	"github.com/aluiziolira/go-scrape-amazon/parser"
	"github.com/aluiziolira/go-scrape-amazon/pipeline"
)

// Reasons a run stopped paginating.
const (
	StopCountReached = "count_reached"
	StopFetchFailed  = "fetch_failed"
	StopWarmUpFailed = "warmup_failed"
	StopMaxPages     = "max_pages"
	StopCanceled     = "canceled"
	StopParseFailed  = "parse_failed"
)

// Fetcher retrieves raw listing pages.
type Fetcher interface {
	WarmUp(ctx context.Context) error
	Fetch(ctx context.Context, kind models.Kind, cursor int, target string) ([]byte, error)
}

// Extractor turns one page into records.
type Extractor interface {
	Extract(body []byte, kind models.Kind, opts parser.Options) ([]models.Record, error)
}

// Progress receives run progress for interactive callers.
type Progress interface {
	Start(kind models.Kind, total int)
	Update(collected int)
	Stop()
}

// Scraper drives the page loop for one configured session.
type Scraper struct {
	cfg       *config.Config
	fetcher   Fetcher
	extractor Extractor
	finalizer *pipeline.Finalizer
	progress  Progress
	Metrics   *Metrics
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	metrics := NewMetrics()
	fetcher, err := NewPageFetcher(cfg, metrics)
	if err != nil {
		return nil, err
	}
	extractor := parser.NewExtractor(cfg.Host())
	extractor.OnGap = metrics.IncGap

	return &Scraper{
		cfg:       cfg,
		fetcher:   fetcher,
		extractor: extractor,
		finalizer: pipeline.NewFinalizer(cfg),
		Metrics:   metrics,
	}, nil
}

// SetProgress attaches a progress reporter used by interactive requests.
func (s *Scraper) SetProgress(p Progress) {
	s.progress = p
}

// Run validates req, then fetches and extracts pages until the requested
// number of records is collected or pagination ends. Fetch failures end the
// loop and are not returned; the partial result set is finalized as usual.
func (s *Scraper) Run(ctx context.Context, req models.ScrapeRequest) (*models.ResultSet, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req = req.WithDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	rs := &models.ResultSet{Kind: req.Kind, Cursor: 1}
	start := time.Now()

	if req.Interactive && s.progress != nil {
		s.progress.Start(req.Kind, req.Number)
		defer s.progress.Stop()
	}

	if err := s.fetcher.WarmUp(ctx); err != nil {
		slog.Warn("warm-up failed", slog.Any("error", err))
		rs.StopReason = StopWarmUpFailed
	} else {
		rs.StopReason = s.collect(ctx, req, rs)
	}

	slog.Info("scrape finished",
		slog.String("kind", string(req.Kind)),
		slog.String("target", req.Target()),
		slog.Int("records", rs.Len()),
		slog.Int("pages", rs.Pages),
		slog.String("reason", rs.StopReason),
		slog.Duration("elapsed", time.Since(start)),
	)

	path, err := s.finalizer.Finalize(req, rs.Records)
	rs.Path = path
	if err != nil {
		return rs, fmt.Errorf("persist results: %w", err)
	}
	return rs, nil
}

func (s *Scraper) collect(ctx context.Context, req models.ScrapeRequest, rs *models.ResultSet) string {
	var seen *lru.Cache[string, struct{}]
	if s.cfg.DedupeAcrossPages {
		seen, _ = lru.New[string, struct{}](req.Kind.Ceiling())
	}

	for rs.Len() < req.Number {
		if s.cfg.MaxPages > 0 && rs.Pages >= s.cfg.MaxPages {
			return StopMaxPages
		}
		if ctx.Err() != nil {
			return StopCanceled
		}

		body, err := s.fetcher.Fetch(ctx, req.Kind, rs.Cursor, req.Target())
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return StopCanceled
			}
			slog.Warn("stopping pagination", slog.Int("page", rs.Cursor), slog.Any("error", err))
			return StopFetchFailed
		}
		rs.Pages++
		rs.Cursor++
		s.Metrics.IncPages()

		opts := parser.Options{
			Remaining:        req.Number - rs.Len(),
			IncludeSponsored: req.IncludeSponsored,
		}
		if seen != nil {
			// Repeats from earlier pages are dropped below, so take the whole page.
			opts.Remaining = req.Kind.Ceiling()
		}
		records, err := s.extractor.Extract(body, req.Kind, opts)
		if err != nil {
			slog.Error("page could not be parsed", slog.Int("page", rs.Pages), slog.Any("error", err))
			return StopParseFailed
		}

		added := 0
		for _, rec := range records {
			if rs.Len() >= req.Number {
				break
			}
			if seen != nil {
				if ok, _ := seen.ContainsOrAdd(rec.Key(), struct{}{}); ok {
					continue
				}
			}
			rs.Records = append(rs.Records, rec)
			added++
		}
		s.Metrics.AddItems(req.Kind, added)

		slog.Debug("page extracted",
			slog.Int("page", rs.Pages),
			slog.Int("found", len(records)),
			slog.Int("added", added),
			slog.Int("total", rs.Len()),
		)
		if req.Interactive && s.progress != nil {
			s.progress.Update(rs.Len())
		}
	}
	return StopCountReached
}
