package parser

import (
	"context"
	"fmt"
	"log/slog"

	"NewsSpider/internal/domain"
	"NewsSpider/internal/ordering"
	"NewsSpider/internal/ports"
)

// PageScanner discovers candidate links on a listing page in discovery order.
type PageScanner interface {
	Scan(ctx context.Context, listingURL string) (domain.ListingPage, error)
}

// StrategySource implements ListingSource by scanning a page and applying the
// listing's ordering strategy.
type StrategySource struct {
	scanner  PageScanner
	registry *ordering.Registry
	logger   *slog.Logger
}

var _ ports.ListingSource = (*StrategySource)(nil)

// NewStrategySource wires a page scanner with the ordering registry.
func NewStrategySource(scanner PageScanner, reg *ordering.Registry, log *slog.Logger) *StrategySource {
	return &StrategySource{
		scanner:  scanner,
		registry: reg,
		logger:   log,
	}
}

// Candidates scans the listing and returns its links in processing order.
func (s *StrategySource) Candidates(ctx context.Context, listing domain.Listing) (domain.ListingPage, error) {
	if s.registry == nil || s.scanner == nil {
		return domain.ListingPage{}, fmt.Errorf("strategy source is not configured")
	}

	strategy, err := s.registry.Resolve(listing.Ordering)
	if err != nil {
		return domain.ListingPage{}, fmt.Errorf("listing %s: %w", listing.URL, err)
	}

	page, err := s.scanner.Scan(ctx, listing.URL)
	if err != nil {
		return domain.ListingPage{}, fmt.Errorf("scan listing %s: %w", listing.URL, err)
	}

	page.Links = strategy.Order(page.Links)
	s.debug("listing scanned", "url", listing.URL, "ordering", strategy.Name(), "candidates", len(page.Links))
	return page, nil
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
