package parser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsSpider/internal/domain"
)

const userAgent = "NewsSpider/1.0"

// ListingScanner fetches a listing page and discovers article links under its path.
type ListingScanner struct {
	client *http.Client
}

// NewListingScanner wires an HTTP client; a nil client gets a 20s timeout default.
func NewListingScanner(client *http.Client) *ListingScanner {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &ListingScanner{client: client}
}

// Scan returns the candidate links of the listing page in discovery order.
func (s *ListingScanner) Scan(ctx context.Context, listingURL string) (domain.ListingPage, error) {
	page, err := splitListingURL(listingURL)
	if err != nil {
		return domain.ListingPage{}, err
	}

	doc, err := s.fetchDocument(ctx, listingURL)
	if err != nil {
		return domain.ListingPage{}, err
	}

	hrefs := DiscoverLinks(doc, page.Path)
	page.Links = make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		page.Links = append(page.Links, ResolveLink(page.SiteRoot, href))
	}

	return page, nil
}

func (s *ListingScanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("listing returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

// DiscoverLinks returns every distinct href containing path, except the path itself,
// in the order the hrefs first appear on the page.
func DiscoverLinks(doc *goquery.Document, path string) []string {
	var links []string
	seen := map[string]struct{}{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, path) || href == path {
			return
		}
		if _, ok := seen[href]; ok {
			return
		}
		seen[href] = struct{}{}
		links = append(links, href)
	})

	return links
}

// ResolveLink joins the site root and a candidate href with exactly one slash.
func ResolveLink(siteRoot, href string) string {
	return strings.TrimSuffix(siteRoot, "/") + "/" + strings.TrimPrefix(href, "/")
}

func splitListingURL(raw string) (domain.ListingPage, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return domain.ListingPage{}, fmt.Errorf("invalid listing url %s: %w", raw, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return domain.ListingPage{}, fmt.Errorf("invalid listing url %s: scheme and host required", raw)
	}

	host := strings.TrimSuffix(parsed.Host, "/")
	return domain.ListingPage{
		URL:      raw,
		SiteRoot: fmt.Sprintf("%s://%s", parsed.Scheme, host),
		Path:     parsed.Path,
		Host:     host,
	}, nil
}
