package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	readability "github.com/go-shiori/go-readability"

	"NewsSpider/internal/domain"
	"NewsSpider/internal/ports"
)

const (
	userAgent   = "NewsSpider/1.0"
	maxBodySize = 10 << 20
)

var publishDateSelectors = []struct {
	selector string
	attr     string
}{
	{`meta[property="article:published_time"]`, "content"},
	{`meta[name="pubdate"]`, "content"},
	{`meta[name="publishdate"]`, "content"},
	{`meta[name="date"]`, "content"},
	{`meta[itemprop="datePublished"]`, "content"},
	{`time[datetime]`, "datetime"},
}

// ReadabilityExtractor downloads an article page and extracts its main text with
// go-readability; metadata missing from readability is read from meta tags.
type ReadabilityExtractor struct {
	client *http.Client
}

var _ ports.ArticleExtractor = (*ReadabilityExtractor)(nil)

// NewReadabilityExtractor wires an HTTP client; a nil client gets a 30s timeout default.
func NewReadabilityExtractor(client *http.Client) *ReadabilityExtractor {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &ReadabilityExtractor{client: client}
}

// Extract fetches rawURL and returns its publish date, title, description and text.
func (e *ReadabilityExtractor) Extract(ctx context.Context, rawURL string) (domain.Article, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return domain.Article{}, fmt.Errorf("parse url: %w", err)
	}

	body, err := e.fetch(ctx, rawURL)
	if err != nil {
		return domain.Article{}, err
	}

	parsed, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return domain.Article{}, fmt.Errorf("readability: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.Article{}, fmt.Errorf("parse document: %w", err)
	}

	published, ok := publishDate(parsed, doc)
	if !ok {
		return domain.Article{}, domain.ErrMissingPublishDate
	}

	return domain.Article{
		URL:         rawURL,
		Title:       firstNonEmpty(parsed.Title, metaContent(doc, `meta[property="og:title"]`), doc.Find("title").First().Text()),
		Description: firstNonEmpty(metaContent(doc, `meta[name="description"]`), metaContent(doc, `meta[property="og:description"]`), parsed.Excerpt),
		MainText:    strings.TrimSpace(parsed.TextContent),
		PublishDate: published,
	}, nil
}

func (e *ReadabilityExtractor) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("article returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read article: %w", err)
	}
	return body, nil
}

func publishDate(parsed readability.Article, doc *goquery.Document) (time.Time, bool) {
	if parsed.PublishedTime != nil && !parsed.PublishedTime.IsZero() {
		return parsed.PublishedTime.UTC(), true
	}

	for _, candidate := range publishDateSelectors {
		value, ok := doc.Find(candidate.selector).First().Attr(candidate.attr)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		if t, err := dateparse.ParseIn(strings.TrimSpace(value), time.UTC); err == nil {
			return t.UTC(), true
		}
	}

	return time.Time{}, false
}

func metaContent(doc *goquery.Document, selector string) string {
	value, _ := doc.Find(selector).First().Attr("content")
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
