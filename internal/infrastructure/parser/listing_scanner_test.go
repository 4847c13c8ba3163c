package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"NewsSpider/internal/domain"
	"NewsSpider/internal/ordering"
)

func TestResolveLink(t *testing.T) {
	t.Parallel()

	cases := []struct {
		root, href, want string
	}{
		{"https://example.com", "/news/a", "https://example.com/news/a"},
		{"https://example.com/", "/news/a", "https://example.com/news/a"},
		{"https://example.com", "news/a", "https://example.com/news/a"},
		{"https://example.com/", "news/a", "https://example.com/news/a"},
	}

	for _, tc := range cases {
		if got := ResolveLink(tc.root, tc.href); got != tc.want {
			t.Fatalf("ResolveLink(%q, %q) = %q, want %q", tc.root, tc.href, got, tc.want)
		}
	}
}

func TestDiscoverLinks(t *testing.T) {
	t.Parallel()

	html := `
	<ul>
	  <li><a href="/news">News</a></li>
	  <li><a href="/news/a">A</a></li>
	  <li><a href="/sports/x">X</a></li>
	  <li><a href="/news/b">B</a></li>
	  <li><a href="/news/a">A again</a></li>
	  <li><a href="news">self</a></li>
	  <li><a>no href</a></li>
	</ul>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	got := DiscoverLinks(doc, "/news")
	want := []string{"/news/a", "/news/b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected links: %v", got)
	}
}

func TestSplitListingURL(t *testing.T) {
	t.Parallel()

	page, err := splitListingURL("https://www.cbc.ca/news/canada/montreal")
	if err != nil {
		t.Fatalf("splitListingURL error: %v", err)
	}
	if page.SiteRoot != "https://www.cbc.ca" {
		t.Fatalf("unexpected site root: %s", page.SiteRoot)
	}
	if page.Path != "/news/canada/montreal" {
		t.Fatalf("unexpected path: %s", page.Path)
	}
	if page.Host != "www.cbc.ca" {
		t.Fatalf("unexpected host: %s", page.Host)
	}

	if _, err := splitListingURL("not a url"); err == nil {
		t.Fatalf("expected error for relative url")
	}
}

func TestListingScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<a href="/news/a">A</a>
		<a href="/news/b">B</a>
		<a href="news">self</a>`))
	}))
	defer server.Close()

	sc := NewListingScanner(server.Client())
	page, err := sc.Scan(context.Background(), server.URL+"/news")
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	want := []string{server.URL + "/news/a", server.URL + "/news/b"}
	if !reflect.DeepEqual(page.Links, want) {
		t.Fatalf("unexpected links: %v", page.Links)
	}
	if page.Host != strings.TrimPrefix(server.URL, "http://") {
		t.Fatalf("unexpected host: %s", page.Host)
	}
}

func TestListingScannerScanFailsOnHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	sc := NewListingScanner(server.Client())
	if _, err := sc.Scan(context.Background(), server.URL+"/news"); err == nil {
		t.Fatalf("expected fetch error")
	}
}

type stubScanner struct {
	page domain.ListingPage
	err  error
}

func (s stubScanner) Scan(context.Context, string) (domain.ListingPage, error) {
	return s.page, s.err
}

func TestStrategySourceAppliesOrdering(t *testing.T) {
	t.Parallel()

	scanner := stubScanner{page: domain.ListingPage{Links: []string{"L1", "L2", "L3"}}}
	source := NewStrategySource(scanner, ordering.NewRegistry(), nil)

	page, err := source.Candidates(context.Background(), domain.Listing{URL: "https://example.com/news"})
	if err != nil {
		t.Fatalf("Candidates error: %v", err)
	}
	if !reflect.DeepEqual(page.Links, []string{"L3", "L2", "L1"}) {
		t.Fatalf("unexpected order: %v", page.Links)
	}

	page, err = source.Candidates(context.Background(), domain.Listing{URL: "https://example.com/news", Ordering: ordering.OldestFirstName})
	if err != nil {
		t.Fatalf("Candidates error: %v", err)
	}
	if !reflect.DeepEqual(page.Links, []string{"L1", "L2", "L3"}) {
		t.Fatalf("unexpected order: %v", page.Links)
	}
}

func TestStrategySourceUnknownOrdering(t *testing.T) {
	t.Parallel()

	source := NewStrategySource(stubScanner{}, ordering.NewRegistry(), nil)
	if _, err := source.Candidates(context.Background(), domain.Listing{URL: "https://example.com/news", Ordering: "random"}); err == nil {
		t.Fatalf("expected unknown ordering error")
	}
}
