package ports

import (
	"context"
	"time"

	"NewsSpider/internal/domain"
)

// ListingSource turns a configured listing into an ordered list of candidate links.
type ListingSource interface {
	Candidates(ctx context.Context, listing domain.Listing) (domain.ListingPage, error)
}

// LinkStore persists processed links for deduplication/history.
type LinkStore interface {
	Exists(ctx context.Context, url string) (bool, error)
	Create(ctx context.Context, record domain.LinkRecord) error
}

// ArticleExtractor reads publish date, title, description and main text of an article.
type ArticleExtractor interface {
	Extract(ctx context.Context, url string) (domain.Article, error)
}

// KeywordScorer maps candidate keywords of a text to their degree.
type KeywordScorer interface {
	Score(text string) map[string]int
}

// Notifier pushes accepted articles to Telegram or other channels.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
