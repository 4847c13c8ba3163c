package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"NewsSpider/internal/domain"
	"NewsSpider/internal/ports"
)

// PipelineDeps wires all driven adapters into the crawl pipeline.
type PipelineDeps struct {
	Source    ports.ListingSource
	Store     ports.LinkStore
	Extractor ports.ArticleExtractor
	Scorer    ports.KeywordScorer
	Notifier  ports.Notifier
	Policy    Policy
	Now       func() time.Time
	Logger    *slog.Logger
}

// Pipeline implements the crawl-dedup-filter-notify workflow. It is sequential: one
// listing at a time, one candidate at a time.
type Pipeline struct {
	source    ports.ListingSource
	store     ports.LinkStore
	extractor ports.ArticleExtractor
	scorer    ports.KeywordScorer
	notifier  ports.Notifier
	policy    Policy
	now       func() time.Time
	logger    *slog.Logger
}

// Summary counts candidates per terminal state.
type Summary map[domain.CandidateState]int

func (s Summary) merge(other Summary) {
	for state, n := range other {
		s[state] += n
	}
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		source:    deps.Source,
		store:     deps.Store,
		extractor: deps.Extractor,
		scorer:    deps.Scorer,
		notifier:  deps.Notifier,
		policy:    deps.Policy,
		now:       deps.Now,
		logger:    deps.Logger,
	}
}

// Run processes listings in order and stops at the first fatal error.
func (p *Pipeline) Run(ctx context.Context, listings []domain.Listing) (Summary, error) {
	total := Summary{}
	for _, listing := range listings {
		summary, err := p.ProcessListing(ctx, listing)
		total.merge(summary)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ProcessListing drives every candidate of one listing page through the filters.
// Listing fetch failures and store failures are fatal; extraction failures skip
// the candidate.
func (p *Pipeline) ProcessListing(ctx context.Context, listing domain.Listing) (Summary, error) {
	summary := Summary{}

	page, err := p.source.Candidates(ctx, listing)
	if err != nil {
		return summary, domain.Fatal("fetch listing", listing.URL, err)
	}
	p.logger.Info("processing site", "site", page.SiteRoot, "listing", listing.URL, "candidates", len(page.Links))

	for _, link := range page.Links {
		if err := ctx.Err(); err != nil {
			return summary, domain.Fatal("process listing", listing.URL, err)
		}

		state, err := p.processCandidate(ctx, page, link)
		if err != nil {
			if !domain.IsRecoverable(err) {
				return summary, err
			}
			p.logger.Error("candidate skipped", "url", link, "error", err)
		}
		summary[state]++
	}

	return summary, nil
}

func (p *Pipeline) processCandidate(ctx context.Context, page domain.ListingPage, link string) (domain.CandidateState, error) {
	if utf8.RuneCountInString(link) > domain.MaxURLLength {
		return domain.StateSkippedInvalid, domain.Recoverable("check link", link, domain.ErrURLTooLong)
	}

	exists, err := p.store.Exists(ctx, link)
	if err != nil {
		return "", domain.Fatal("lookup link", link, err)
	}
	if exists {
		p.logger.Info("site link was already downloaded", "url", link)
		return domain.StateSkippedDuplicate, nil
	}

	article, err := p.extractor.Extract(ctx, link)
	if err != nil {
		return domain.StateSkippedExtraction, domain.Recoverable("extract article", link, err)
	}

	if age := p.now().UTC().Sub(article.PublishDate.UTC()); age > p.policy.MaxAge {
		if err := p.persist(ctx, link, article, domain.TagTooOld); err != nil {
			return "", err
		}
		p.logger.Info("site link is too old", "url", link, "age", age.Round(time.Second))
		return domain.StateRejectedOld, nil
	}

	if length := utf8.RuneCountInString(article.MainText); length < p.policy.MinTextLength {
		if err := p.persist(ctx, link, article, domain.TagTooSmall); err != nil {
			return "", err
		}
		p.logger.Info("site link is too small", "url", link, "length", length)
		return domain.StateRejectedSmall, nil
	}

	p.logger.Info("processing the link", "url", link)
	var keywords []string
	if p.scorer != nil {
		keywords = p.policy.SelectKeywords(p.scorer.Score(article.MainText))
	}

	if err := p.persist(ctx, link, article, p.policy.JoinTags(keywords)); err != nil {
		return "", err
	}
	p.logger.Info("site was saved to the database", "url", link, "keywords", len(keywords))

	p.notify(ctx, domain.Notification{
		URL:         link,
		PublishDate: article.PublishDate,
		Title:       article.Title,
		Description: article.Description,
		Source:      page.Host,
	})

	return domain.StateAccepted, nil
}

func (p *Pipeline) persist(ctx context.Context, link string, article domain.Article, tags string) error {
	err := p.store.Create(ctx, domain.LinkRecord{
		URL:         link,
		PublishDate: article.PublishDate,
		Tags:        tags,
	})
	if err != nil {
		return domain.Fatal("persist link", link, err)
	}
	return nil
}

// notify never fails the candidate: the record is already persisted.
func (p *Pipeline) notify(ctx context.Context, msg domain.Notification) {
	if p.notifier == nil {
		return
	}

	if err := p.notifier.Notify(ctx, msg); err != nil {
		if errors.Is(err, domain.ErrNotifierMisconfigured) {
			p.logger.Error("no telegram token or chat id configured", "url", msg.URL)
			return
		}
		p.logger.Error("notification failed", "url", msg.URL, "error", err)
		return
	}
	p.logger.Info("notification sent", "url", msg.URL)
}
