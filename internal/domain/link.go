package domain

import "time"

// Outcome tags persisted for links rejected by a filter.
const (
	TagTooOld   = "to_old"
	TagTooSmall = "to_small"
)

// Column bounds of the links table, in characters.
const (
	MaxURLLength  = 1024
	MaxTagsLength = 4096
)

// LinkRecord is persisted once per processed link for deduplication and audit.
type LinkRecord struct {
	URL         string
	PublishDate time.Time
	// Tags holds either an outcome tag or a comma-joined list of keyword tokens.
	Tags string
}

// Listing is a configured listing page together with its ordering strategy name.
type Listing struct {
	URL      string
	Ordering string
}

// ListingPage is the result of scanning a listing page.
type ListingPage struct {
	URL      string
	SiteRoot string
	Path     string
	Host     string
	// Links are absolute candidate URLs in processing order.
	Links []string
}

// Article is what the extractor managed to read from an article page.
type Article struct {
	URL         string
	Title       string
	Description string
	MainText    string
	PublishDate time.Time
}

// Notification is pushed downstream for every accepted article.
type Notification struct {
	URL         string
	PublishDate time.Time
	Title       string
	Description string
	Source      string
}

// CandidateState enumerates terminal states of a candidate link.
type CandidateState string

const (
	StateSkippedDuplicate  CandidateState = "skipped_duplicate"
	StateSkippedExtraction CandidateState = "skipped_extraction"
	StateSkippedInvalid    CandidateState = "skipped_invalid"
	StateRejectedOld       CandidateState = "rejected_old"
	StateRejectedSmall     CandidateState = "rejected_small"
	StateAccepted          CandidateState = "accepted"
)
