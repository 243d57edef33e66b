package domain

import "time"

// SectionDescriptor binds a catalog endpoint to the section its results are shown in.
type SectionDescriptor struct {
	Key   string
	Path  string
	Label string
}

// DefaultSections returns the fixed, ordered list of catalog sections.
func DefaultSections() []SectionDescriptor {
	return []SectionDescriptor{
		{Key: "featured", Path: "/movie/now_playing", Label: "Featured"},
		{Key: "top-chart", Path: "/movie/top_rated", Label: "Top Chart"},
		{Key: "popular", Path: "/movie/popular", Label: "Popular"},
	}
}

// SectionedMovie pairs a decoded movie with the section that produced it.
type SectionedMovie struct {
	Movie   Movie
	Section string
}

// FetchStatus describes how a single upstream call ended.
type FetchStatus string

const (
	FetchOK     FetchStatus = "ok"
	FetchEmpty  FetchStatus = "empty"
	FetchFailed FetchStatus = "failed"
)

// SectionReport summarises one section's contribution to an aggregation pass.
type SectionReport struct {
	Key    string      `json:"key"`
	Label  string      `json:"label"`
	Status FetchStatus `json:"status"`
	Count  int         `json:"count"`
	Error  string      `json:"error,omitempty"`
}

// Pass records one completed aggregation pass.
type Pass struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	GenreCount int
	Total      int
	Sections   []SectionReport
}

// Duration reports how long the pass took.
func (p Pass) Duration() time.Duration {
	return p.FinishedAt.Sub(p.StartedAt)
}
