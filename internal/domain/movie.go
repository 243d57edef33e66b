package domain

import (
	"net/url"
	"strings"
	"time"
)

const (
	// PosterBaseURL prefixes a TMDB poster path to form an image address.
	PosterBaseURL = "https://image.tmdb.org/t/p/w500"
	// StorefrontBaseURL is where the buy/rent links of a movie point to.
	StorefrontBaseURL = "https://tv.apple.com/us/movie/"
	// UnknownReleaseDate is rendered when a movie carries no release date.
	UnknownReleaseDate = "Unknown"

	releaseDateLayout = "2006-01-02"
	mediumDateLayout  = "Jan 2, 2006"
)

// Movie represents one catalog record as decoded from the provider.
type Movie struct {
	ID          int
	Title       string
	Overview    string
	PosterPath  *string
	ReleaseDate *string
	VoteAverage *float64
	GenreIDs    []int
}

// PosterURL returns the full image address of the poster, if the movie has one.
func (m Movie) PosterURL() (string, bool) {
	if m.PosterPath == nil || *m.PosterPath == "" {
		return "", false
	}
	return PosterBaseURL + *m.PosterPath, true
}

// ReleaseTime parses the release date. Missing or malformed dates report false.
func (m Movie) ReleaseTime() (time.Time, bool) {
	if m.ReleaseDate == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(releaseDateLayout, strings.TrimSpace(*m.ReleaseDate))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormattedReleaseDate renders the release date in en-US medium style ("Mar 15, 2024").
// An unparsable date is returned as-is; an absent one renders UnknownReleaseDate.
func (m Movie) FormattedReleaseDate() string {
	if m.ReleaseDate == nil || strings.TrimSpace(*m.ReleaseDate) == "" {
		return UnknownReleaseDate
	}
	t, ok := m.ReleaseTime()
	if !ok {
		return *m.ReleaseDate
	}
	return t.Format(mediumDateLayout)
}

// GenreNames resolves the movie's genre ids against table, falling back to the
// built-in names. Ids known to neither are skipped.
func (m Movie) GenreNames(table GenreTable) []string {
	names := make([]string, 0, len(m.GenreIDs))
	for _, id := range m.GenreIDs {
		if name, ok := table.Name(id); ok {
			names = append(names, name)
		}
	}
	return names
}

// GenresText joins the resolved genre names for display.
func (m Movie) GenresText(table GenreTable) string {
	return strings.Join(m.GenreNames(table), ", ")
}

// StorefrontURL links to the storefront page used for buying or renting the movie.
func (m Movie) StorefrontURL() string {
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(m.Title), " ", "-"))
	return StorefrontBaseURL + url.PathEscape(slug)
}
