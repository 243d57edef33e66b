package httpserver

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Clark-Hu/mytv-catalog/internal/repository"
)

// parseSearchQuery extracts q. Blank queries are left to the catalog, which
// rejects them without calling upstream.
func parseSearchQuery(query url.Values) (string, error) {
	q := strings.TrimSpace(query.Get("q"))
	if !utf8.ValidString(q) {
		return "", fmt.Errorf("q must be valid UTF-8")
	}
	if utf8.RuneCountInString(q) > maxQueryLength {
		return "", fmt.Errorf("q must be at most %d characters", maxQueryLength)
	}
	return q, nil
}

func parseLimit(query url.Values) (int, error) {
	val := strings.TrimSpace(query.Get("limit"))
	if val == "" {
		return repository.DefaultListLimit, nil
	}
	limit, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid limit parameter")
	}
	if limit < 1 || limit > repository.MaxListLimit {
		return 0, fmt.Errorf("limit must be between 1 and %d", repository.MaxListLimit)
	}
	return limit, nil
}

func parsePassID(raw string) (string, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid pass id")
	}
	return id.String(), nil
}
