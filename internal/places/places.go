// Package places proxies address autocomplete for the origin field.
package places

import (
	"context"
	"strings"
	"unicode/utf8"
)

// MinQueryLength is the shortest trimmed query sent to the provider.
const MinQueryLength = 3

// Suggestion is one autocomplete candidate.
type Suggestion struct {
	// ID is the provider place id, usable as a route origin.
	ID    string
	Label string
}

// Autocompleter returns suggestions for a partial address.
type Autocompleter interface {
	Autocomplete(ctx context.Context, input string) ([]Suggestion, error)
}

// Service applies the query rules in front of an Autocompleter.
type Service struct {
	provider Autocompleter
}

// NewService creates a new places service.
func NewService(provider Autocompleter) *Service {
	return &Service{provider: provider}
}

// Suggest returns suggestions for query. Queries shorter than MinQueryLength
// after trimming return an empty list without calling the provider.
func (s *Service) Suggest(ctx context.Context, query string) ([]Suggestion, error) {
	if ShortQuery(query) {
		return []Suggestion{}, nil
	}
	q := strings.TrimSpace(query)

	out, err := s.provider.Autocomplete(ctx, q)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Suggestion{}
	}
	return out, nil
}

// ShortQuery reports whether query is too short to send to the provider.
func ShortQuery(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) < MinQueryLength
}
