package models

// Suggestion is one address autocomplete candidate.
type Suggestion struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// SuggestionsResponse is the body of GET /api/places/suggest. Suggestions is
// never null.
type SuggestionsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}
