package errors

import "github.com/sahilm/fuzzy"

// maxSuggestions caps how many did-you-mean candidates an error carries.
const maxSuggestions = 3

// SuggestNames fuzzy-matches a misspelled name against the known names
// and returns the closest candidates, best first.
func SuggestNames(name string, known []string) []string {
	matches := fuzzy.Find(name, known)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	suggestions := make([]string, 0, len(matches))
	for _, m := range matches {
		suggestions = append(suggestions, m.Str)
	}
	return suggestions
}

// TemplateNotFound builds a not-found error carrying fuzzy-matched
// suggestions from the registered template names.
func TemplateNotFound(name string, known []string) *TemplaoError {
	return NewTemplateNotFoundError(name).WithSuggestions(SuggestNames(name, known)...)
}
