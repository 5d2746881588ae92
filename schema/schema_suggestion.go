package schema

// TextEdit replaces the full text of one line.
type TextEdit struct {
	Line        int    `json:"line"`
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
}

// Suggestion is an improvement derived from an analysis issue.
// Edit is nil for informational suggestions.
type Suggestion struct {
	Kind        SuggestionKind `json:"kind"`
	StartLine   int            `json:"start_line"`
	EndLine     int            `json:"end_line"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Edit        *TextEdit      `json:"edit,omitempty"`
}

// Fixable reports whether the suggestion carries an edit.
func (s Suggestion) Fixable() bool {
	return s.Edit != nil
}
