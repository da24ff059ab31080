package domain

import "strings"

// Document is one record of the bundled sample corpus. Immutable after load.
type Document struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// WordCount returns the number of whitespace-separated words in the body.
func (d Document) WordCount() int {
	return len(strings.Fields(d.Text))
}
