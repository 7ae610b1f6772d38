package models

// StickyNote is a free-text row. Besides the user-visible note it also
// stores the instruction template for the summary prompt.
type StickyNote struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}
