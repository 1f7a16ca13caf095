package domain

import "time"

// Story is a graded reading text.
type Story struct {
	ID        string
	Title     string
	Language  string // BCP 47 tag of the story text, e.g. "es"
	Level     Level
	Body      string
	AudioURL  string
	CreatedBy string
	CreatedAt time.Time
}
