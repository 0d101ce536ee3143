package models

import "time"

// ChatTurn is one question/answer pair of the "ask the AI" feature.
// Turns live in the user's session, never in the database.
type ChatTurn struct {
	PostSlug string    `json:"post_slug"`
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	AskedAt  time.Time `json:"asked_at"`
}
