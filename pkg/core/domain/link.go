package domain

import "time"

// Link represents a bookmarked URL owned by a single user
type Link struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	UserID    int64     `json:"user_id"`
	IsPublic  bool      `json:"is_public"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicLink is a shared link annotated with its owner's username
type PublicLink struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	UserID   int64  `json:"user_id"`
	SharedBy string `json:"shared_by"`
}

// LinkSummary is the trimmed row returned by deletes
type LinkSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (l Link) Summary() LinkSummary {
	return LinkSummary{ID: l.ID, Name: l.Name, URL: l.URL}
}
