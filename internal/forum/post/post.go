package post

import "time"

// Post is a discussion thread published inside a forum category.
type Post struct {
	ID         string     `json:"id"`
	AuthorID   string     `json:"author_id"`
	CategoryID string     `json:"category_id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Body       string     `json:"body"`
	IsPinned   bool       `json:"is_pinned"`
	IsLocked   bool       `json:"is_locked"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"-"`

	// AuthorUsername is hydrated via join for list and detail views.
	AuthorUsername string `json:"author_username,omitempty"`
}
