package schema

// ForumPostTable represents the 'forum.post' table
type ForumPostTable struct {
	Table      string
	ID         string
	AuthorID   string
	CategoryID string
	Title      string
	Slug       string
	Body       string
	IsPinned   string
	IsLocked   string
	CreatedAt  string
	UpdatedAt  string
	DeletedAt  string
}

// ForumPost is the schema definition for forum.post
var ForumPost = ForumPostTable{
	Table:      "forum.post",
	ID:         "id",
	AuthorID:   "authorid",
	CategoryID: "categoryid",
	Title:      "title",
	Slug:       "slug",
	Body:       "body",
	IsPinned:   "ispinned",
	IsLocked:   "islocked",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
	DeletedAt:  "deletedat",
}
