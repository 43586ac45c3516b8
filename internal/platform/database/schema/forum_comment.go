package schema

// ForumCommentTable represents the 'forum.comment' table
type ForumCommentTable struct {
	Table     string
	ID        string
	PostID    string
	AuthorID  string
	ParentID  string
	Body      string
	IsDeleted string
	CreatedAt string
	UpdatedAt string
}

// ForumComment is the schema definition for forum.comment
var ForumComment = ForumCommentTable{
	Table:     "forum.comment",
	ID:        "id",
	PostID:    "postid",
	AuthorID:  "authorid",
	ParentID:  "parentid",
	Body:      "body",
	IsDeleted: "isdeleted",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}
