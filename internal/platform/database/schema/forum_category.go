package schema

// ForumCategoryTable represents the 'forum.category' table
type ForumCategoryTable struct {
	Table       string
	ID          string
	Name        string
	Slug        string
	Description string
	SortOrder   string
	CreatedAt   string
}

// ForumCategory is the schema definition for forum.category
var ForumCategory = ForumCategoryTable{
	Table:       "forum.category",
	ID:          "id",
	Name:        "name",
	Slug:        "slug",
	Description: "description",
	SortOrder:   "sortorder",
	CreatedAt:   "createdat",
}
