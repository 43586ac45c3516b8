package schema

// UserPasswordHistoryTable represents the 'users.passwordhistory' table
type UserPasswordHistoryTable struct {
	Table     string
	ID        string
	UserID    string
	Password  string
	CreatedAt string
}

// UserPasswordHistory is the schema definition for users.passwordhistory
var UserPasswordHistory = UserPasswordHistoryTable{
	Table:     "users.passwordhistory",
	ID:        "id",
	UserID:    "userid",
	Password:  "passwordhash",
	CreatedAt: "createdat",
}
