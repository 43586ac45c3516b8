package schema

// UserBackupCodeTable represents the 'users.backupcode' table
type UserBackupCodeTable struct {
	Table    string
	ID       string
	UserID   string
	CodeHash string
	UsedAt   string
}

// UserBackupCode is the schema definition for users.backupcode
var UserBackupCode = UserBackupCodeTable{
	Table:    "users.backupcode",
	ID:       "id",
	UserID:   "userid",
	CodeHash: "codehash",
	UsedAt:   "usedat",
}
