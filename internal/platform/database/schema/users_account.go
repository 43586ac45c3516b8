package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table               string
	ID                  string
	Username            string
	Email               string
	Password            string
	Role                string
	IsActive            string
	FailedLoginAttempts string
	LockUntil           string
	MfaEnabled          string
	MfaSecret           string
	MfaOtpHash          string
	MfaOtpExpiresAt     string
	IsVerified          string
	LastLoginAt         string
	DisplayName         string
	CreatedAt           string
	UpdatedAt           string
	DeletedAt           string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:               "users.account",
	ID:                  "id",
	Username:            "username",
	Email:               "email",
	Password:            "passwordhash",
	Role:                "role",
	IsActive:            "isactive",
	FailedLoginAttempts: "failedloginattempts",
	LockUntil:           "lockuntil",
	MfaEnabled:          "mfaenabled",
	MfaSecret:           "mfasecret",
	MfaOtpHash:          "mfaotphash",
	MfaOtpExpiresAt:     "mfaotpexpiresat",
	IsVerified:          "isverified",
	LastLoginAt:         "lastloginat",
	DisplayName:         "displayname",
	CreatedAt:           "createdat",
	UpdatedAt:           "updatedat",
	DeletedAt:           "deletedat",
}
