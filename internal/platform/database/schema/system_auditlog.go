package schema

// SystemAuditLogTable represents the 'system.auditlog' table
type SystemAuditLogTable struct {
	Table     string
	ID        string
	ActorID   string
	Action    string
	Metadata  string
	IPAddress string
	CreatedAt string
}

var SystemAuditLog = SystemAuditLogTable{
	Table:     "system.auditlog",
	ID:        "id",
	ActorID:   "actorid",
	Action:    "action",
	Metadata:  "metadata",
	IPAddress: "ipaddress",
	CreatedAt: "createdat",
}
