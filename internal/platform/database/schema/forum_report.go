package schema

// ForumReportTable represents the 'forum.report' table
type ForumReportTable struct {
	Table      string
	ID         string
	ReporterID string
	TargetType string
	TargetID   string
	Reason     string
	Status     string
	ResolvedBy string
	ResolvedAt string
	CreatedAt  string
}

// ForumReport is the schema definition for forum.report
var ForumReport = ForumReportTable{
	Table:      "forum.report",
	ID:         "id",
	ReporterID: "reporterid",
	TargetType: "targettype",
	TargetID:   "targetid",
	Reason:     "reason",
	Status:     "status",
	ResolvedBy: "resolvedby",
	ResolvedAt: "resolvedat",
	CreatedAt:  "createdat",
}
