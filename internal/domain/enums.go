package domain

// ImportAction is the kind of operation recorded in the import audit log.
type ImportAction string

const (
	ImportActionCommit        ImportAction = "commit"
	ImportActionCommitRefused ImportAction = "commit_refused"
	ImportActionDraft         ImportAction = "draft"
)

// ReportFormat is an output encoding for previews.
type ReportFormat string

const (
	ReportFormatJSON ReportFormat = "json"
	ReportFormatYAML ReportFormat = "yaml"
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatXLSX ReportFormat = "xlsx"
)

// ReportContentTypes maps each report format to its MIME content type.
var ReportContentTypes = map[ReportFormat]string{
	ReportFormatJSON: "application/json",
	ReportFormatYAML: "application/yaml",
	ReportFormatCSV:  "text/csv",
	ReportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// DBDriver selects the dossier store implementation.
type DBDriver string

const (
	DBDriverPostgres DBDriver = "postgres"
	DBDriverSQLite   DBDriver = "sqlite"
)
