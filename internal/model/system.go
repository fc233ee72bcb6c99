package model

// VersionInfo contains version information for the application.
type VersionInfo struct {
	AppVersion string `json:"app_version"`
	Database   string `json:"database"`
	Backend    string `json:"backend_url"`
}

// HealthStatus reports reachability of the service dependencies.
type HealthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Backend  string `json:"backend"`
	Error    string `json:"error,omitempty"`
}

// ImportResult reports the outcome of the reserved-portfolio import.
type ImportResult struct {
	Action      string `json:"action"`
	DocumentID  string `json:"documentId"`
	UniqueID    string `json:"unique_id"`
	AssetsCount int    `json:"assetsCount"`
	FilePath    string `json:"filePath"`
}

// MergeResult reports the outcome of a name-keyed asset field merge.
type MergeResult struct {
	Matched  int      `json:"matched"`
	Modified int      `json:"modified"`
	Skipped  int      `json:"skipped"`
	Missing  []string `json:"missing"`
}

// BackfillResult reports the outcome of a unique_id backfill run.
type BackfillResult struct {
	Scanned    int               `json:"scanned"`
	Assigned   int               `json:"assigned"`
	Reassigned map[string]string `json:"reassigned"`
}
