package model

// Record is the canonical, deduplicated form of one task as mirrored from
// the source stores. IDs are synthetic, assigned sequentially at ingestion
// time, and unrelated to any per-file source id.
type Record struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Notes       string `json:"notes,omitempty"`
	ListID      int64  `json:"list_id"`
	ListName    string `json:"list_name"`
	Completed   bool   `json:"completed"`
	Flagged     bool   `json:"flagged"`
	Priority    int    `json:"priority,omitempty"`
	CreatedAt   int64  `json:"created_at"`
	DueAt       *int64 `json:"due_at,omitempty"`
	CompletedAt *int64 `json:"completed_at,omitempty"`
}

// QuerySpec describes one search request. Text is optional; a wildcard or
// whitespace-only value counts as absent. Nil filter pointers mean "don't
// care".
type QuerySpec struct {
	Text      string `json:"text,omitempty"`
	List      string `json:"list,omitempty"`
	Completed *bool  `json:"completed,omitempty"`
	Flagged   *bool  `json:"flagged,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type SearchHit struct {
	Record       Record   `json:"record"`
	Score        float64  `json:"score"`
	MatchedTerms []string `json:"matched_terms,omitempty"`
}

type ListSummary struct {
	Name           string `json:"name"`
	PendingCount   int    `json:"pending_count"`
	CompletedCount int    `json:"completed_count"`
}

// Stats is the persisted aggregate record written after every successful
// build or update. HighWaterMark is the largest canonical id ever indexed
// and is non-decreasing across updates and rebuilds.
type Stats struct {
	Total         int   `json:"total"`
	Completed     int   `json:"completed"`
	Pending       int   `json:"pending"`
	Lists         int   `json:"lists"`
	BuiltAt       int64 `json:"built_at"`
	OldestCreated int64 `json:"oldest_created"`
	NewestCreated int64 `json:"newest_created"`
	HighWaterMark int64 `json:"high_water_mark"`
}
