package rmdxd

import (
	"encoding/json"

	"remindex/internal/model"
)

type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  any             `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type SyncParams struct {
	Full bool `json:"full,omitempty"`
}

type SyncResult struct {
	Mode         string      `json:"mode"`
	Stats        model.Stats `json:"stats"`
	SkippedFiles int         `json:"skipped_files,omitempty"`
}

type SearchParams struct {
	Text      string `json:"text,omitempty"`
	List      string `json:"list,omitempty"`
	Completed *bool  `json:"completed,omitempty"`
	Flagged   *bool  `json:"flagged,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type BrowseParams struct {
	// Kind selects the query variant: recent, pending, completed, flagged,
	// due, or list.
	Kind   string `json:"kind"`
	List   string `json:"list,omitempty"`
	Before int64  `json:"before,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

type StatsResult struct {
	Present bool         `json:"present"`
	Stats   *model.Stats `json:"stats,omitempty"`
}

type WatchStartParams struct {
	DebounceMS int `json:"debounce_ms,omitempty"`
}

type WatchStatusResult struct {
	Running bool `json:"running"`
}
