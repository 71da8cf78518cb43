package ingest

import "database/sql"

// Source timestamps are seconds since 2001-01-01 UTC (the Core Data
// reference date), sometimes fractional.
const sourceEpochOffset int64 = 978307200

func toUnix(v float64) int64 {
	return int64(v) + sourceEpochOffset
}

func toUnixPtr(v sql.NullFloat64) *int64 {
	if !v.Valid {
		return nil
	}
	u := toUnix(v.Float64)
	return &u
}
