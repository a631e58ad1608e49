package models

import "time"

// SnapshotDay is the canonical day format for snapshots (UTC calendar day).
const SnapshotDay = "2006-01-02"

// ValueSnapshot is one persisted daily total portfolio value in USD.
// At most one exists per (user, UTC day); writes upsert on SnapshotID.
type ValueSnapshot struct {
	ID        string    `json:"id" badgerhold:"key"`
	UserID    string    `json:"user_id"`
	Day       string    `json:"day"` // YYYY-MM-DD, UTC
	TotalUSD  float64   `json:"total_usd"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SnapshotID builds the composite upsert key for a (user, day) snapshot.
func SnapshotID(userID, day string) string {
	return userID + "|" + day
}

// HistoryPoint is one day in the dense value time series.
type HistoryPoint struct {
	Day      string  `json:"day"`
	TotalUSD float64 `json:"total_usd"`
}

// SnapshotDiff is the result of reconciling a live total against the most
// recent persisted snapshot from a prior day. HasBaseline is false when no
// such snapshot exists, in which case the deltas are zero.
type SnapshotDiff struct {
	BaselineDay     string  `json:"baseline_day,omitempty"`
	BaselineTotal   float64 `json:"baseline_total"`
	DayChangeAmount float64 `json:"day_change_amount"`
	DayChangePct    float64 `json:"day_change_pct"`
	HasBaseline     bool    `json:"has_baseline"`
}
