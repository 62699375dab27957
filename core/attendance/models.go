package attendance

import "time"

// Record kinds: whose attendance a record tracks.
const (
	KindStudent = "student"
	KindStaff   = "staff"
)

// Statuses. Leave applies to staff only.
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLeave   = "leave"
)

// Record is one mark event in the ledger. The ledger is insert-only per
// mark; there is no per-day uniqueness constraint, so a subject can carry
// several records for the same day. Two "absent" conventions coexist
// (see Service.MarkAbsent and Service.Unmark): a day may hold an explicit
// absent record, or simply have its present record deleted; callers
// must pick one convention and stick to it.
type Record struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subjectId"` // student or staff account id
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	MarkedBy  string    `json:"markedBy,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC; date-range queries truncate this to day boundaries
}

// DayBounds returns the [start, end) UTC day window containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
