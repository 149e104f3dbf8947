package models

// Attendance outcome labels. Status is a closed set, not free text.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusUnknown = "unknown"
)

// ValidStatus reports whether s is one of the recognized outcome labels
func ValidStatus(s string) bool {
	switch s {
	case StatusSuccess, StatusFail, StatusUnknown:
		return true
	}
	return false
}

// AttendanceEvent represents one recorded recognition attempt and its
// outcome. It corresponds to the 'attendance_events' table. Rows are written
// once and never mutated; the identity name and the threshold in effect at
// decision time are denormalized so the log stays meaningful after identity
// deletion or threshold changes.
type AttendanceEvent struct {
	ID           uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID      string   `gorm:"uniqueIndex;not null;size:36;column:event_id" json:"event_id"` // caller-supplied idempotency token
	IdentityID   string   `gorm:"index;size:20;column:identity_id" json:"identity_id"`
	IdentityName string   `gorm:"size:100;column:identity_name" json:"identity_name"`
	Score        float64  `json:"score"`
	Threshold    float64  `json:"threshold"`
	Status       string   `gorm:"size:20" json:"status"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Timestamp    int64    `gorm:"not null;index" json:"timestamp"` // Stored as INTEGER in SQLite, Unix timestamp
}

// TableName explicitly sets the table name for GORM.
func (AttendanceEvent) TableName() string {
	return "attendance_events"
}
