package models

// SettingSimilarityThreshold is the key under which the match acceptance
// threshold is persisted.
const SettingSimilarityThreshold = "similarity_threshold"

// Setting is a single mutable configuration value, persisted independently
// of the identity and event tables.
type Setting struct {
	Key   string `gorm:"primaryKey;size:64;column:key" json:"key"`
	Value string `gorm:"not null" json:"value"`
}

// TableName explicitly sets the table name for GORM.
func (Setting) TableName() string {
	return "settings"
}
