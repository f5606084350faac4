package store

import "time"

// AuditRecord is one analysis decision kept for auditing.
type AuditRecord struct {
	ID       uint   `gorm:"primaryKey"`
	Input    string `gorm:"type:text"`
	Prefix   string `gorm:"size:128;index"`
	Decision string `gorm:"type:text"`
	// RecordedAt is the analysis time supplied by the caller, not the insert time.
	RecordedAt time.Time `gorm:"index"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}
