package models

import (
	"time"
)

// AuditLog records every authenticated mutation of a feedback record,
// with the before/after snapshots serialized as JSON.
type AuditLog struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ActorUserID uint      `json:"actorUserID" gorm:"index;not null"`
	Action      string    `json:"action" gorm:"size:64;index"` // e.g. feedback.update
	Resource    string    `json:"resource" gorm:"size:64;index"`
	ResourceID  uint      `json:"resourceID" gorm:"index"`
	BeforeJSON  string    `json:"beforeJSON" gorm:"type:text"`
	AfterJSON   string    `json:"afterJSON" gorm:"type:text"`
	IPAddress   string    `json:"ipAddress" gorm:"size:64"`
	CreatedAt   time.Time `json:"createdAt"`
}
