// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the primary key in the application so the same
// models work against postgres and the in-memory test dialect.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeEngineer UserType = "engineer"
	UserTypeStaff    UserType = "staff"
)

type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "Draft"
	ReportStatusPending   ReportStatus = "Pending"
	ReportStatusCompleted ReportStatus = "Completed"
)

func ValidReportStatus(s ReportStatus) bool {
	switch s {
	case ReportStatusDraft, ReportStatusPending, ReportStatusCompleted:
		return true
	}
	return false
}

type RequestStatus string

const (
	RequestStatusOpen       RequestStatus = "Open"
	RequestStatusScheduled  RequestStatus = "Scheduled"
	RequestStatusInProgress RequestStatus = "In Progress"
	RequestStatusCompleted  RequestStatus = "Completed"
	RequestStatusCancelled  RequestStatus = "Cancelled"
)

func ValidRequestStatus(s RequestStatus) bool {
	switch s {
	case RequestStatusOpen, RequestStatusScheduled, RequestStatusInProgress,
		RequestStatusCompleted, RequestStatusCancelled:
		return true
	}
	return false
}

type Urgency string

const (
	UrgencyLow       Urgency = "Low"
	UrgencyMedium    Urgency = "Medium"
	UrgencyHigh      Urgency = "High"
	UrgencyEmergency Urgency = "Emergency"
)

func ValidUrgency(u Urgency) bool {
	switch u {
	case UrgencyLow, UrgencyMedium, UrgencyHigh, UrgencyEmergency:
		return true
	}
	return false
}

type BillingStatus string

const (
	BillingStatusWarranty BillingStatus = "Warranty"
	BillingStatusBillable BillingStatus = "Billable"
	BillingStatusContract BillingStatus = "Contract"
	BillingStatusFOC      BillingStatus = "FOC"
)

func ValidBillingStatus(b BillingStatus) bool {
	switch b {
	case BillingStatusWarranty, BillingStatusBillable, BillingStatusContract, BillingStatusFOC:
		return true
	}
	return false
}
