// internal/models/report.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type ServiceReport struct {
	BaseModel
	ClientName       string     `json:"client_name" gorm:"size:200"`
	ProjectReference string     `json:"project_reference" gorm:"size:100"`
	Location         string     `json:"location" gorm:"size:200"`
	Donor            string     `json:"donor" gorm:"size:200"`
	ServiceDate      *time.Time `json:"service_date"`

	MaintenanceRequestID *uuid.UUID `json:"maintenance_request_id" gorm:"type:uuid;index"`
	EngineerID           uuid.UUID  `json:"engineer_id" gorm:"type:uuid;not null;index"`

	IssueDescription string `json:"issue_description" gorm:"type:text"`
	WorkPerformed    string `json:"work_performed" gorm:"type:text"`
	PartsUsed        string `json:"parts_used" gorm:"type:text"`

	// Multi-label categorical fields, stored comma-joined.
	ServiceType     LabelSet `json:"service_type" gorm:"size:255"`
	BillingCategory LabelSet `json:"billing_category" gorm:"size:255"`
	FinalStatus     LabelSet `json:"final_status" gorm:"size:255"`

	Status           ReportStatus `json:"status" gorm:"type:varchar(20);default:'Draft';index"`
	FollowUpRequired bool         `json:"follow_up_required" gorm:"default:false"`

	ClientRepresentativeName string `json:"client_representative_name" gorm:"size:200"`
	ClientPhoneNumber        string `json:"client_phone_number" gorm:"size:20"`
	ClientSignature          string `json:"client_signature" gorm:"size:512"`

	// Relationships
	Engineer           User                `json:"engineer,omitempty" gorm:"foreignKey:EngineerID;constraint:OnDelete:CASCADE"`
	MaintenanceRequest *MaintenanceRequest `json:"maintenance_request,omitempty" gorm:"foreignKey:MaintenanceRequestID;constraint:OnDelete:SET NULL"`
	Items              []ReportItem        `json:"items,omitempty" gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
	Images             []ReportImage       `json:"images,omitempty" gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
}

type ReportItem struct {
	BaseModel
	ReportID      uuid.UUID `json:"report_id" gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	SerialNumber  string    `json:"serial_number" gorm:"size:255"`
	EquipmentNote string    `json:"equipment_note" gorm:"type:text"`

	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

type ReportImage struct {
	BaseModel
	ReportID uuid.UUID `json:"report_id" gorm:"type:uuid;not null;index"`
	Key      string    `json:"key" gorm:"size:512;not null"`
	URL      string    `json:"url" gorm:"size:512"`
	Caption  string    `json:"caption" gorm:"size:255"`
	Size     int64     `json:"size"`
	MimeType string    `json:"mime_type" gorm:"size:100"`
}
