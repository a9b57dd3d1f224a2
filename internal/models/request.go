// internal/models/request.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type MaintenanceRequest struct {
	BaseModel
	CustomerContactDate *time.Time `json:"customer_contact_date"`
	AvailabilityStart   *time.Time `json:"availability_start"`
	AvailabilityEnd     *time.Time `json:"availability_end"`
	Urgency             Urgency    `json:"urgency" gorm:"type:varchar(20);default:'Medium'"`

	ContactName   string `json:"contact_name" gorm:"size:255"`
	ContactNumber string `json:"contact_number" gorm:"size:50"`
	ContactEmail  string `json:"contact_email" gorm:"size:255"`
	FacilityName  string `json:"facility_name" gorm:"size:255"`
	Location      string `json:"location" gorm:"size:100"`
	Donor         string `json:"donor" gorm:"size:255"`

	// Legacy free-text equipment list, kept searchable alongside the
	// structured equipment lines.
	EquipmentList  string `json:"equipment_list" gorm:"type:text"`
	RequestDetails string `json:"request_details" gorm:"type:text"`

	BillingStatus BillingStatus `json:"billing_status" gorm:"type:varchar(20);default:'Billable'"`
	EstimatedCost *float64      `json:"estimated_cost" gorm:"type:decimal(12,2)"`

	Status RequestStatus `json:"status" gorm:"type:varchar(20);default:'Open';index"`

	CreatedByID *uuid.UUID `json:"created_by_id" gorm:"type:uuid;index"`

	// Relationships
	CreatedBy      *User                         `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL"`
	EquipmentItems []MaintenanceRequestEquipment `json:"equipment_items,omitempty" gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
	ServiceReports []ServiceReport               `json:"service_reports,omitempty" gorm:"foreignKey:MaintenanceRequestID"`
}

// OwnedBy reports whether the request was created by the given user.
// Requests with no recorded creator belong to nobody.
func (r *MaintenanceRequest) OwnedBy(userID uuid.UUID) bool {
	return r.CreatedByID != nil && *r.CreatedByID == userID
}

type MaintenanceRequestEquipment struct {
	BaseModel
	RequestID     uuid.UUID `json:"request_id" gorm:"type:uuid;not null;index"`
	EquipmentType string    `json:"equipment_type" gorm:"size:255;not null"`
	ModelName     string    `json:"model_name" gorm:"size:255;not null"`
}
