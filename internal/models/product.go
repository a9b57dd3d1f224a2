// internal/models/product.go
package models

import "fmt"

type Product struct {
	BaseModel
	Name         string `json:"name" gorm:"size:255;not null"`
	Category     string `json:"category" gorm:"size:255;not null;index"`
	Manufacturer string `json:"manufacturer" gorm:"size:255;not null"`
	Model        string `json:"model" gorm:"size:255;not null"`
	SerialNumber string `json:"serial_number" gorm:"size:255"`
	Notes        string `json:"notes" gorm:"type:text"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`

	// Relationships
	ReportItems []ReportItem `json:"report_items,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// DisplayName is the label shown in item selectors, "Name (Model)".
func (p *Product) DisplayName() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.Model)
}
